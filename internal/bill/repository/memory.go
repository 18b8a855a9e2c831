package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	billdomain "github.com/harborline/shopd/internal/bill/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository keeps bills in-process. Used in tests and in
// deployments without a document store configured.
type MemoryRepository struct {
	mu    sync.RWMutex
	bills map[string]billdomain.Bill
}

// NewMemoryRepository constructs an empty in-memory store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{bills: make(map[string]billdomain.Bill)}
}

func (r *MemoryRepository) Create(_ context.Context, bill *billdomain.Bill) (*billdomain.Bill, error) {
	stored := *bill
	stored.ID = primitive.NewObjectID().Hex()
	stored.CreatedAt = time.Now().UTC()
	stored.Items = append([]billdomain.BillItem(nil), bill.Items...)

	r.mu.Lock()
	r.bills[stored.ID] = stored
	r.mu.Unlock()
	return &stored, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*billdomain.Bill, error) {
	r.mu.RLock()
	stored, ok := r.bills[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return &stored, nil
}

func (r *MemoryRepository) FindByCustomer(_ context.Context, customerID int64) ([]billdomain.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var bills []billdomain.Bill
	for _, bill := range r.bills {
		if bill.CustomerID == customerID {
			bills = append(bills, bill)
		}
	}
	sort.Slice(bills, func(i, j int) bool {
		return bills[i].CreatedAt.After(bills[j].CreatedAt)
	})
	return bills, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) (*billdomain.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bills[id]
	if !ok {
		return nil, nil
	}
	delete(r.bills, id)
	return &stored, nil
}
