package domain

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("bill_not_found")

// BillItem snapshots one purchased line. Name and price are copied at
// purchase time, not live references to the resource.
type BillItem struct {
	ResourceID string  `bson:"resourceId" json:"resourceId"`
	Name       string  `bson:"name" json:"name"`
	Quantity   int64   `bson:"quantity" json:"quantity"`
	Price      float64 `bson:"price" json:"price"`
}

// Bill is a purchase receipt. Immutable once created; a refund deletes
// it. The wire shape is stable for compatibility, money travels as
// float64 here.
type Bill struct {
	ID         string     `bson:"_id,omitempty" json:"_id"`
	CustomerID int64      `bson:"customerId" json:"customerId"`
	Total      float64    `bson:"total" json:"total"`
	Items      []BillItem `bson:"items" json:"items"`
	CreatedAt  time.Time  `bson:"createdAt" json:"createdAt"`
}

// ItemResourceIDs lists the resource ids referenced by the bill.
func (b Bill) ItemResourceIDs() []string {
	ids := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		ids = append(ids, item.ResourceID)
	}
	return ids
}

// Repository is the receipt store contract. FindByID and Delete return
// nil for absent documents instead of an error.
type Repository interface {
	Create(ctx context.Context, bill *Bill) (*Bill, error)
	FindByID(ctx context.Context, id string) (*Bill, error)
	FindByCustomer(ctx context.Context, customerID int64) ([]Bill, error)
	Delete(ctx context.Context, id string) (*Bill, error)
}
