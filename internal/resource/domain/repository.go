package domain

import (
	"context"
	"errors"

	"github.com/harborline/shopd/pkg/db/pagination"
)

var (
	ErrNotFound      = errors.New("resource_not_found")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidType   = errors.New("invalid_type")
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrInvalidPrice  = errors.New("invalid_price")
)

// Repository is the inventory store contract. FindByIDs returns exactly
// the subset that exists; missing ids are the caller's to detect.
type Repository interface {
	Create(ctx context.Context, res *Resource) error
	FindByID(ctx context.Context, id string) (*Resource, error)
	FindByIDs(ctx context.Context, ids []string) ([]Resource, error)
	FindAll(ctx context.Context, search string, page pagination.Pagination) ([]Resource, error)
	// Save upserts by id. For a loaded record the write is a
	// compare-and-swap on Version and fails with
	// repository.ErrStaleVersion when another writer got there first.
	Save(ctx context.Context, res *Resource) error
	Delete(ctx context.Context, id string) (*Resource, error)
}

// Service is the inventory use-case surface consumed by the transport.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Resource, error)
	Get(ctx context.Context, id string) (*Resource, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Update(ctx context.Context, req UpdateRequest) (*Resource, error)
	Delete(ctx context.Context, id string) (*Resource, error)
}
