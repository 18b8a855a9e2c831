package domain

import (
	"context"
	"time"
)

// ListFilter narrows the audit trail listing.
type ListFilter struct {
	Action     string
	TargetType string
	StartAt    *time.Time
	EndAt      *time.Time
	Limit      int
}

// Repository is the append-only audit store contract.
type Repository interface {
	Insert(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
}

// Service records administrative actions off the request path.
type Service interface {
	// Record never fails the caller; write errors are logged.
	Record(ctx context.Context, entry Entry)
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
}
