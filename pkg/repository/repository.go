package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrStaleVersion reports a lost optimistic-concurrency race: the row's
// version moved between read and write.
var ErrStaleVersion = errors.New("stale_version")

// Repository is a minimal generic store over a gorm model. Domain
// repositories with richer contracts wrap gorm directly; this covers the
// plain create/find surface.
type Repository[T any] interface {
	Create(ctx context.Context, record *T) error
	FindOne(ctx context.Context, conds ...any) (*T, error)
	Find(ctx context.Context, filter *T, opts ...QueryOption) ([]T, error)
}

// QueryOption mutates the query before execution.
type QueryOption func(tx *gorm.DB) *gorm.DB

// WithLimit caps the result set.
func WithLimit(limit int) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		if limit > 0 {
			tx = tx.Limit(limit)
		}
		return tx
	}
}

// WithOrder appends an ORDER BY clause. The column must come from a
// fixed allow-list at the call site, never from user input.
func WithOrder(order string) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		if order != "" {
			tx = tx.Order(order)
		}
		return tx
	}
}

type store[T any] struct {
	db *gorm.DB
}

// ProvideStore builds a Repository for the given model.
func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (s *store[T]) Create(ctx context.Context, record *T) error {
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *store[T]) FindOne(ctx context.Context, conds ...any) (*T, error) {
	var record T
	err := s.db.WithContext(ctx).First(&record, conds...).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *store[T]) Find(ctx context.Context, filter *T, opts ...QueryOption) ([]T, error) {
	tx := s.db.WithContext(ctx)
	if filter != nil {
		tx = tx.Where(filter)
	}
	for _, opt := range opts {
		tx = opt(tx)
	}
	var records []T
	if err := tx.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
