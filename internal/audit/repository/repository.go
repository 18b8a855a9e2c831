package repository

import (
	"context"

	auditdomain "github.com/harborline/shopd/internal/audit/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New constructs the gorm-backed audit store.
func New(db *gorm.DB) auditdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, entry *auditdomain.Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) List(ctx context.Context, filter auditdomain.ListFilter) ([]auditdomain.Entry, error) {
	q := r.db.WithContext(ctx).Model(&auditdomain.Entry{})

	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.TargetType != "" {
		q = q.Where("target_type = ?", filter.TargetType)
	}
	if filter.StartAt != nil {
		q = q.Where("created_at >= ?", *filter.StartAt)
	}
	if filter.EndAt != nil {
		q = q.Where("created_at < ?", *filter.EndAt)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var entries []auditdomain.Entry
	if err := q.Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
