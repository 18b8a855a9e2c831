package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	resourcedomain "github.com/harborline/shopd/internal/resource/domain"
	"github.com/harborline/shopd/pkg/db/pagination"
	"github.com/harborline/shopd/pkg/repository"
	"gorm.io/gorm"
)

// Repository is the gorm-backed inventory store.
type Repository struct {
	db *gorm.DB
}

// Provide constructs the store for the fx graph.
func Provide(db *gorm.DB) resourcedomain.Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, res *resourcedomain.Resource) error {
	now := time.Now().UTC()
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	res.Version = 1
	res.CreatedAt = now
	res.UpdatedAt = now
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *Repository) FindByID(ctx context.Context, id string) (*resourcedomain.Resource, error) {
	var res resourcedomain.Resource
	err := r.db.WithContext(ctx).First(&res, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *Repository) FindByIDs(ctx context.Context, ids []string) ([]resourcedomain.Resource, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []resourcedomain.Resource
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repository) FindAll(ctx context.Context, search string, page pagination.Pagination) ([]resourcedomain.Resource, error) {
	page = page.Normalize()
	tx := r.db.WithContext(ctx).Model(&resourcedomain.Resource{})
	if search = strings.TrimSpace(search); search != "" {
		prefix := strings.ToLower(search) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(type) LIKE ?", prefix, prefix)
	}
	var items []resourcedomain.Resource
	err := tx.Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Save upserts by id. Loaded records (Version > 0) take the optimistic
// path; fresh records are inserted.
func (r *Repository) Save(ctx context.Context, res *resourcedomain.Resource) error {
	if res.Version == 0 {
		return r.Create(ctx, res)
	}

	expected := res.Version
	res.UpdatedAt = time.Now().UTC()
	tx := r.db.WithContext(ctx).Model(&resourcedomain.Resource{}).
		Where("id = ? AND version = ?", res.ID, expected).
		Updates(map[string]any{
			"name":        res.Name,
			"type":        res.Type,
			"description": res.Description,
			"amount":      res.Amount,
			"price":       res.Price,
			"version":     expected + 1,
			"updated_at":  res.UpdatedAt,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return repository.ErrStaleVersion
	}
	res.Version = expected + 1
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) (*resourcedomain.Resource, error) {
	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	if err := r.db.WithContext(ctx).Delete(&resourcedomain.Resource{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return existing, nil
}
