package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	apikeydomain "github.com/harborline/shopd/internal/apikey/domain"
	"github.com/harborline/shopd/pkg/repository"
	"gorm.io/gorm"
)

// maxKeysListed caps an owner listing; nobody holds more live keys.
const maxKeysListed = 100

// Repository is the gorm-backed credential store. The plain
// create/find surface rides the generic store; usage bookkeeping
// needs column-level updates and talks to gorm directly.
type Repository struct {
	db    *gorm.DB
	store repository.Repository[apikeydomain.APIKey]
}

// Provide constructs the store for the fx graph.
func Provide(db *gorm.DB) apikeydomain.Repository {
	return &Repository{db: db, store: repository.ProvideStore[apikeydomain.APIKey](db)}
}

func (r *Repository) Insert(ctx context.Context, key *apikeydomain.APIKey) error {
	now := time.Now().UTC()
	key.CreatedAt = now
	key.UpdatedAt = now
	return r.store.Create(ctx, key)
}

func (r *Repository) FindByValue(ctx context.Context, value string) (*apikeydomain.APIKey, error) {
	return r.store.FindOne(ctx, "key = ?", value)
}

func (r *Repository) ListByOwner(ctx context.Context, ownerID snowflake.ID) ([]apikeydomain.APIKey, error) {
	return r.store.Find(ctx, &apikeydomain.APIKey{OwnerID: ownerID},
		repository.WithOrder("created_at DESC"),
		repository.WithLimit(maxKeysListed),
	)
}

func (r *Repository) Touch(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Model(&apikeydomain.APIKey{}).
		Where("id = ?", id).
		Update("last_used_at", time.Now().UTC()).Error
}

func (r *Repository) Deactivate(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Model(&apikeydomain.APIKey{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		}).Error
}
