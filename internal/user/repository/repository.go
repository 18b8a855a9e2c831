package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	sessiondomain "github.com/harborline/shopd/internal/session/domain"
	userdomain "github.com/harborline/shopd/internal/user/domain"
	"github.com/harborline/shopd/pkg/repository"
	"gorm.io/gorm"
)

// Repository is the gorm-backed account store.
type Repository struct {
	db    *gorm.DB
	genID *snowflake.Node
}

// Provide constructs the store for the fx graph.
func Provide(db *gorm.DB, genID *snowflake.Node) userdomain.Repository {
	return &Repository{db: db, genID: genID}
}

func (r *Repository) Create(ctx context.Context, user *userdomain.User) error {
	now := time.Now().UTC()
	if user.ID == 0 {
		user.ID = r.genID.Generate()
	}
	user.Version = 1
	user.CreatedAt = now
	user.UpdatedAt = now
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return userdomain.ErrConflict
	}
	return err
}

func (r *Repository) FindByID(ctx context.Context, id snowflake.ID) (*userdomain.User, error) {
	if id == 0 {
		return nil, nil
	}
	var user userdomain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (*userdomain.User, error) {
	var user userdomain.User
	err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindByIDWithSession(ctx context.Context, id snowflake.ID, sessionID string) (*userdomain.User, *sessiondomain.Session, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil || user == nil {
		return user, nil, err
	}

	tx := r.db.WithContext(ctx).Where("user_id = ?", id)
	if sessionID != "" {
		tx = tx.Where("id = ?", sessionID)
	} else {
		tx = tx.Order("last_seen_at DESC")
	}

	var session sessiondomain.Session
	err = tx.First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return user, &session, nil
}

// Save upserts by id; loaded records take the optimistic path.
func (r *Repository) Save(ctx context.Context, user *userdomain.User) error {
	if user.Version == 0 {
		return r.Create(ctx, user)
	}

	expected := user.Version
	user.UpdatedAt = time.Now().UTC()
	tx := r.db.WithContext(ctx).Model(&userdomain.User{}).
		Where("id = ? AND version = ?", user.ID, expected).
		Updates(map[string]any{
			"name":          user.Name,
			"email":         user.Email,
			"age":           user.Age,
			"balance":       user.Balance,
			"username":      user.Username,
			"password_hash": user.PasswordHash,
			"is_privileged": user.IsPrivileged,
			"version":       expected + 1,
			"updated_at":    user.UpdatedAt,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return repository.ErrStaleVersion
	}
	user.Version = expected + 1
	return nil
}
