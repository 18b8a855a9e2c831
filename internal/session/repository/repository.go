package repository

import (
	"context"
	"errors"
	"time"

	sessiondomain "github.com/harborline/shopd/internal/session/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the gorm-backed session store.
type Repository struct {
	db *gorm.DB
}

// Provide constructs the store for the fx graph.
func Provide(db *gorm.DB) sessiondomain.Repository {
	return &Repository{db: db}
}

// Upsert inserts the session or, when its fingerprint already has a live
// row, refreshes that row's last-seen timestamp and identity fields.
func (r *Repository) Upsert(ctx context.Context, session *sessiondomain.Session) (*sessiondomain.Session, error) {
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.LastSeenAt = now

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "fp"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "ip_address", "user_agent", "last_seen_at",
		}),
	}).Create(session).Error
	if err != nil {
		return nil, err
	}

	// The conflict path keeps the existing row id; read it back so the
	// caller always holds the persisted session.
	var stored sessiondomain.Session
	if err := r.db.WithContext(ctx).First(&stored, "fp = ?", session.Fp).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*sessiondomain.Session, error) {
	var session sessiondomain.Session
	err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *Repository) Touch(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&sessiondomain.Session{}).
		Where("id = ?", id).
		Update("last_seen_at", time.Now().UTC()).Error
}

func (r *Repository) Delete(ctx context.Context, id string) (*sessiondomain.Session, error) {
	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	if err := r.db.WithContext(ctx).Delete(&sessiondomain.Session{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return existing, nil
}
