package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var ErrNotFound = errors.New("session_not_found")

// Session binds an authenticated device to a user. Fp is the coarse
// device fingerprint; one live session exists per fingerprint, so a
// repeat login from the same bucket upserts instead of piling up rows.
type Session struct {
	ID         string       `gorm:"type:uuid;primaryKey" json:"id"`
	Fp         string       `gorm:"type:text;not null;uniqueIndex" json:"-"`
	UserID     snowflake.ID `gorm:"not null;index" json:"userId"`
	IPAddress  string       `gorm:"type:text;not null" json:"ipAddress"`
	UserAgent  string       `gorm:"type:text;not null" json:"userAgent"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	LastSeenAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"lastSeenAt"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

// Repository is the session store contract. Upsert keys on the
// fingerprint; Touch refreshes LastSeenAt lazily.
type Repository interface {
	Upsert(ctx context.Context, session *Session) (*Session, error)
	FindByID(ctx context.Context, id string) (*Session, error)
	Touch(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) (*Session, error)
}
