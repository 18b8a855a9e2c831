package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

var (
	ErrNotFound = errors.New("api_key_not_found")
	ErrInactive = errors.New("api_key_inactive")
)

// APIKey is a long-lived opaque credential owned by a user. Key is the
// secret value itself; lookups go by value, so it is unique.
type APIKey struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	Key        string            `gorm:"type:text;not null;uniqueIndex" json:"key"`
	OwnerID    snowflake.ID      `gorm:"not null;index" json:"ownerId"`
	IsActive   bool              `gorm:"not null;default:true" json:"isActive"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	LastUsedAt *time.Time        `json:"lastUsedAt"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (APIKey) TableName() string { return "api_keys" }

// Repository is the credential store contract.
type Repository interface {
	Insert(ctx context.Context, key *APIKey) error
	FindByValue(ctx context.Context, value string) (*APIKey, error)
	ListByOwner(ctx context.Context, ownerID snowflake.ID) ([]APIKey, error)
	// Touch records key usage; callers fire it in the background.
	Touch(ctx context.Context, id snowflake.ID) error
	Deactivate(ctx context.Context, id snowflake.ID) error
}

// Service issues, inspects and revokes keys.
type Service interface {
	Create(ctx context.Context, ownerID snowflake.ID, metadata map[string]any) (*APIKey, error)
	Info(ctx context.Context, value string) (*APIKey, error)
	List(ctx context.Context, ownerID snowflake.ID) ([]APIKey, error)
	// Revoke deactivates one of the owner's keys. Keys held by other
	// owners are indistinguishable from missing ones.
	Revoke(ctx context.Context, ownerID, id snowflake.ID) error
}
