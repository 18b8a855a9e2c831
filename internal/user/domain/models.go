package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	sessiondomain "github.com/harborline/shopd/internal/session/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = errors.New("user_not_found")
	ErrConflict            = errors.New("user_conflict")
	ErrInsufficientBalance = errors.New("insufficient_balance")
)

// User is an account holder. PasswordHash never leaves the auth
// boundary; callers outside it receive Sanitized copies.
type User struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"type:text;not null" json:"name"`
	Email        string          `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Age          int             `gorm:"not null;default:0" json:"age"`
	Balance      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`
	Username     string          `gorm:"type:text;not null;uniqueIndex" json:"username"`
	PasswordHash string          `gorm:"type:text;not null" json:"-"`
	IsPrivileged bool            `gorm:"not null;default:false" json:"isPrivileged"`
	Version      int64           `gorm:"not null;default:0" json:"-"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Sanitized returns a copy safe to hand outside the auth boundary.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}

// ApplyBalanceDelta returns a copy of the user with the delta applied.
// The balance is never allowed below zero.
func ApplyBalanceDelta(u User, delta decimal.Decimal) (User, error) {
	next := u.Balance.Add(delta)
	if next.IsNegative() {
		return User{}, ErrInsufficientBalance
	}
	u.Balance = next
	return u, nil
}

// Repository is the account store contract.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id snowflake.ID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	// FindByIDWithSession joins the given session, or the most recently
	// seen one when sessionID is empty. The session may be nil.
	FindByIDWithSession(ctx context.Context, id snowflake.ID, sessionID string) (*User, *sessiondomain.Session, error)
	// Save upserts by id with a compare-and-swap on Version; see
	// repository.ErrStaleVersion.
	Save(ctx context.Context, user *User) error
}
