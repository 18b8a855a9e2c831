package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	sessiondomain "github.com/harborline/shopd/internal/session/domain"
	userdomain "github.com/harborline/shopd/internal/user/domain"
)

var (
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrInvalidRegistration = errors.New("invalid_registration")
	ErrSessionInvalid      = errors.New("session_invalid")
	ErrKeyInvalid          = errors.New("api_key_invalid")
)

// Method names the strategy a request was authenticated with; the
// guard can pin a route to one of them.
type Method string

const (
	MethodSession Method = "session"
	MethodAPIKey  Method = "apiKey"
)

// Identity is the outcome of a successful strategy, attached to the
// request for the guard and handlers downstream. User is sanitized.
type Identity struct {
	User      userdomain.User `json:"user"`
	SessionID string          `json:"sessionId,omitempty"`
	IPAddress string          `json:"ipAddress"`
	Method    Method          `json:"method"`
}

// DeviceInfo is what we know about the client device on this request.
type DeviceInfo struct {
	IPAddress string
	UserAgent string
}

// RegisterCandidate carries the registration form. Password is plain
// text here and must not outlive the call.
type RegisterCandidate struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Age      int    `json:"age" binding:"gte=0"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginResult pairs the upserted session with the sanitized user; the
// transport turns the session into a signed cookie.
type LoginResult struct {
	Session sessiondomain.Session `json:"session"`
	User    userdomain.User       `json:"user"`
}

// Service is the authentication use-case surface.
type Service interface {
	Register(ctx context.Context, candidate RegisterCandidate, device DeviceInfo) (*LoginResult, error)
	Login(ctx context.Context, username, password string, device DeviceInfo) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	// SessionAuth validates a decoded session cookie against the
	// session store. An IP change is logged, not rejected.
	SessionAuth(ctx context.Context, userID snowflake.ID, sessionID string, device DeviceInfo) (*Identity, error)
	// APIKeyAuth resolves an opaque key value to its owner.
	APIKeyAuth(ctx context.Context, key string, device DeviceInfo) (*Identity, error)
}
