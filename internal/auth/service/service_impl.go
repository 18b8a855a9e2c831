package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	apikeydomain "github.com/harborline/shopd/internal/apikey/domain"
	authdomain "github.com/harborline/shopd/internal/auth/domain"
	"github.com/harborline/shopd/internal/auth/fingerprint"
	"github.com/harborline/shopd/internal/auth/password"
	sessiondomain "github.com/harborline/shopd/internal/session/domain"
	userdomain "github.com/harborline/shopd/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// touchInterval throttles session LastSeenAt refreshes; a busy client
// writes the row at most once per interval.
const touchInterval = time.Minute

type Service struct {
	log *zap.Logger

	users    userdomain.Repository
	sessions sessiondomain.Repository
	keys     apikeydomain.Repository
	fp       *fingerprint.Maker
}

type ServiceParam struct {
	fx.In

	Log      *zap.Logger
	Users    userdomain.Repository
	Sessions sessiondomain.Repository
	Keys     apikeydomain.Repository
	Fp       *fingerprint.Maker
}

func NewService(p ServiceParam) authdomain.Service {
	return &Service{
		log:      p.Log.Named("auth.service"),
		users:    p.Users,
		sessions: p.Sessions,
		keys:     p.Keys,
		fp:       p.Fp,
	}
}

func (s *Service) Register(ctx context.Context, candidate authdomain.RegisterCandidate, device authdomain.DeviceInfo) (*authdomain.LoginResult, error) {
	if err := validateCandidate(candidate); err != nil {
		return nil, err
	}

	hash, err := password.Hash(candidate.Password)
	if err != nil {
		return nil, err
	}

	user := userdomain.User{
		Name:         strings.TrimSpace(candidate.Name),
		Email:        strings.ToLower(strings.TrimSpace(candidate.Email)),
		Age:          candidate.Age,
		Username:     strings.TrimSpace(candidate.Username),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return nil, err
	}

	return s.authorize(ctx, user, device)
}

func (s *Service) Login(ctx context.Context, username, pass string, device authdomain.DeviceInfo) (*authdomain.LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, userdomain.ErrNotFound
	}

	if !password.Verify(pass, user.PasswordHash) {
		return nil, authdomain.ErrInvalidCredentials
	}

	return s.authorize(ctx, *user, device)
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	deleted, err := s.sessions.Delete(ctx, sessionID)
	if err != nil {
		return err
	}
	if deleted == nil {
		return sessiondomain.ErrNotFound
	}
	return nil
}

func (s *Service) SessionAuth(ctx context.Context, userID snowflake.ID, sessionID string, device authdomain.DeviceInfo) (*authdomain.Identity, error) {
	user, session, err := s.users.FindByIDWithSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if user == nil || session == nil {
		return nil, authdomain.ErrSessionInvalid
	}

	if session.IPAddress != device.IPAddress {
		// The fingerprint already tolerates movement inside the network
		// block; anything beyond that is worth a trace, not a reject.
		s.log.Warn("session ip mismatch",
			zap.String("session_id", session.ID),
			zap.Int64("user_id", int64(user.ID)),
			zap.String("expected_ip", session.IPAddress),
			zap.String("got_ip", device.IPAddress),
			zap.String("user_agent", device.UserAgent),
		)
	}

	s.touchSession(*session)

	return &authdomain.Identity{
		User:      user.Sanitized(),
		SessionID: session.ID,
		IPAddress: device.IPAddress,
		Method:    authdomain.MethodSession,
	}, nil
}

func (s *Service) APIKeyAuth(ctx context.Context, key string, device authdomain.DeviceInfo) (*authdomain.Identity, error) {
	record, err := s.keys.FindByValue(ctx, key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, authdomain.ErrKeyInvalid
	}
	if !record.IsActive {
		return nil, apikeydomain.ErrInactive
	}

	owner, err := s.users.FindByID(ctx, record.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, authdomain.ErrKeyInvalid
	}

	s.touchKey(record.ID)

	return &authdomain.Identity{
		User:      owner.Sanitized(),
		IPAddress: device.IPAddress,
		Method:    authdomain.MethodAPIKey,
	}, nil
}

// authorize mints the device session for an already-authenticated user
// and upserts it by fingerprint.
func (s *Service) authorize(ctx context.Context, user userdomain.User, device authdomain.DeviceInfo) (*authdomain.LoginResult, error) {
	fp, normalizedUA := s.fp.Make(device.IPAddress, device.UserAgent)

	session, err := s.sessions.Upsert(ctx, &sessiondomain.Session{
		ID:        uuid.NewString(),
		Fp:        fp,
		UserID:    user.ID,
		IPAddress: device.IPAddress,
		UserAgent: normalizedUA,
	})
	if err != nil {
		return nil, err
	}

	return &authdomain.LoginResult{
		Session: *session,
		User:    user.Sanitized(),
	}, nil
}

// touchSession refreshes LastSeenAt off the request path when the last
// refresh is older than the throttle interval.
func (s *Service) touchSession(session sessiondomain.Session) {
	if time.Since(session.LastSeenAt) < touchInterval {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.sessions.Touch(ctx, session.ID); err != nil {
			s.log.Warn("session touch failed",
				zap.String("session_id", session.ID), zap.Error(err))
		}
	}()
}

func (s *Service) touchKey(id snowflake.ID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.keys.Touch(ctx, id); err != nil {
			s.log.Warn("api key touch failed",
				zap.Int64("api_key_id", int64(id)), zap.Error(err))
		}
	}()
}

func validateCandidate(c authdomain.RegisterCandidate) error {
	if strings.TrimSpace(c.Name) == "" ||
		strings.TrimSpace(c.Email) == "" ||
		strings.TrimSpace(c.Username) == "" ||
		len(c.Password) < 8 ||
		c.Age < 0 {
		return authdomain.ErrInvalidRegistration
	}
	return nil
}
