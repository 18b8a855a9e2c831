package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/harborline/shopd/internal/audit/domain"
	"github.com/harborline/shopd/internal/auth/cookie"
	authdomain "github.com/harborline/shopd/internal/auth/domain"
	"github.com/harborline/shopd/internal/logger"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	contextIdentityKey = "auth_identity"
	apiKeyHeader       = "X-Api-Key"
)

// identityFrom returns the authenticated identity, if any strategy
// succeeded on this request.
func identityFrom(c *gin.Context) *authdomain.Identity {
	v, ok := c.Get(contextIdentityKey)
	if !ok {
		return nil
	}
	identity, ok := v.(*authdomain.Identity)
	if !ok {
		return nil
	}
	return identity
}

// AuthPipe tries the session cookie first, then the API key header.
// A failing strategy is logged and skipped; rejecting is the guard's
// job, so unauthenticated requests flow through untouched.
func (s *Server) AuthPipe() gin.HandlerFunc {
	return func(c *gin.Context) {
		device := authdomain.DeviceInfo{
			IPAddress: resolveClientIP(c),
			UserAgent: c.Request.UserAgent(),
		}

		if raw, err := c.Cookie(s.cfg.CookieName); err == nil && raw != "" {
			if identity := s.trySessionStrategy(c, raw, device); identity != nil {
				c.Set(contextIdentityKey, identity)
				c.Next()
				return
			}
		}

		if key := strings.TrimSpace(c.GetHeader(apiKeyHeader)); key != "" {
			if identity := s.tryAPIKeyStrategy(c, key, device); identity != nil {
				c.Set(contextIdentityKey, identity)
			}
		}

		c.Next()
	}
}

func (s *Server) trySessionStrategy(c *gin.Context, raw string, device authdomain.DeviceInfo) *authdomain.Identity {
	payload, err := s.codec.Decode(raw)
	if err != nil {
		logger.FromContext(c.Request.Context()).Warn("session cookie rejected",
			zap.String("cookie", logger.MaskCookie(raw)), zap.Error(err))
		return nil
	}

	identity, err := s.authSvc.SessionAuth(c.Request.Context(), payload.UserID, payload.SessionID, device)
	if err != nil {
		logger.FromContext(c.Request.Context()).Warn("session strategy failed",
			zap.String("session_id", payload.SessionID), zap.Error(err))
		return nil
	}
	return identity
}

func (s *Server) tryAPIKeyStrategy(c *gin.Context, key string, device authdomain.DeviceInfo) *authdomain.Identity {
	identity, err := s.authSvc.APIKeyAuth(c.Request.Context(), key, device)
	if err != nil {
		logger.FromContext(c.Request.Context()).Warn("api key strategy failed",
			zap.String("api_key", logger.MaskAPIKey(key)), zap.Error(err))
		return nil
	}
	return identity
}

// GuardOption narrows what the guard accepts.
type GuardOption func(*guardConfig)

type guardConfig struct {
	privileged bool
	method     authdomain.Method
}

// RequirePrivilege admits privileged users only.
func RequirePrivilege() GuardOption {
	return func(g *guardConfig) { g.privileged = true }
}

// RequireMethod pins the route to one authentication strategy.
func RequireMethod(method authdomain.Method) GuardOption {
	return func(g *guardConfig) { g.method = method }
}

// Guard rejects requests the pipe left unauthenticated: 401 without an
// identity, 403 on privilege or method mismatch.
func (s *Server) Guard(opts ...GuardOption) gin.HandlerFunc {
	var cfg guardConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(c *gin.Context) {
		identity := identityFrom(c)
		if identity == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if cfg.privileged && !identity.User.IsPrivileged {
			AbortWithError(c, ErrForbidden)
			return
		}
		if cfg.method != "" && identity.Method != cfg.method {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

// RateLimit applies the sliding-window limiter keyed by client IP.
func (s *Server) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.authLimiter.Allow(resolveClientIP(c)) {
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

// resolveClientIP prefers the first X-Forwarded-For hop.
func resolveClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return c.ClientIP()
}

// setSessionCookie issues the signed cookie for a fresh session.
func (s *Server) setSessionCookie(c *gin.Context, payload cookie.Payload) error {
	token, err := s.codec.Encode(payload)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cfg.CookieName, token, s.cfg.CookieMaxAge, "/", "", !s.cfg.IsDev(), true)
	return nil
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cfg.CookieName, "", -1, "/", "", !s.cfg.IsDev(), true)
}

// audit records a privileged mutation with the acting identity.
func (s *Server) audit(c *gin.Context, action, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}

	entry := auditdomain.Entry{
		ActorType:  string(auditdomain.ActorTypeSystem),
		Action:     action,
		TargetType: strings.SplitN(action, ".", 2)[0],
		TargetID:   &targetID,
		Metadata:   datatypes.JSONMap(metadata),
	}
	if identity := identityFrom(c); identity != nil {
		actorID := identity.User.ID
		entry.ActorID = &actorID
		entry.ActorType = string(auditdomain.ActorTypeUser)
		if identity.Method == authdomain.MethodAPIKey {
			entry.ActorType = string(auditdomain.ActorTypeAPIKey)
		}
		ip := identity.IPAddress
		entry.IPAddress = &ip
	}

	s.auditSvc.Record(c.Request.Context(), entry)
}
