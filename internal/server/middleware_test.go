package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/harborline/shopd/internal/auth/cookie"
	authdomain "github.com/harborline/shopd/internal/auth/domain"
	"github.com/harborline/shopd/internal/config"
	userdomain "github.com/harborline/shopd/internal/user/domain"
	"go.uber.org/zap"
)

// stubAuthService answers the two strategy calls from canned state.
type stubAuthService struct {
	sessionIdentity *authdomain.Identity
	keyIdentity     *authdomain.Identity
}

func (s *stubAuthService) Register(context.Context, authdomain.RegisterCandidate, authdomain.DeviceInfo) (*authdomain.LoginResult, error) {
	return nil, authdomain.ErrInvalidRegistration
}

func (s *stubAuthService) Login(context.Context, string, string, authdomain.DeviceInfo) (*authdomain.LoginResult, error) {
	return nil, authdomain.ErrInvalidCredentials
}

func (s *stubAuthService) Logout(context.Context, string) error { return nil }

func (s *stubAuthService) SessionAuth(_ context.Context, _ snowflake.ID, _ string, _ authdomain.DeviceInfo) (*authdomain.Identity, error) {
	if s.sessionIdentity == nil {
		return nil, authdomain.ErrSessionInvalid
	}
	return s.sessionIdentity, nil
}

func (s *stubAuthService) APIKeyAuth(_ context.Context, _ string, _ authdomain.DeviceInfo) (*authdomain.Identity, error) {
	if s.keyIdentity == nil {
		return nil, authdomain.ErrKeyInvalid
	}
	return s.keyIdentity, nil
}

func newTestServer(t *testing.T, auth *stubAuthService) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := cookie.NewCodec("test-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	return NewServer(ServerParam{
		Cfg: config.Config{
			Environment:    "development",
			CookieName:     "shopd_session",
			CookieSecret:   "test-secret",
			CookieMaxAge:   3600,
			AuthRateLimit:  100,
			AuthRateWindow: time.Minute,
		},
		Log:     zap.NewNop(),
		AuthSvc: auth,
		Codec:   codec,
	})
}

// echoIdentity exposes what the pipe attached, for assertions.
func echoIdentity(c *gin.Context) {
	identity := identityFrom(c)
	if identity == nil {
		c.JSON(http.StatusOK, gin.H{"anonymous": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"method": string(identity.Method)})
}

func performRequest(s *Server, guards []GuardOption, mutate func(*http.Request)) *httptest.ResponseRecorder {
	engine := gin.New()
	handlers := []gin.HandlerFunc{s.AuthPipe()}
	if guards != nil {
		handlers = append(handlers, s.Guard(guards...))
	}
	handlers = append(handlers, echoIdentity)
	engine.GET("/probe", handlers...)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func sessionIdentity(privileged bool) *authdomain.Identity {
	return &authdomain.Identity{
		User:      userdomain.User{ID: 7, Username: "alice", IsPrivileged: privileged},
		SessionID: "sess-1",
		Method:    authdomain.MethodSession,
	}
}

func TestAuthPipeSessionStrategy(t *testing.T) {
	s := newTestServer(t, &stubAuthService{sessionIdentity: sessionIdentity(false)})
	token, _ := s.codec.Encode(cookie.Payload{SessionID: "sess-1", UserID: 7})

	w := performRequest(s, nil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "shopd_session", Value: token})
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body := w.Body.String(); body != `{"method":"session"}` {
		t.Errorf("body = %s", body)
	}
}

func TestAuthPipeFallsBackToAPIKey(t *testing.T) {
	s := newTestServer(t, &stubAuthService{
		keyIdentity: &authdomain.Identity{
			User:   userdomain.User{ID: 7},
			Method: authdomain.MethodAPIKey,
		},
	})

	// A garbage cookie must not poison the request; the key wins.
	w := performRequest(s, nil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "shopd_session", Value: "not-a-valid-token"})
		r.Header.Set(apiKeyHeader, "sk_something")
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body := w.Body.String(); body != `{"method":"apiKey"}` {
		t.Errorf("body = %s", body)
	}
}

func TestAuthPipeSilentOnFailure(t *testing.T) {
	s := newTestServer(t, &stubAuthService{})

	w := performRequest(s, nil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "shopd_session", Value: "junk"})
		r.Header.Set(apiKeyHeader, "sk_unknown")
	})

	// No guard on the route: the request flows through anonymous.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body := w.Body.String(); body != `{"anonymous":true}` {
		t.Errorf("body = %s", body)
	}
}

func TestGuardRejectsAnonymous(t *testing.T) {
	s := newTestServer(t, &stubAuthService{})

	w := performRequest(s, []GuardOption{}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestGuardPrivilege(t *testing.T) {
	s := newTestServer(t, &stubAuthService{sessionIdentity: sessionIdentity(false)})
	token, _ := s.codec.Encode(cookie.Payload{SessionID: "sess-1", UserID: 7})
	withCookie := func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "shopd_session", Value: token})
	}

	w := performRequest(s, []GuardOption{RequirePrivilege()}, withCookie)
	if w.Code != http.StatusForbidden {
		t.Fatalf("unprivileged status = %d, want 403", w.Code)
	}

	s = newTestServer(t, &stubAuthService{sessionIdentity: sessionIdentity(true)})
	token, _ = s.codec.Encode(cookie.Payload{SessionID: "sess-1", UserID: 7})
	w = performRequest(s, []GuardOption{RequirePrivilege()}, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "shopd_session", Value: token})
	})
	if w.Code != http.StatusOK {
		t.Fatalf("privileged status = %d, want 200", w.Code)
	}
}

func TestGuardMethodPinning(t *testing.T) {
	s := newTestServer(t, &stubAuthService{sessionIdentity: sessionIdentity(false)})
	token, _ := s.codec.Encode(cookie.Payload{SessionID: "sess-1", UserID: 7})

	w := performRequest(s, []GuardOption{RequireMethod(authdomain.MethodAPIKey)}, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "shopd_session", Value: token})
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 on method mismatch", w.Code)
	}
}

func TestResolveClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	if ip := resolveClientIP(c); ip != "203.0.113.9" {
		t.Errorf("ip = %q, want first forwarded hop", ip)
	}
}
