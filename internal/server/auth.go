package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/harborline/shopd/internal/auth/cookie"
	authdomain "github.com/harborline/shopd/internal/auth/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createKeyRequest struct {
	Metadata map[string]any `json:"metadata"`
}

// @Summary      Register
// @Description  Create an account and start a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body authdomain.RegisterCandidate true "Registration"
// @Success      201  {object}  authdomain.LoginResult
// @Router       /auth/register [post]
func (s *Server) Register(c *gin.Context) {
	var candidate authdomain.RegisterCandidate
	if err := c.ShouldBindJSON(&candidate); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.authSvc.Register(c.Request.Context(), candidate, deviceInfoFrom(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.setSessionCookie(c, cookie.Payload{
		SessionID: result.Session.ID,
		UserID:    result.User.ID,
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": result.User})
}

// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body loginRequest true "Credentials"
// @Success      200  {object}  authdomain.LoginResult
// @Router       /auth/login [post]
func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		AbortWithError(c, newValidationError("username", "required", "username and password are required"))
		return
	}

	result, err := s.authSvc.Login(c.Request.Context(), req.Username, req.Password, deviceInfoFrom(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.setSessionCookie(c, cookie.Payload{
		SessionID: result.Session.ID,
		UserID:    result.User.ID,
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": result.User})
}

// @Summary      Logout
// @Description  Delete the session and clear the cookie
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /auth/logout [post]
func (s *Server) Logout(c *gin.Context) {
	identity := identityFrom(c)

	if err := s.authSvc.Logout(c.Request.Context(), identity.SessionID); err != nil {
		AbortWithError(c, err)
		return
	}

	s.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary      Auth Info
// @Description  Echo the authenticated identity
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authdomain.Identity
// @Router       /auth/info [get]
func (s *Server) AuthInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": identityFrom(c)})
}

// @Summary      Create API Key
// @Description  Issue a key owned by the authenticated user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body createKeyRequest false "Key metadata"
// @Success      201  {object}  apikeydomain.APIKey
// @Router       /auth/key [post]
func (s *Server) CreateAPIKey(c *gin.Context) {
	var req createKeyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	identity := identityFrom(c)
	key, err := s.apikeySvc.Create(c.Request.Context(), identity.User.ID, req.Metadata)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "apikey.create", key.ID.String(), nil)
	c.JSON(http.StatusCreated, gin.H{"data": key})
}

// @Summary      List API Keys
// @Description  List every key owned by the authenticated user
// @Tags         auth
// @Produce      json
// @Success      200  {array}  apikeydomain.APIKey
// @Router       /auth/keys [get]
func (s *Server) ListAPIKeys(c *gin.Context) {
	identity := identityFrom(c)
	keys, err := s.apikeySvc.List(c.Request.Context(), identity.User.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": keys})
}

// @Summary      Revoke API Key
// @Description  Deactivate one of the authenticated user's keys
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /auth/key/{id} [delete]
func (s *Server) RevokeAPIKey(c *gin.Context) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "must be a numeric key id"))
		return
	}

	identity := identityFrom(c)
	if err := s.apikeySvc.Revoke(c.Request.Context(), identity.User.ID, id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "apikey.revoke", id.String(), nil)
	c.JSON(http.StatusOK, gin.H{"status": "revoked"})
}

// @Summary      API Key Info
// @Description  Inspect the key the request authenticated with
// @Tags         auth
// @Produce      json
// @Success      200  {object}  apikeydomain.APIKey
// @Router       /auth/key/info [get]
func (s *Server) APIKeyInfo(c *gin.Context) {
	key, err := s.apikeySvc.Info(c.Request.Context(), strings.TrimSpace(c.GetHeader(apiKeyHeader)))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": key})
}

func deviceInfoFrom(c *gin.Context) authdomain.DeviceInfo {
	return authdomain.DeviceInfo{
		IPAddress: resolveClientIP(c),
		UserAgent: c.Request.UserAgent(),
	}
}
