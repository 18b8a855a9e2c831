package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apikeydomain "github.com/harborline/shopd/internal/apikey/domain"
	authdomain "github.com/harborline/shopd/internal/auth/domain"
	billdomain "github.com/harborline/shopd/internal/bill/domain"
	purchasedomain "github.com/harborline/shopd/internal/purchase/domain"
	resourcedomain "github.com/harborline/shopd/internal/resource/domain"
	sessiondomain "github.com/harborline/shopd/internal/session/domain"
	userdomain "github.com/harborline/shopd/internal/user/domain"
	"go.uber.org/zap"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not_found")
	ErrRateLimited  = errors.New("rate_limited")
)

// APIError is the wire shape of every error response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`

	cause error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.cause }

func invalidRequestError() *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "invalid request body"}
}

func newValidationError(field, code, message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: code, Message: message, Field: field}
}

// AbortWithError classifies err into the response taxonomy and aborts
// the request. Internal causes are logged, never sent to the client;
// dev mode is the one exception.
func AbortWithError(c *gin.Context, err error) {
	apiErr := classify(err)

	if apiErr.Status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("code", apiErr.Code),
			zap.Error(err),
		)
	}

	body := gin.H{"error": apiErr}
	if gin.Mode() != gin.ReleaseMode && apiErr.cause != nil {
		body["cause"] = apiErr.cause.Error()
	}
	c.AbortWithStatusJSON(apiErr.Status, body)
}

func classify(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	// The orchestrator envelope keeps its own message; the status comes
	// from the cause underneath.
	var opErr *purchasedomain.OperationError
	if errors.As(err, &opErr) {
		inner := classify(opErr.Err)
		return &APIError{
			Status:  inner.Status,
			Code:    inner.Code,
			Message: opErr.Error(),
			cause:   opErr.Err,
		}
	}

	var notFound *purchasedomain.NotFoundError
	var exhausted *purchasedomain.ExhaustedError
	var persistence *purchasedomain.PersistenceError

	switch {
	case errors.Is(err, ErrUnauthorized):
		return &APIError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "no valid authorization data found"}
	case errors.Is(err, ErrForbidden):
		return &APIError{Status: http.StatusForbidden, Code: "forbidden", Message: "access to this resource is forbidden"}
	case errors.Is(err, ErrRateLimited):
		return &APIError{Status: http.StatusTooManyRequests, Code: "rate_limited", Message: "too many requests"}
	case errors.Is(err, authdomain.ErrInvalidCredentials):
		return &APIError{Status: http.StatusUnauthorized, Code: "invalid_credentials", Message: "authentication failed: invalid credentials"}
	case errors.Is(err, authdomain.ErrSessionInvalid):
		return &APIError{Status: http.StatusForbidden, Code: "session_invalid", Message: "session not valid or has expired"}
	case errors.Is(err, authdomain.ErrKeyInvalid), errors.Is(err, apikeydomain.ErrInactive):
		return &APIError{Status: http.StatusForbidden, Code: "api_key_invalid", Message: "api key not valid or disabled"}
	case errors.Is(err, authdomain.ErrInvalidRegistration):
		return &APIError{Status: http.StatusBadRequest, Code: "invalid_registration", Message: "registration data is invalid"}
	case errors.As(err, &notFound):
		return &APIError{Status: http.StatusNotFound, Code: "not_found", Message: notFound.Error()}
	case errors.Is(err, ErrNotFound),
		errors.Is(err, resourcedomain.ErrNotFound),
		errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, sessiondomain.ErrNotFound),
		errors.Is(err, apikeydomain.ErrNotFound),
		errors.Is(err, billdomain.ErrNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "not_found", Message: "requested entity was not found"}
	case errors.Is(err, userdomain.ErrConflict):
		return &APIError{Status: http.StatusConflict, Code: "conflict", Message: "user already exists"}
	case errors.As(err, &exhausted):
		return &APIError{Status: http.StatusConflict, Code: "resource_exhausted", Message: exhausted.Error()}
	case errors.Is(err, userdomain.ErrInsufficientBalance):
		return &APIError{Status: http.StatusUnprocessableEntity, Code: "insufficient_balance", Message: "customer balance is insufficient"}
	case errors.Is(err, resourcedomain.ErrInvalidName),
		errors.Is(err, resourcedomain.ErrInvalidType),
		errors.Is(err, resourcedomain.ErrInvalidAmount),
		errors.Is(err, resourcedomain.ErrInvalidPrice),
		errors.Is(err, purchasedomain.ErrInvalidCustomer),
		errors.Is(err, purchasedomain.ErrEmptyOrder),
		errors.Is(err, purchasedomain.ErrInvalidQuantity):
		return &APIError{Status: http.StatusBadRequest, Code: "validation_failed", Message: err.Error()}
	case errors.As(err, &persistence):
		return &APIError{Status: http.StatusInternalServerError, Code: "persistence_failed", Message: persistence.Error(), cause: persistence.Err}
	default:
		return &APIError{Status: http.StatusInternalServerError, Code: "internal_error", Message: "internal server error", cause: err}
	}
}
