package server

import (
	"errors"
	"net/http"
	"testing"

	purchasedomain "github.com/harborline/shopd/internal/purchase/domain"
	resourcedomain "github.com/harborline/shopd/internal/resource/domain"
	userdomain "github.com/harborline/shopd/internal/user/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "forbidden"},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{"resource missing", resourcedomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"user conflict", userdomain.ErrConflict, http.StatusConflict, "conflict"},
		{"insufficient balance", userdomain.ErrInsufficientBalance, http.StatusUnprocessableEntity, "insufficient_balance"},
		{"empty order", purchasedomain.ErrEmptyOrder, http.StatusBadRequest, "validation_failed"},
		{
			"missing entities",
			&purchasedomain.NotFoundError{Entity: "resources", IDs: []string{"a", "b"}},
			http.StatusNotFound, "not_found",
		},
		{
			"exhausted",
			&purchasedomain.ExhaustedError{Name: "bolt", Available: 1, Requested: 2},
			http.StatusConflict, "resource_exhausted",
		},
		{
			"persistence",
			&purchasedomain.PersistenceError{Group: "customer", Err: errors.New("db down")},
			http.StatusInternalServerError, "persistence_failed",
		},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(tc.err)
			if got.Status != tc.wantStatus || got.Code != tc.wantCode {
				t.Errorf("classify(%v) = %d/%s, want %d/%s",
					tc.err, got.Status, got.Code, tc.wantStatus, tc.wantCode)
			}
		})
	}
}

// The envelope keeps its own message while the status comes from the
// wrapped cause.
func TestClassifyOperationEnvelope(t *testing.T) {
	err := &purchasedomain.OperationError{
		Op:  "purchase",
		Err: &purchasedomain.ExhaustedError{Name: "bolt", Available: 0, Requested: 1},
	}

	got := classify(err)
	if got.Status != http.StatusConflict || got.Code != "resource_exhausted" {
		t.Errorf("status/code = %d/%s", got.Status, got.Code)
	}
	if got.Message != err.Error() {
		t.Errorf("message = %q, want the envelope message", got.Message)
	}
}
