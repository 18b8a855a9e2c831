package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/harborline/shopd/internal/audit/domain"
)

// @Summary      List Audit Trail
// @Description  List recorded administrative actions, newest first
// @Tags         audit
// @Produce      json
// @Security     ApiKeyAuth
// @Param        action     query string false "Filter by action, e.g. resource.delete"
// @Param        targetType query string false "Filter by target type"
// @Param        startAt    query string false "RFC 3339 lower bound, inclusive"
// @Param        endAt      query string false "RFC 3339 upper bound, exclusive"
// @Param        limit      query int    false "Limit, at most 100"
// @Success      200  {array}  auditdomain.Entry
// @Router       /audit [get]
func (s *Server) ListAuditLog(c *gin.Context) {
	if s.auditSvc == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	var query struct {
		Action     string `form:"action"`
		TargetType string `form:"targetType"`
		StartAt    string `form:"startAt"`
		EndAt      string `form:"endAt"`
		Limit      int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	filter := auditdomain.ListFilter{
		Action:     strings.TrimSpace(query.Action),
		TargetType: strings.TrimSpace(query.TargetType),
		Limit:      query.Limit,
	}
	if query.StartAt != "" {
		t, err := time.Parse(time.RFC3339, query.StartAt)
		if err != nil {
			AbortWithError(c, newValidationError("startAt", "invalid_timestamp", "must be an RFC 3339 timestamp"))
			return
		}
		filter.StartAt = &t
	}
	if query.EndAt != "" {
		t, err := time.Parse(time.RFC3339, query.EndAt)
		if err != nil {
			AbortWithError(c, newValidationError("endAt", "invalid_timestamp", "must be an RFC 3339 timestamp"))
			return
		}
		filter.EndAt = &t
	}

	entries, err := s.auditSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}
