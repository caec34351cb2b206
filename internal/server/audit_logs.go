package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/koomyhq/koomy/internal/audit/domain"
	"github.com/koomyhq/koomy/pkg/db/pagination"
)

type listAuditLogsQuery struct {
	PageToken   string `form:"page_token"`
	PageSize    int    `form:"page_size"`
	CommunityID string `form:"community_id"`
	Action      string `form:"action"`
	StartAt     string `form:"start_at"`
	EndAt       string `form:"end_at"`
}

func (s *Server) ListAuditLogs(c *gin.Context) {
	var query listAuditLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var startAt *time.Time
	if raw := strings.TrimSpace(query.StartAt); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("start_at", "invalid_start_at", "invalid start_at"))
			return
		}
		startAt = &parsed
	}

	var endAt *time.Time
	if raw := strings.TrimSpace(query.EndAt); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("end_at", "invalid_end_at", "invalid end_at"))
			return
		}
		endAt = &parsed
	}

	resp, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		CommunityID: strings.TrimSpace(query.CommunityID),
		Action:      strings.TrimSpace(query.Action),
		StartAt:     startAt,
		EndAt:       endAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
