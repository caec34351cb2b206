package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	fullaccessdomain "github.com/koomyhq/koomy/internal/fullaccess/domain"
)

type grantFullAccessRequest struct {
	GrantedBy string `json:"granted_by"`
	Reason    string `json:"reason"`
	ExpiresAt string `json:"expires_at"`
}

func (s *Server) GrantFullAccess(c *gin.Context) {
	var req grantFullAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var expiresAt *time.Time
	if raw := strings.TrimSpace(req.ExpiresAt); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("expires_at", "invalid_expiry", "expires_at must be RFC 3339"))
			return
		}
		parsed = parsed.UTC()
		expiresAt = &parsed
	}

	resp, err := s.fullAccessSvc.Grant(c.Request.Context(), fullaccessdomain.GrantRequest{
		CommunityID: strings.TrimSpace(c.Param("id")),
		GrantedBy:   strings.TrimSpace(req.GrantedBy),
		Reason:      strings.TrimSpace(req.Reason),
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RevokeFullAccess(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.fullAccessSvc.Revoke(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
