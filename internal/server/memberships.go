package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	membershipdomain "github.com/koomyhq/koomy/internal/membership/domain"
)

type createMemberRequest struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

func (s *Server) CreateMember(c *gin.Context) {
	communityID := strings.TrimSpace(c.Param("id"))

	if s.joinLimiter.Enabled() {
		result, err := s.joinLimiter.AllowJoin(c.Request.Context(), communityID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter/time.Second)+1))
			AbortWithError(c, ErrTooManyJoins)
			return
		}
	}

	var req createMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.membershipSvc.Create(c.Request.Context(), membershipdomain.CreateRequest{
		CommunityID: communityID,
		UserID:      strings.TrimSpace(req.UserID),
		DisplayName: strings.TrimSpace(req.DisplayName),
		Email:       strings.TrimSpace(req.Email),
		Role:        strings.TrimSpace(req.Role),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMembers(c *gin.Context) {
	communityID := strings.TrimSpace(c.Param("id"))
	resp, err := s.membershipSvc.List(c.Request.Context(), communityID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemoveMember(c *gin.Context) {
	communityID := strings.TrimSpace(c.Param("id"))
	membershipID := strings.TrimSpace(c.Param("memberId"))

	if err := s.membershipSvc.Remove(c.Request.Context(), communityID, membershipID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"removed": true}})
}

func (s *Server) RecountMembers(c *gin.Context) {
	communityID := strings.TrimSpace(c.Param("id"))

	resp, err := s.membershipSvc.Recount(c.Request.Context(), communityID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
