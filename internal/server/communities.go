package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	communitydomain "github.com/koomyhq/koomy/internal/community/domain"
)

type createCommunityRequest struct {
	Name     string         `json:"name"`
	Slug     string         `json:"slug"`
	PlanCode string         `json:"plan_code"`
	Metadata map[string]any `json:"metadata"`
}

type changePlanRequest struct {
	PlanID string `json:"plan_id"`
}

func (s *Server) CreateCommunity(c *gin.Context) {
	var req createCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.communitySvc.Create(c.Request.Context(), communitydomain.CreateRequest{
		Name:     strings.TrimSpace(req.Name),
		Slug:     strings.TrimSpace(req.Slug),
		PlanCode: strings.TrimSpace(req.PlanCode),
		Metadata: req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCommunities(c *gin.Context) {
	resp, err := s.communitySvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCommunityByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.communitySvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ChangeCommunityPlan(c *gin.Context) {
	var req changePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.communitySvc.ChangePlan(c.Request.Context(), id, strings.TrimSpace(req.PlanID))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
