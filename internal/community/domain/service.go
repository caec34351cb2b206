package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	// ChangePlan validates the transition against current membership and
	// persists the new plan id only. Full-access state and the member
	// counter are never touched by a plan change.
	ChangePlan(ctx context.Context, communityID, newPlanID string) (*Response, error)
}

type CreateRequest struct {
	Name     string         `json:"name"`
	Slug     string         `json:"slug"`
	PlanCode string         `json:"plan_code"`
	Metadata map[string]any `json:"metadata"`
}

type Response struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	PlanID      string `json:"plan_id"`
	MemberCount int    `json:"member_count"`

	FullAccessGrantedAt *time.Time `json:"full_access_granted_at,omitempty"`
	FullAccessExpiresAt *time.Time `json:"full_access_expires_at,omitempty"`
	FullAccessReason    *string    `json:"full_access_reason,omitempty"`
	FullAccessGrantedBy *string    `json:"full_access_granted_by,omitempty"`

	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

var (
	ErrNotFound    = errors.New("community_not_found")
	ErrInvalidID   = errors.New("invalid_community_id")
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidSlug = errors.New("invalid_slug")
	ErrSlugTaken   = errors.New("slug_taken")
)
