package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	// Create admits a new member. The quota decision and the counter
	// increment happen in one transaction against a locked community row:
	// two concurrent joins against the last open seat cannot both pass.
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, communityID string) ([]Response, error)
	// Remove deletes the membership and decrements the community counter in
	// the same transaction.
	Remove(ctx context.Context, communityID, membershipID string) error
	// Recount rebuilds the denormalized counter from membership rows and
	// reports the correction.
	Recount(ctx context.Context, communityID string) (*RecountResponse, error)
}

type CreateRequest struct {
	CommunityID string `json:"-"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

type Response struct {
	ID          string    `json:"id"`
	CommunityID string    `json:"community_id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
	JoinedAt    time.Time `json:"joined_at"`
}

type RecountResponse struct {
	CommunityID string `json:"community_id"`
	Previous    int    `json:"previous"`
	Current     int    `json:"current"`
}

var (
	ErrNotFound      = errors.New("membership_not_found")
	ErrInvalidID     = errors.New("invalid_membership_id")
	ErrInvalidUser   = errors.New("invalid_user")
	ErrInvalidName   = errors.New("invalid_display_name")
	ErrInvalidEmail  = errors.New("invalid_email")
	ErrInvalidRole   = errors.New("invalid_role")
	ErrAlreadyMember = errors.New("already_member")
)
