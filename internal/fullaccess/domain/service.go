// Package domain defines the full-access override: an administrative grant
// that suspends member-quota enforcement for a community, optionally
// time-bounded.
package domain

import (
	"context"
	"errors"
	"time"

	communitydomain "github.com/koomyhq/koomy/internal/community/domain"
)

type Service interface {
	// Grant overwrites any prior grant, active or not.
	Grant(ctx context.Context, req GrantRequest) (*communitydomain.Response, error)
	// Revoke clears the grant fields. Revoking an ungranted community is a
	// no-op that still succeeds.
	Revoke(ctx context.Context, communityID string) (*communitydomain.Response, error)
}

type GrantRequest struct {
	CommunityID string
	GrantedBy   string
	Reason      string
	ExpiresAt   *time.Time
}

// IsActive evaluates the grant lazily against now. Expired grants stay
// recorded on the row until revoked; only the decision flips.
func IsActive(c *communitydomain.Community, now time.Time) bool {
	if c == nil || c.FullAccessGrantedAt == nil {
		return false
	}
	if c.FullAccessExpiresAt == nil {
		return true
	}
	return now.Before(*c.FullAccessExpiresAt)
}

var (
	ErrInvalidReason    = errors.New("invalid_reason")
	ErrInvalidGrantedBy = errors.New("invalid_granted_by")
	ErrInvalidExpiry    = errors.New("invalid_expiry")
)
