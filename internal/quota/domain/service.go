// Package domain defines the member-quota decision surface. Admission and
// plan transitions consult this component; it is the only place the cap
// rule lives.
package domain

import (
	"context"
	"fmt"

	communitydomain "github.com/koomyhq/koomy/internal/community/domain"
	"gorm.io/gorm"
)

type Service interface {
	// Check reports whether the community can take another member. It is
	// purely advisory; admission itself happens inside the membership
	// transaction so the decision and the counter write stay atomic.
	Check(ctx context.Context, communityID string) (*Status, error)
	// StatusFor computes the same decision for a community row the caller
	// already holds, against the caller's transaction handle.
	StatusFor(ctx context.Context, db *gorm.DB, community *communitydomain.Community) (*Status, error)
}

// Status mirrors what the admin UI renders ("12/100 members used").
type Status struct {
	CanAdd        bool   `json:"can_add"`
	Current       int    `json:"current"`
	Max           *int   `json:"max"`
	PlanName      string `json:"plan_name"`
	HasFullAccess bool   `json:"has_full_access"`
}

// Decide applies the admission rule: full access short-circuits the cap,
// a nil cap admits unconditionally, otherwise admission requires strict
// inequality. A community at its cap is full.
func Decide(current int, max *int, hasFullAccess bool) bool {
	if hasFullAccess {
		return true
	}
	if max == nil {
		return true
	}
	return current < *max
}

// MemberLimitReachedError rejects a membership admission. It carries what
// the boundary needs for user-facing copy.
type MemberLimitReachedError struct {
	Current  int
	Max      int
	PlanName string
}

func (e *MemberLimitReachedError) Error() string {
	return fmt.Sprintf("community has reached the %d-member limit for plan %s", e.Max, e.PlanName)
}

// PlanLimitExceededError rejects a plan transition whose target cap is
// below current membership. The rule is cap comparison, not tier
// direction: moving from an unlimited plan to a capped one is rejected the
// same way a downgrade is.
type PlanLimitExceededError struct {
	Current  int
	Max      int
	PlanName string
}

func (e *PlanLimitExceededError) Error() string {
	return fmt.Sprintf("cannot switch to plan %s: %d members exceed its %d-member limit", e.PlanName, e.Current, e.Max)
}
