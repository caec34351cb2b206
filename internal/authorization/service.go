// Package authorization enforces role-based access over the admin and API
// surfaces with casbin, persisting policies through the gorm adapter.
package authorization

import (
	"context"
	"errors"
)

const (
	ObjectPlan       = "plan"
	ObjectCommunity  = "community"
	ObjectMembership = "membership"
	ObjectFullAccess = "full_access"
	ObjectQuota      = "quota"
	ObjectOverview   = "overview"
	ObjectAuditLog   = "audit_log"
)

const (
	ActionPlanView = "plan.view"

	ActionCommunityView       = "community.view"
	ActionCommunityCreate     = "community.create"
	ActionCommunityChangePlan = "community.change_plan"

	ActionMembershipView    = "membership.view"
	ActionMembershipCreate  = "membership.create"
	ActionMembershipRemove  = "membership.remove"
	ActionMembershipRecount = "membership.recount"

	ActionFullAccessGrant  = "full_access.grant"
	ActionFullAccessRevoke = "full_access.revoke"

	ActionQuotaView    = "quota.view"
	ActionOverviewView = "overview.view"
	ActionAuditLogView = "audit_log.view"
)

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidDomain = errors.New("invalid_domain")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
)

type Service interface {
	// Authorize checks that actor may perform action on object within the
	// given community scope. Pass an empty communityID for platform-wide
	// objects such as the overview.
	Authorize(ctx context.Context, actor string, communityID string, object string, action string) error
}
