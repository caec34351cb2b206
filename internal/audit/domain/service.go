package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/koomyhq/koomy/pkg/db/pagination"
)

const (
	ActionFullAccessGranted = "community.full_access_granted"
	ActionFullAccessRevoked = "community.full_access_revoked"
	ActionPlanChanged       = "community.plan_changed"
	ActionMembersRecounted  = "community.members_recounted"
)

type ListRequest struct {
	pagination.Pagination
	CommunityID string
	Action      string
	StartAt     *time.Time
	EndAt       *time.Time
}

type ListResponse struct {
	pagination.PageInfo
	AuditLogs []AuditLog `json:"audit_logs"`
}

type Service interface {
	// Record appends an audit entry. Failures are logged, never propagated:
	// an audit miss must not fail the underlying operation.
	Record(ctx context.Context, communityID *snowflake.ID, actorID *string, action, targetType string, targetID *string, metadata map[string]any)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

var (
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
)
