package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/koomyhq/koomy/internal/audit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

// domainPlatform scopes operator-wide permissions; community-scoped checks
// use "community:<id>".
const domainPlatform = "platform"

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor string, communityID string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}
	communityID = strings.TrimSpace(communityID)

	subject, roleName, err := s.resolveActor(ctx, actor, communityID)
	if err != nil {
		s.auditDenied(ctx, actor, communityID, object, action)
		return err
	}

	domain := domainPlatform
	if communityID != "" && !strings.HasPrefix(roleName, "role:operator") {
		domain = fmt.Sprintf("community:%s", communityID)
	}
	if err := s.ensureGrouping(subject, roleName, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, actor, communityID, object, action)
		return ErrForbidden
	}
	return nil
}

// resolveActor maps the wire actor string to a casbin subject and role.
// Supported shapes: "system", "operator:<id>", "user:<id>".
func (s *ServiceImpl) resolveActor(ctx context.Context, actor string, communityID string) (string, string, error) {
	if actor == "system" {
		return actor, "role:operator", nil
	}
	if raw, ok := strings.CutPrefix(actor, "operator:"); ok {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return "", "", ErrInvalidActor
		}
		return actor, "role:operator", nil
	}
	if raw, ok := strings.CutPrefix(actor, "user:"); ok {
		userID, err := snowflake.ParseString(raw)
		if err != nil || userID == 0 {
			return "", "", ErrInvalidActor
		}
		parsedCommunityID, err := snowflake.ParseString(communityID)
		if err != nil || parsedCommunityID == 0 {
			return actor, "", ErrInvalidDomain
		}
		role, err := s.roleForUser(ctx, parsedCommunityID, userID)
		if err != nil {
			return actor, "", err
		}
		return actor, fmt.Sprintf("role:%s", strings.ToLower(role)), nil
	}
	return "", "", ErrInvalidActor
}

func (s *ServiceImpl) roleForUser(ctx context.Context, communityID snowflake.ID, userID snowflake.ID) (string, error) {
	var row struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role
		 FROM memberships
		 WHERE community_id = ? AND user_id = ?
		 LIMIT 1`,
		communityID,
		userID,
	).Scan(&row).Error; err != nil {
		return "", err
	}

	role := strings.TrimSpace(row.Role)
	if role == "" {
		return "", ErrForbidden
	}
	return role, nil
}

func (s *ServiceImpl) ensureGrouping(subject string, roleName string, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, actor string, communityID string, object string, action string) {
	if s.auditSvc == nil {
		return
	}
	var community *snowflake.ID
	if parsed, err := snowflake.ParseString(communityID); err == nil && parsed != 0 {
		community = &parsed
	}
	targetID := "capability"
	s.auditSvc.Record(ctx, community, &actor, "authorization.denied", "authorization", &targetID, map[string]any{
		"object": object,
		"action": action,
	})
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Community members see their own roster and quota.
		{"role:member", ObjectCommunity, ActionCommunityView},
		{"role:member", ObjectMembership, ActionMembershipView},
		{"role:member", ObjectQuota, ActionQuotaView},

		// Community admins manage their roster.
		{"role:admin", ObjectCommunity, ActionCommunityView},
		{"role:admin", ObjectCommunity, ActionCommunityChangePlan},
		{"role:admin", ObjectMembership, ActionMembershipView},
		{"role:admin", ObjectMembership, ActionMembershipCreate},
		{"role:admin", ObjectMembership, ActionMembershipRemove},
		{"role:admin", ObjectQuota, ActionQuotaView},
		{"role:admin", ObjectPlan, ActionPlanView},

		// Platform operators get the whole surface, including overrides.
		{"role:operator", ObjectPlan, ActionPlanView},
		{"role:operator", ObjectCommunity, ActionCommunityView},
		{"role:operator", ObjectCommunity, ActionCommunityCreate},
		{"role:operator", ObjectCommunity, ActionCommunityChangePlan},
		{"role:operator", ObjectMembership, ActionMembershipView},
		{"role:operator", ObjectMembership, ActionMembershipCreate},
		{"role:operator", ObjectMembership, ActionMembershipRemove},
		{"role:operator", ObjectMembership, ActionMembershipRecount},
		{"role:operator", ObjectFullAccess, ActionFullAccessGrant},
		{"role:operator", ObjectFullAccess, ActionFullAccessRevoke},
		{"role:operator", ObjectQuota, ActionQuotaView},
		{"role:operator", ObjectOverview, ActionOverviewView},
		{"role:operator", ObjectAuditLog, ActionAuditLogView},
	}

	for _, policy := range policies {
		has, err := enforcer.HasPolicy(policy[0], policy[1], policy[2])
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy[0], policy[1], policy[2]); err != nil {
			return err
		}
	}
	return nil
}
