package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/koomyhq/koomy/internal/audit/domain"
	auditrepository "github.com/koomyhq/koomy/internal/audit/repository"
	auditservice "github.com/koomyhq/koomy/internal/audit/service"
	"github.com/koomyhq/koomy/internal/clock"
	"github.com/koomyhq/koomy/internal/community/domain"
	communityrepository "github.com/koomyhq/koomy/internal/community/repository"
	"github.com/koomyhq/koomy/internal/config"
	membershipdomain "github.com/koomyhq/koomy/internal/membership/domain"
	plandomain "github.com/koomyhq/koomy/internal/plan/domain"
	planrepository "github.com/koomyhq/koomy/internal/plan/repository"
	quotadomain "github.com/koomyhq/koomy/internal/quota/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	svc   domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&plandomain.Plan{},
		&domain.Community{},
		&membershipdomain.Membership{},
		&auditdomain.AuditLog{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	auditSvc := auditservice.New(auditservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  auditrepository.Provide(),
	})

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fake,
		Repo:     communityrepository.Provide(),
		PlanRepo: planrepository.Provide(),
		AuditSvc: auditSvc,
		Platform: config.NewStaticPlatformConfigHolder(config.DefaultPlatformConfig()),
	})

	return &fixture{db: db, node: node, clock: fake, svc: svc}
}

func intPtr(v int) *int { return &v }

func (f *fixture) createPlan(t *testing.T, code string, maxMembers *int) *plandomain.Plan {
	t.Helper()
	p := &plandomain.Plan{
		ID:         f.node.Generate(),
		Code:       code,
		Name:       code,
		MaxMembers: maxMembers,
		IsPublic:   true,
	}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func (f *fixture) load(t *testing.T, id string) *domain.Community {
	t.Helper()
	parsed, err := snowflake.ParseString(id)
	require.NoError(t, err)
	var c domain.Community
	require.NoError(t, f.db.Where("id = ?", parsed).Take(&c).Error)
	return &c
}

func TestCreate_DefaultsToPlatformPlan(t *testing.T) {
	f := newFixture(t)
	starter := f.createPlan(t, "STARTER_FREE", intPtr(50))

	resp, err := f.svc.Create(context.Background(), domain.CreateRequest{
		Name: "Berlin Chess Club",
	})
	require.NoError(t, err)

	assert.Equal(t, starter.ID.String(), resp.PlanID)
	assert.Equal(t, "berlin-chess-club", resp.Slug)
	assert.Equal(t, 0, resp.MemberCount)
}

func TestCreate_ExplicitPlanCode(t *testing.T) {
	f := newFixture(t)
	f.createPlan(t, "STARTER_FREE", intPtr(50))
	club := f.createPlan(t, "CLUB", intPtr(250))

	resp, err := f.svc.Create(context.Background(), domain.CreateRequest{
		Name:     "Berlin Chess Club",
		PlanCode: "CLUB",
	})
	require.NoError(t, err)
	assert.Equal(t, club.ID.String(), resp.PlanID)
}

func TestCreate_UnknownPlanCode(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), domain.CreateRequest{
		Name:     "Berlin Chess Club",
		PlanCode: "GOLD",
	})
	assert.ErrorIs(t, err, plandomain.ErrNotFound)
}

func TestCreate_SlugConflict(t *testing.T) {
	f := newFixture(t)
	f.createPlan(t, "STARTER_FREE", intPtr(50))

	_, err := f.svc.Create(context.Background(), domain.CreateRequest{Name: "Berlin Chess Club"})
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), domain.CreateRequest{Name: "Berlin Chess Club"})
	assert.ErrorIs(t, err, domain.ErrSlugTaken)
}

func TestChangePlan_RejectsCapBelowMembership(t *testing.T) {
	f := newFixture(t)
	club := f.createPlan(t, "CLUB", intPtr(250))
	starter := f.createPlan(t, "STARTER_FREE", intPtr(50))

	resp, err := f.svc.Create(context.Background(), domain.CreateRequest{
		Name:     "Berlin Chess Club",
		PlanCode: "CLUB",
	})
	require.NoError(t, err)

	community := f.load(t, resp.ID)
	require.NoError(t, f.db.Model(&domain.Community{}).
		Where("id = ?", community.ID).
		Update("member_count", 120).Error)

	_, err = f.svc.ChangePlan(context.Background(), resp.ID, starter.ID.String())

	var planErr *quotadomain.PlanLimitExceededError
	require.ErrorAs(t, err, &planErr)
	assert.Equal(t, 120, planErr.Current)
	assert.Equal(t, 50, planErr.Max)
	assert.Equal(t, "STARTER_FREE", planErr.PlanName)

	// Rejection leaves the row exactly as it was.
	after := f.load(t, resp.ID)
	assert.Equal(t, club.ID, after.PlanID)
	assert.Equal(t, 120, after.MemberCount)
}

func TestChangePlan_AcceptsWhenCapFits(t *testing.T) {
	f := newFixture(t)
	f.createPlan(t, "CLUB", intPtr(250))
	starter := f.createPlan(t, "STARTER_FREE", intPtr(50))

	resp, err := f.svc.Create(context.Background(), domain.CreateRequest{
		Name:     "Berlin Chess Club",
		PlanCode: "CLUB",
	})
	require.NoError(t, err)

	// Membership exactly at the target cap is allowed; the community is
	// simply full afterwards.
	require.NoError(t, f.db.Model(&domain.Community{}).
		Where("id = ?", f.load(t, resp.ID).ID).
		Update("member_count", 50).Error)

	changed, err := f.svc.ChangePlan(context.Background(), resp.ID, starter.ID.String())
	require.NoError(t, err)
	assert.Equal(t, starter.ID.String(), changed.PlanID)
	assert.Equal(t, 50, changed.MemberCount)
}

func TestChangePlan_ToUnlimited(t *testing.T) {
	f := newFixture(t)
	f.createPlan(t, "STARTER_FREE", intPtr(50))
	enterprise := f.createPlan(t, "ENTERPRISE", nil)

	resp, err := f.svc.Create(context.Background(), domain.CreateRequest{Name: "Berlin Chess Club"})
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&domain.Community{}).
		Where("id = ?", f.load(t, resp.ID).ID).
		Update("member_count", 49).Error)

	changed, err := f.svc.ChangePlan(context.Background(), resp.ID, enterprise.ID.String())
	require.NoError(t, err)
	assert.Equal(t, enterprise.ID.String(), changed.PlanID)
}

func TestChangePlan_LeavesFullAccessUntouched(t *testing.T) {
	f := newFixture(t)
	f.createPlan(t, "STARTER_FREE", intPtr(50))
	club := f.createPlan(t, "CLUB", intPtr(250))

	resp, err := f.svc.Create(context.Background(), domain.CreateRequest{Name: "Berlin Chess Club"})
	require.NoError(t, err)

	grantedAt := f.clock.Now().Add(-time.Hour)
	require.NoError(t, f.db.Model(&domain.Community{}).
		Where("id = ?", f.load(t, resp.ID).ID).
		Update("full_access_granted_at", grantedAt).Error)

	changed, err := f.svc.ChangePlan(context.Background(), resp.ID, club.ID.String())
	require.NoError(t, err)
	require.NotNil(t, changed.FullAccessGrantedAt)
	assert.True(t, changed.FullAccessGrantedAt.Equal(grantedAt))
}

func TestChangePlan_RecordsAudit(t *testing.T) {
	f := newFixture(t)
	f.createPlan(t, "STARTER_FREE", intPtr(50))
	club := f.createPlan(t, "CLUB", intPtr(250))

	resp, err := f.svc.Create(context.Background(), domain.CreateRequest{Name: "Berlin Chess Club"})
	require.NoError(t, err)

	_, err = f.svc.ChangePlan(context.Background(), resp.ID, club.ID.String())
	require.NoError(t, err)

	var audits int64
	require.NoError(t, f.db.Model(&auditdomain.AuditLog{}).
		Where("action = ?", auditdomain.ActionPlanChanged).Count(&audits).Error)
	assert.EqualValues(t, 1, audits)
}
