package scheduler

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
	communitydomain "github.com/koomyhq/koomy/internal/community/domain"
	communityrepository "github.com/koomyhq/koomy/internal/community/repository"
	membershipdomain "github.com/koomyhq/koomy/internal/membership/domain"
	membershiprepository "github.com/koomyhq/koomy/internal/membership/repository"
	membershipservice "github.com/koomyhq/koomy/internal/membership/service"
	plandomain "github.com/koomyhq/koomy/internal/plan/domain"
	planrepository "github.com/koomyhq/koomy/internal/plan/repository"
	quotaservice "github.com/koomyhq/koomy/internal/quota/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	sched *Scheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&plandomain.Plan{},
		&communitydomain.Community{},
		&membershipdomain.Membership{},
		&auditdomain.AuditLog{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	communityRepo := communityrepository.Provide()
	planRepo := planrepository.Provide()

	quotaSvc := quotaservice.New(quotaservice.Params{
		DB:            db,
		Log:           zap.NewNop(),
		Clock:         fake,
		CommunityRepo: communityRepo,
		PlanRepo:      planRepo,
	})

	auditSvc := auditservice.New(auditservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  auditrepository.Provide(),
	})

	membershipSvc := membershipservice.New(membershipservice.Params{
		DB:            db,
		Log:           zap.NewNop(),
		GenID:         node,
		Clock:         fake,
		Repo:          membershiprepository.Provide(),
		CommunityRepo: communityRepo,
		QuotaSvc:      quotaSvc,
		AuditSvc:      auditSvc,
	})

	sched, err := New(Params{
		DB:            db,
		Log:           zap.NewNop(),
		MembershipSvc: membershipSvc,
		CommunityRepo: communityRepo,
	})
	require.NoError(t, err)

	return &fixture{db: db, node: node, sched: sched}
}

func (f *fixture) createCommunity(t *testing.T, planID snowflake.ID, slug string, counter, members int) *communitydomain.Community {
	t.Helper()
	community := &communitydomain.Community{
		ID:          f.node.Generate(),
		Name:        slug,
		Slug:        slug,
		PlanID:      planID,
		MemberCount: counter,
	}
	require.NoError(t, f.db.Create(community).Error)
	for i := 0; i < members; i++ {
		require.NoError(t, f.db.Create(&membershipdomain.Membership{
			ID:          f.node.Generate(),
			CommunityID: community.ID,
			UserID:      f.node.Generate(),
			DisplayName: "Member",
			Email:       "member@example.com",
			Role:        membershipdomain.RoleMember,
			Status:      membershipdomain.StatusActive,
			JoinedAt:    time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		}).Error)
	}
	return community
}

func TestRunOnceCorrectsDriftedCounters(t *testing.T) {
	f := newFixture(t)

	plan := &plandomain.Plan{ID: f.node.Generate(), Code: "CLUB", Name: "Club"}
	require.NoError(t, f.db.Create(plan).Error)

	drifted := f.createCommunity(t, plan.ID, "drifted", 9, 3)
	stable := f.createCommunity(t, plan.ID, "stable", 2, 2)

	corrected, err := f.sched.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, corrected)

	var got communitydomain.Community
	require.NoError(t, f.db.First(&got, "id = ?", drifted.ID).Error)
	assert.Equal(t, 3, got.MemberCount)

	got = communitydomain.Community{}
	require.NoError(t, f.db.First(&got, "id = ?", stable.ID).Error)
	assert.Equal(t, 2, got.MemberCount)
}

func TestRunOnceIsStableOnCleanCounters(t *testing.T) {
	f := newFixture(t)

	plan := &plandomain.Plan{ID: f.node.Generate(), Code: "CLUB", Name: "Club"}
	require.NoError(t, f.db.Create(plan).Error)
	f.createCommunity(t, plan.ID, "clean", 4, 4)

	corrected, err := f.sched.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, corrected)

	corrected, err = f.sched.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, corrected)
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
