package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/koomyhq/koomy/internal/clock"
	communitydomain "github.com/koomyhq/koomy/internal/community/domain"
	communityrepository "github.com/koomyhq/koomy/internal/community/repository"
	"github.com/koomyhq/koomy/internal/config"
	"github.com/koomyhq/koomy/internal/overview/domain"
	plandomain "github.com/koomyhq/koomy/internal/plan/domain"
	planrepository "github.com/koomyhq/koomy/internal/plan/repository"
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
	require.NoError(t, db.AutoMigrate(&plandomain.Plan{}, &communitydomain.Community{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:            db,
		Logger:        zap.NewNop(),
		Clock:         fake,
		Platform:      config.NewStaticPlatformConfigHolder(config.DefaultPlatformConfig()),
		PlanRepo:      planrepository.Provide(),
		CommunityRepo: communityrepository.Provide(),
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

func (f *fixture) createCommunity(t *testing.T, planID snowflake.ID, memberCount int, fullAccess bool) *communitydomain.Community {
	t.Helper()
	c := &communitydomain.Community{
		ID:          f.node.Generate(),
		Name:        "Community " + f.node.Generate().String(),
		Slug:        "community-" + f.node.Generate().String(),
		PlanID:      planID,
		MemberCount: memberCount,
	}
	if fullAccess {
		grantedAt := f.clock.Now().Add(-time.Hour)
		c.FullAccessGrantedAt = &grantedAt
	}
	require.NoError(t, f.db.Create(c).Error)
	return c
}

func TestGet_AggregatesPerPlan(t *testing.T) {
	f := newFixture(t)
	starter := f.createPlan(t, "STARTER_FREE", intPtr(50))
	club := f.createPlan(t, "CLUB", intPtr(250))

	f.createCommunity(t, starter.ID, 10, false)
	f.createCommunity(t, starter.ID, 20, false)
	f.createCommunity(t, club.ID, 100, true)

	overview, err := f.svc.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, overview.TotalCommunities)
	assert.Equal(t, 130, overview.TotalMembers)
	assert.Equal(t, 1, overview.ActiveFullAccess)

	require.Len(t, overview.Plans, 2)
	assert.Equal(t, "CLUB", overview.Plans[0].PlanCode)
	assert.Equal(t, 1, overview.Plans[0].Communities)
	assert.Equal(t, 100, overview.Plans[0].Members)
	assert.Equal(t, "STARTER_FREE", overview.Plans[1].PlanCode)
	assert.Equal(t, 2, overview.Plans[1].Communities)
	assert.Equal(t, 30, overview.Plans[1].Members)
}

func TestGet_CapAlerts(t *testing.T) {
	f := newFixture(t)
	starter := f.createPlan(t, "STARTER_FREE", intPtr(50))

	f.createCommunity(t, starter.ID, 10, false) // comfortable
	nearCap := f.createCommunity(t, starter.ID, 45, false)
	atCap := f.createCommunity(t, starter.ID, 50, false)
	overCap := f.createCommunity(t, starter.ID, 60, true)

	overview, err := f.svc.Get(context.Background())
	require.NoError(t, err)

	require.Len(t, overview.NearCap, 1)
	assert.Equal(t, nearCap.ID.String(), overview.NearCap[0].CommunityID)
	assert.InDelta(t, 0.9, overview.NearCap[0].Utilization, 0.001)

	require.Len(t, overview.AtCap, 2)
	assert.Equal(t, overCap.ID.String(), overview.AtCap[0].CommunityID)
	assert.True(t, overview.AtCap[0].HasFullAccess)
	assert.Equal(t, atCap.ID.String(), overview.AtCap[1].CommunityID)
}

func TestGet_UnlimitedPlansProduceNoAlerts(t *testing.T) {
	f := newFixture(t)
	enterprise := f.createPlan(t, "ENTERPRISE", nil)
	f.createCommunity(t, enterprise.ID, 100_000, false)

	overview, err := f.svc.Get(context.Background())
	require.NoError(t, err)

	assert.Empty(t, overview.NearCap)
	assert.Empty(t, overview.AtCap)
}
