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
	communitydomain "github.com/koomyhq/koomy/internal/community/domain"
	communityrepository "github.com/koomyhq/koomy/internal/community/repository"
	"github.com/koomyhq/koomy/internal/fullaccess/domain"
	plandomain "github.com/koomyhq/koomy/internal/plan/domain"
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
		&communitydomain.Community{},
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
		DB:            db,
		Log:           zap.NewNop(),
		Clock:         fake,
		CommunityRepo: communityrepository.Provide(),
		AuditSvc:      auditSvc,
	})

	return &fixture{db: db, node: node, clock: fake, svc: svc}
}

func (f *fixture) createCommunity(t *testing.T) *communitydomain.Community {
	t.Helper()
	c := &communitydomain.Community{
		ID:     f.node.Generate(),
		Name:   "Chess Club",
		Slug:   "chess-club-" + f.node.Generate().String(),
		PlanID: f.node.Generate(),
	}
	require.NoError(t, f.db.Create(c).Error)
	return c
}

func (f *fixture) grantRequest(communityID snowflake.ID, expiresAt *time.Time) domain.GrantRequest {
	return domain.GrantRequest{
		CommunityID: communityID.String(),
		GrantedBy:   f.node.Generate().String(),
		Reason:      "pilot customer",
		ExpiresAt:   expiresAt,
	}
}

func TestGrant_Permanent(t *testing.T) {
	f := newFixture(t)
	community := f.createCommunity(t)

	resp, err := f.svc.Grant(context.Background(), f.grantRequest(community.ID, nil))
	require.NoError(t, err)

	require.NotNil(t, resp.FullAccessGrantedAt)
	assert.Nil(t, resp.FullAccessExpiresAt)
	require.NotNil(t, resp.FullAccessReason)
	assert.Equal(t, "pilot customer", *resp.FullAccessReason)
	assert.NotNil(t, resp.FullAccessGrantedBy)
}

func TestGrant_OverwritesExistingGrant(t *testing.T) {
	f := newFixture(t)
	community := f.createCommunity(t)

	first := f.clock.Now().Add(24 * time.Hour)
	_, err := f.svc.Grant(context.Background(), f.grantRequest(community.ID, &first))
	require.NoError(t, err)

	// A fresh grant replaces the old one wholesale, expiry included.
	req := f.grantRequest(community.ID, nil)
	req.Reason = "contract renewal"
	resp, err := f.svc.Grant(context.Background(), req)
	require.NoError(t, err)

	assert.Nil(t, resp.FullAccessExpiresAt)
	assert.Equal(t, "contract renewal", *resp.FullAccessReason)
}

func TestGrant_RejectsPastExpiry(t *testing.T) {
	f := newFixture(t)
	community := f.createCommunity(t)

	past := f.clock.Now().Add(-time.Minute)
	_, err := f.svc.Grant(context.Background(), f.grantRequest(community.ID, &past))
	assert.ErrorIs(t, err, domain.ErrInvalidExpiry)

	at := f.clock.Now()
	_, err = f.svc.Grant(context.Background(), f.grantRequest(community.ID, &at))
	assert.ErrorIs(t, err, domain.ErrInvalidExpiry)
}

func TestGrant_Validation(t *testing.T) {
	f := newFixture(t)
	community := f.createCommunity(t)

	req := f.grantRequest(community.ID, nil)
	req.Reason = "  "
	_, err := f.svc.Grant(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidReason)

	req = f.grantRequest(community.ID, nil)
	req.GrantedBy = ""
	_, err = f.svc.Grant(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidGrantedBy)
}

func TestGrant_UnknownCommunity(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Grant(context.Background(), f.grantRequest(f.node.Generate(), nil))
	assert.ErrorIs(t, err, communitydomain.ErrNotFound)
}

func TestRevoke_ClearsGrant(t *testing.T) {
	f := newFixture(t)
	community := f.createCommunity(t)

	_, err := f.svc.Grant(context.Background(), f.grantRequest(community.ID, nil))
	require.NoError(t, err)

	resp, err := f.svc.Revoke(context.Background(), community.ID.String())
	require.NoError(t, err)

	assert.Nil(t, resp.FullAccessGrantedAt)
	assert.Nil(t, resp.FullAccessExpiresAt)
	assert.Nil(t, resp.FullAccessReason)
	assert.Nil(t, resp.FullAccessGrantedBy)
}

func TestRevoke_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	community := f.createCommunity(t)

	// Revoking a community that was never granted succeeds.
	resp, err := f.svc.Revoke(context.Background(), community.ID.String())
	require.NoError(t, err)
	assert.Nil(t, resp.FullAccessGrantedAt)

	resp, err = f.svc.Revoke(context.Background(), community.ID.String())
	require.NoError(t, err)
	assert.Nil(t, resp.FullAccessGrantedAt)
}

func TestGrantAndRevoke_RecordAudit(t *testing.T) {
	f := newFixture(t)
	community := f.createCommunity(t)

	_, err := f.svc.Grant(context.Background(), f.grantRequest(community.ID, nil))
	require.NoError(t, err)
	_, err = f.svc.Revoke(context.Background(), community.ID.String())
	require.NoError(t, err)

	var granted, revoked int64
	require.NoError(t, f.db.Model(&auditdomain.AuditLog{}).
		Where("action = ?", auditdomain.ActionFullAccessGranted).Count(&granted).Error)
	require.NoError(t, f.db.Model(&auditdomain.AuditLog{}).
		Where("action = ?", auditdomain.ActionFullAccessRevoked).Count(&revoked).Error)
	assert.EqualValues(t, 1, granted)
	assert.EqualValues(t, 1, revoked)
}
