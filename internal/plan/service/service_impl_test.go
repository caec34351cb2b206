package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/koomyhq/koomy/internal/plan/domain"
	planrepository "github.com/koomyhq/koomy/internal/plan/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Plan{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: planrepository.Provide(),
	})
	return svc, db, node
}

func seedPlan(t *testing.T, db *gorm.DB, node *snowflake.Node, code string, isPublic bool, sortOrder int) *domain.Plan {
	t.Helper()
	max := 100
	p := &domain.Plan{
		ID:         node.Generate(),
		Code:       code,
		Name:       code,
		MaxMembers: &max,
		IsPublic:   isPublic,
		SortOrder:  sortOrder,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestGet(t *testing.T) {
	svc, db, node := newService(t)
	plan := seedPlan(t, db, node, "CLUB", true, 1)

	resp, err := svc.Get(context.Background(), plan.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "CLUB", resp.Code)
	require.NotNil(t, resp.MaxMembers)
	assert.Equal(t, 100, *resp.MaxMembers)

	_, err = svc.Get(context.Background(), node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), "bogus")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestGetByCode(t *testing.T) {
	svc, db, node := newService(t)
	seedPlan(t, db, node, "STARTER_FREE", true, 0)

	resp, err := svc.GetByCode(context.Background(), "STARTER_FREE")
	require.NoError(t, err)
	assert.Equal(t, "STARTER_FREE", resp.Code)

	_, err = svc.GetByCode(context.Background(), "GOLD")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByCode(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
}

func TestList_PublicPlansInOrder(t *testing.T) {
	svc, db, node := newService(t)
	seedPlan(t, db, node, "FEDERATION", true, 2)
	seedPlan(t, db, node, "STARTER_FREE", true, 0)
	seedPlan(t, db, node, "CLUB", true, 1)
	seedPlan(t, db, node, "ENTERPRISE", false, 3)

	resp, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, resp, 3)
	assert.Equal(t, "STARTER_FREE", resp[0].Code)
	assert.Equal(t, "CLUB", resp[1].Code)
	assert.Equal(t, "FEDERATION", resp[2].Code)
}
