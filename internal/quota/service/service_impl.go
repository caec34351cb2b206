package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/koomyhq/koomy/internal/cache"
	"github.com/koomyhq/koomy/internal/clock"
	communitydomain "github.com/koomyhq/koomy/internal/community/domain"
	fullaccessdomain "github.com/koomyhq/koomy/internal/fullaccess/domain"
	plandomain "github.com/koomyhq/koomy/internal/plan/domain"
	"github.com/koomyhq/koomy/internal/quota/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Clock         clock.Clock
	CommunityRepo communitydomain.Repository
	PlanRepo      plandomain.Repository
	PlanCache     *cache.PlanCache `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	clock         clock.Clock
	communityRepo communitydomain.Repository
	planRepo      plandomain.Repository
	planCache     *cache.PlanCache
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("quota.service"),
		clock:         p.Clock,
		communityRepo: p.CommunityRepo,
		planRepo:      p.PlanRepo,
		planCache:     p.PlanCache,
	}
}

func (s *Service) Check(ctx context.Context, communityID string) (*domain.Status, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(communityID))
	if err != nil {
		return nil, communitydomain.ErrInvalidID
	}

	community, err := s.communityRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if community == nil {
		return nil, communitydomain.ErrNotFound
	}

	return s.StatusFor(ctx, s.db, community)
}

// StatusFor computes the admission decision for an already-loaded community
// row. Membership admission calls this on a locked row inside its
// transaction so the decision and the counter write cannot interleave.
func (s *Service) StatusFor(ctx context.Context, db *gorm.DB, community *communitydomain.Community) (*domain.Status, error) {
	p, err := s.lookupPlan(ctx, db, community.PlanID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		// A community pointing at a missing plan is corrupt reference data,
		// not a user error.
		s.log.Error("community references unknown plan",
			zap.String("community_id", community.ID.String()),
			zap.String("plan_id", community.PlanID.String()),
		)
		return nil, plandomain.ErrNotFound
	}

	current := community.MemberCount
	if current < 0 {
		current = 0
	}
	hasFullAccess := fullaccessdomain.IsActive(community, s.clock.Now())

	return &domain.Status{
		CanAdd:        domain.Decide(current, p.MaxMembers, hasFullAccess),
		Current:       current,
		Max:           p.MaxMembers,
		PlanName:      p.Name,
		HasFullAccess: hasFullAccess,
	}, nil
}

func (s *Service) lookupPlan(ctx context.Context, db *gorm.DB, id snowflake.ID) (*plandomain.Plan, error) {
	if s.planCache != nil {
		if p, ok := s.planCache.Get(id); ok {
			return p, nil
		}
	}
	p, err := s.planRepo.FindByID(ctx, db, id)
	if err != nil || p == nil {
		return p, err
	}
	if s.planCache != nil {
		s.planCache.Set(p)
	}
	return p, nil
}
