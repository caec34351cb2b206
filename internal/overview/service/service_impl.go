package service

import (
	"context"
	"sort"

	communitydomain "github.com/koomyhq/koomy/internal/community/domain"
	"github.com/koomyhq/koomy/internal/clock"
	"github.com/koomyhq/koomy/internal/config"
	fullaccessdomain "github.com/koomyhq/koomy/internal/fullaccess/domain"
	"github.com/koomyhq/koomy/internal/overview/domain"
	plandomain "github.com/koomyhq/koomy/internal/plan/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Logger        *zap.Logger
	Clock         clock.Clock
	Platform      *config.PlatformConfigHolder
	PlanRepo      plandomain.Repository
	CommunityRepo communitydomain.Repository
}

type Service struct {
	db            *gorm.DB
	logger        *zap.Logger
	clock         clock.Clock
	platform      *config.PlatformConfigHolder
	planRepo      plandomain.Repository
	communityRepo communitydomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		logger:        p.Logger.Named("overview.service"),
		clock:         p.Clock,
		platform:      p.Platform,
		planRepo:      p.PlanRepo,
		communityRepo: p.CommunityRepo,
	}
}

func (s *Service) Get(ctx context.Context) (*domain.Overview, error) {
	communities, err := s.communityRepo.FindAll(ctx, s.db)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	warnRatio := s.platform.Get().QuotaWarningRatio

	overview := &domain.Overview{
		Plans:   []domain.PlanSlice{},
		NearCap: []domain.CapAlert{},
		AtCap:   []domain.CapAlert{},
	}

	plans := map[int64]*plandomain.Plan{}
	slices := map[int64]*domain.PlanSlice{}

	for i := range communities {
		c := &communities[i]
		overview.TotalCommunities++
		overview.TotalMembers += c.MemberCount

		hasFullAccess := fullaccessdomain.IsActive(c, now)
		if hasFullAccess {
			overview.ActiveFullAccess++
		}

		plan, ok := plans[int64(c.PlanID)]
		if !ok {
			plan, err = s.planRepo.FindByID(ctx, s.db, c.PlanID)
			if err != nil {
				return nil, err
			}
			if plan == nil {
				s.logger.Warn("community references unknown plan",
					zap.String("community_id", c.ID.String()),
					zap.String("plan_id", c.PlanID.String()),
				)
				continue
			}
			plans[int64(c.PlanID)] = plan
			slices[int64(c.PlanID)] = &domain.PlanSlice{
				PlanID:   plan.ID.String(),
				PlanCode: plan.Code,
				PlanName: plan.Name,
			}
		}

		slice := slices[int64(c.PlanID)]
		slice.Communities++
		slice.Members += c.MemberCount

		if plan.MaxMembers == nil || *plan.MaxMembers <= 0 {
			continue
		}

		alert := domain.CapAlert{
			CommunityID:   c.ID.String(),
			CommunityName: c.Name,
			Current:       c.MemberCount,
			Max:           *plan.MaxMembers,
			Utilization:   float64(c.MemberCount) / float64(*plan.MaxMembers),
			HasFullAccess: hasFullAccess,
		}
		switch {
		case c.MemberCount >= *plan.MaxMembers:
			overview.AtCap = append(overview.AtCap, alert)
		case alert.Utilization >= warnRatio:
			overview.NearCap = append(overview.NearCap, alert)
		}
	}

	for _, slice := range slices {
		overview.Plans = append(overview.Plans, *slice)
	}
	sort.Slice(overview.Plans, func(i, j int) bool {
		return overview.Plans[i].PlanCode < overview.Plans[j].PlanCode
	})
	sort.Slice(overview.AtCap, func(i, j int) bool {
		return overview.AtCap[i].Utilization > overview.AtCap[j].Utilization
	})
	sort.Slice(overview.NearCap, func(i, j int) bool {
		return overview.NearCap[i].Utilization > overview.NearCap[j].Utilization
	})

	return overview, nil
}
