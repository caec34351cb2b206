package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/koomyhq/koomy/internal/actorctx"
	auditdomain "github.com/koomyhq/koomy/internal/audit/domain"
	"github.com/koomyhq/koomy/internal/clock"
	"github.com/koomyhq/koomy/internal/community/domain"
	"github.com/koomyhq/koomy/internal/config"
	plandomain "github.com/koomyhq/koomy/internal/plan/domain"
	quotadomain "github.com/koomyhq/koomy/internal/quota/domain"
	"github.com/koomyhq/koomy/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	PlanRepo plandomain.Repository
	AuditSvc auditdomain.Service
	Platform *config.PlatformConfigHolder
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	planRepo plandomain.Repository
	auditSvc auditdomain.Service
	platform *config.PlatformConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("community.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		planRepo: p.PlanRepo,
		auditSvc: p.AuditSvc,
		platform: p.Platform,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	communitySlug := strings.TrimSpace(req.Slug)
	if communitySlug == "" {
		communitySlug = slug.Make(name)
	} else {
		communitySlug = slug.Make(communitySlug)
	}
	if communitySlug == "" {
		return nil, domain.ErrInvalidSlug
	}

	planCode := strings.TrimSpace(req.PlanCode)
	if planCode == "" {
		planCode = s.platform.Get().DefaultPlanCode
	}
	p, err := s.planRepo.FindByCode(ctx, s.db, planCode)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, plandomain.ErrNotFound
	}

	now := s.clock.Now()
	c := &domain.Community{
		ID:          s.genID.Generate(),
		Name:        name,
		Slug:        communitySlug,
		PlanID:      p.ID,
		MemberCount: 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Metadata != nil {
		c.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.Create(ctx, s.db, c); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugTaken
		}
		return nil, err
	}

	resp := ToResponse(c)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	communityID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, communityID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := ToResponse(item)
	return &resp, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Response, error) {
	items, err := s.repo.FindAll(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, ToResponse(&items[i]))
	}
	return resp, nil
}

// ChangePlan rejects any transition whose target cap is below current
// membership, regardless of tier direction. On success only plan_id moves;
// member_count and the full-access grant stay as they are.
func (s *Service) ChangePlan(ctx context.Context, communityID, newPlanID string) (*domain.Response, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(communityID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	planID, err := snowflake.ParseString(strings.TrimSpace(newPlanID))
	if err != nil {
		return nil, plandomain.ErrInvalidID
	}

	var updated *domain.Community
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		community, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if community == nil {
			return domain.ErrNotFound
		}

		newPlan, err := s.planRepo.FindByID(ctx, tx, planID)
		if err != nil {
			return err
		}
		if newPlan == nil {
			return plandomain.ErrNotFound
		}

		memberCount := community.MemberCount
		if memberCount < 0 {
			memberCount = 0
		}
		if newPlan.MaxMembers != nil && memberCount > *newPlan.MaxMembers {
			return &quotadomain.PlanLimitExceededError{
				Current:  memberCount,
				Max:      *newPlan.MaxMembers,
				PlanName: newPlan.Name,
			}
		}

		now := s.clock.Now()
		if err := s.repo.UpdatePlan(ctx, tx, id, planID, now); err != nil {
			return err
		}

		community.PlanID = planID
		community.UpdatedAt = now
		updated = community
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordPlanChange(ctx, updated)

	resp := ToResponse(updated)
	return &resp, nil
}

func (s *Service) recordPlanChange(ctx context.Context, community *domain.Community) {
	var actorID *string
	if actor, ok := actorctx.ActorIDFromContext(ctx); ok {
		value := actor.String()
		actorID = &value
	}
	planID := community.PlanID.String()
	s.auditSvc.Record(ctx, &community.ID, actorID, auditdomain.ActionPlanChanged, "community", &planID, map[string]any{
		"plan_id":      planID,
		"member_count": community.MemberCount,
	})
}

// ToResponse maps the persistence model to the API shape.
func ToResponse(c *domain.Community) domain.Response {
	resp := domain.Response{
		ID:                  c.ID.String(),
		Name:                c.Name,
		Slug:                c.Slug,
		PlanID:              c.PlanID.String(),
		MemberCount:         c.MemberCount,
		FullAccessGrantedAt: c.FullAccessGrantedAt,
		FullAccessExpiresAt: c.FullAccessExpiresAt,
		FullAccessReason:    c.FullAccessReason,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}

	if c.FullAccessGrantedBy != nil {
		value := c.FullAccessGrantedBy.String()
		resp.FullAccessGrantedBy = &value
	}
	if len(c.Metadata) > 0 {
		resp.Metadata = map[string]any(c.Metadata)
	}

	return resp
}
