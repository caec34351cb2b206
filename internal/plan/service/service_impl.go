package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/koomyhq/koomy/internal/plan/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("plan.service"),
		repo: p.Repo,
	}
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	planID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, planID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (*domain.Response, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrInvalidCode
	}

	item, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Response, error) {
	items, err := s.repo.FindAllPublic(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func toResponse(p *domain.Plan) domain.Response {
	return domain.Response{
		ID:           p.ID.String(),
		Code:         p.Code,
		Name:         p.Name,
		MaxMembers:   p.MaxMembers,
		PriceMonthly: p.PriceMonthly,
		PriceYearly:  p.PriceYearly,
		IsPublic:     p.IsPublic,
		SortOrder:    p.SortOrder,
	}
}
