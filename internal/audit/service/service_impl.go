package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/koomyhq/koomy/internal/audit/domain"
	"github.com/koomyhq/koomy/internal/clock"
	"github.com/koomyhq/koomy/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, communityID *snowflake.ID, actorID *string, action, targetType string, targetID *string, metadata map[string]any) {
	entry := &domain.AuditLog{
		ID:          s.genID.Generate(),
		CommunityID: communityID,
		ActorID:     actorID,
		Action:      strings.TrimSpace(action),
		TargetType:  strings.TrimSpace(targetType),
		TargetID:    targetID,
		CreatedAt:   s.clock.Now(),
	}
	if metadata != nil {
		entry.Metadata = datatypes.JSONMap(metadata)
	}

	if err := s.repo.Insert(ctx, s.db, entry); err != nil {
		s.log.Warn("audit insert failed",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	if req.StartAt != nil && req.EndAt != nil && req.EndAt.Before(*req.StartAt) {
		return domain.ListResponse{}, domain.ErrInvalidTimeRange
	}

	afterID := ""
	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidPageToken
		}
		afterID = cursor.ID
	}

	limit := req.PageSize
	if limit <= 0 {
		limit = 20
	}

	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		CommunityID: strings.TrimSpace(req.CommunityID),
		Action:      strings.TrimSpace(req.Action),
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		AfterID:     afterID,
		Limit:       limit,
	})
	if err != nil {
		return domain.ListResponse{}, err
	}

	resp := domain.ListResponse{AuditLogs: items}
	if len(items) > limit {
		resp.AuditLogs = items[:limit]
		resp.HasMore = true
		last := resp.AuditLogs[len(resp.AuditLogs)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: last.ID.String()})
		if err == nil {
			resp.NextPageToken = token
		}
	}
	return resp, nil
}
