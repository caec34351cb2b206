package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/koomyhq/koomy/internal/actorctx"
	auditdomain "github.com/koomyhq/koomy/internal/audit/domain"
	"github.com/koomyhq/koomy/internal/clock"
	communitydomain "github.com/koomyhq/koomy/internal/community/domain"
	communityservice "github.com/koomyhq/koomy/internal/community/service"
	"github.com/koomyhq/koomy/internal/fullaccess/domain"
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
	AuditSvc      auditdomain.Service
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	clock         clock.Clock
	communityRepo communitydomain.Repository
	auditSvc      auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("fullaccess.service"),
		clock:         p.Clock,
		communityRepo: p.CommunityRepo,
		auditSvc:      p.AuditSvc,
	}
}

func (s *Service) Grant(ctx context.Context, req domain.GrantRequest) (*communitydomain.Response, error) {
	communityID, err := snowflake.ParseString(strings.TrimSpace(req.CommunityID))
	if err != nil {
		return nil, communitydomain.ErrInvalidID
	}
	grantedBy, err := snowflake.ParseString(strings.TrimSpace(req.GrantedBy))
	if err != nil {
		return nil, domain.ErrInvalidGrantedBy
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, domain.ErrInvalidReason
	}

	now := s.clock.Now()
	if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		return nil, domain.ErrInvalidExpiry
	}

	var updated *communitydomain.Community
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		community, err := s.communityRepo.FindByIDForUpdate(ctx, tx, communityID)
		if err != nil {
			return err
		}
		if community == nil {
			return communitydomain.ErrNotFound
		}

		grantedAt := now
		if err := s.communityRepo.UpdateFullAccess(ctx, tx, communityID, &grantedAt, req.ExpiresAt, &reason, &grantedBy, now); err != nil {
			return err
		}

		community.FullAccessGrantedAt = &grantedAt
		community.FullAccessExpiresAt = req.ExpiresAt
		community.FullAccessReason = &reason
		community.FullAccessGrantedBy = &grantedBy
		community.UpdatedAt = now
		updated = community
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordGrant(ctx, updated, grantedBy, reason, req.ExpiresAt)

	resp := communityservice.ToResponse(updated)
	return &resp, nil
}

func (s *Service) Revoke(ctx context.Context, id string) (*communitydomain.Response, error) {
	communityID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, communitydomain.ErrInvalidID
	}

	now := s.clock.Now()

	var updated *communitydomain.Community
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		community, err := s.communityRepo.FindByIDForUpdate(ctx, tx, communityID)
		if err != nil {
			return err
		}
		if community == nil {
			return communitydomain.ErrNotFound
		}

		if err := s.communityRepo.UpdateFullAccess(ctx, tx, communityID, nil, nil, nil, nil, now); err != nil {
			return err
		}

		community.FullAccessGrantedAt = nil
		community.FullAccessExpiresAt = nil
		community.FullAccessReason = nil
		community.FullAccessGrantedBy = nil
		community.UpdatedAt = now
		updated = community
		return nil
	})
	if err != nil {
		return nil, err
	}

	var actor *string
	if actorID, ok := actorctx.ActorIDFromContext(ctx); ok {
		value := actorID.String()
		actor = &value
	}
	s.auditSvc.Record(ctx, &updated.ID, actor, auditdomain.ActionFullAccessRevoked, "community", nil, nil)

	resp := communityservice.ToResponse(updated)
	return &resp, nil
}

func (s *Service) recordGrant(ctx context.Context, community *communitydomain.Community, grantedBy snowflake.ID, reason string, expiresAt *time.Time) {
	actor := grantedBy.String()
	metadata := map[string]any{"reason": reason}
	if expiresAt != nil {
		metadata["expires_at"] = expiresAt.UTC().Format(time.RFC3339)
	}
	s.auditSvc.Record(ctx, &community.ID, &actor, auditdomain.ActionFullAccessGranted, "community", nil, metadata)
}
