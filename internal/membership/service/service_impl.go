package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/koomyhq/koomy/internal/actorctx"
	auditdomain "github.com/koomyhq/koomy/internal/audit/domain"
	"github.com/koomyhq/koomy/internal/clock"
	communitydomain "github.com/koomyhq/koomy/internal/community/domain"
	"github.com/koomyhq/koomy/internal/membership/domain"
	quotadomain "github.com/koomyhq/koomy/internal/quota/domain"
	"github.com/koomyhq/koomy/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          domain.Repository
	CommunityRepo communitydomain.Repository
	QuotaSvc      quotadomain.Service
	AuditSvc      auditdomain.Service
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	repo          domain.Repository
	communityRepo communitydomain.Repository
	quotaSvc      quotadomain.Service
	auditSvc      auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("membership.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		repo:          p.Repo,
		communityRepo: p.CommunityRepo,
		quotaSvc:      p.QuotaSvc,
		auditSvc:      p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	communityID, err := snowflake.ParseString(strings.TrimSpace(req.CommunityID))
	if err != nil {
		return nil, communitydomain.ErrInvalidID
	}
	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil {
		return nil, domain.ErrInvalidUser
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		return nil, domain.ErrInvalidName
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidEmail
	}

	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role == "" {
		role = domain.RoleMember
	}
	if role != domain.RoleMember && role != domain.RoleAdmin {
		return nil, domain.ErrInvalidRole
	}

	var created *domain.Membership
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		community, err := s.communityRepo.FindByIDForUpdate(ctx, tx, communityID)
		if err != nil {
			return err
		}
		if community == nil {
			return communitydomain.ErrNotFound
		}

		status, err := s.quotaSvc.StatusFor(ctx, tx, community)
		if err != nil {
			return err
		}
		if !status.CanAdd {
			max := 0
			if status.Max != nil {
				max = *status.Max
			}
			return &quotadomain.MemberLimitReachedError{
				Current:  status.Current,
				Max:      max,
				PlanName: status.PlanName,
			}
		}

		now := s.clock.Now()
		m := &domain.Membership{
			ID:          s.genID.Generate(),
			CommunityID: communityID,
			UserID:      userID,
			DisplayName: displayName,
			Email:       email,
			Role:        role,
			Status:      domain.StatusActive,
			JoinedAt:    now,
		}
		if err := s.repo.Insert(ctx, tx, m); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrAlreadyMember
			}
			return err
		}

		if err := s.communityRepo.UpdateMemberCount(ctx, tx, communityID, status.Current+1, now); err != nil {
			return err
		}

		created = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toResponse(created)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, id string) ([]domain.Response, error) {
	communityID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, communitydomain.ErrInvalidID
	}

	items, err := s.repo.FindAll(ctx, s.db, communityID)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Remove(ctx context.Context, communityID, membershipID string) error {
	cid, err := snowflake.ParseString(strings.TrimSpace(communityID))
	if err != nil {
		return communitydomain.ErrInvalidID
	}
	mid, err := snowflake.ParseString(strings.TrimSpace(membershipID))
	if err != nil {
		return domain.ErrInvalidID
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		community, err := s.communityRepo.FindByIDForUpdate(ctx, tx, cid)
		if err != nil {
			return err
		}
		if community == nil {
			return communitydomain.ErrNotFound
		}

		deleted, err := s.repo.Delete(ctx, tx, cid, mid)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.ErrNotFound
		}

		count := community.MemberCount - 1
		if count < 0 {
			count = 0
		}
		return s.communityRepo.UpdateMemberCount(ctx, tx, cid, count, s.clock.Now())
	})
}

func (s *Service) Recount(ctx context.Context, id string) (*domain.RecountResponse, error) {
	communityID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, communitydomain.ErrInvalidID
	}

	var resp *domain.RecountResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		community, err := s.communityRepo.FindByIDForUpdate(ctx, tx, communityID)
		if err != nil {
			return err
		}
		if community == nil {
			return communitydomain.ErrNotFound
		}

		count, err := s.repo.CountByCommunity(ctx, tx, communityID)
		if err != nil {
			return err
		}

		if count != community.MemberCount {
			if err := s.communityRepo.UpdateMemberCount(ctx, tx, communityID, count, s.clock.Now()); err != nil {
				return err
			}
		}

		resp = &domain.RecountResponse{
			CommunityID: communityID.String(),
			Previous:    community.MemberCount,
			Current:     count,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if resp.Previous != resp.Current {
		s.log.Warn("member counter drift corrected",
			zap.String("community_id", resp.CommunityID),
			zap.Int("previous", resp.Previous),
			zap.Int("current", resp.Current),
		)
	}
	s.recordRecount(ctx, communityID, resp)

	return resp, nil
}

func (s *Service) recordRecount(ctx context.Context, communityID snowflake.ID, resp *domain.RecountResponse) {
	var actor *string
	if actorID, ok := actorctx.ActorIDFromContext(ctx); ok {
		value := actorID.String()
		actor = &value
	}
	s.auditSvc.Record(ctx, &communityID, actor, auditdomain.ActionMembersRecounted, "community", nil, map[string]any{
		"previous": resp.Previous,
		"current":  resp.Current,
	})
}

func toResponse(m *domain.Membership) domain.Response {
	return domain.Response{
		ID:          m.ID.String(),
		CommunityID: m.CommunityID.String(),
		UserID:      m.UserID.String(),
		DisplayName: m.DisplayName,
		Email:       m.Email,
		Role:        m.Role,
		Status:      m.Status,
		JoinedAt:    m.JoinedAt,
	}
}
