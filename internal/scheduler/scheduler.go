package scheduler

import (
	"context"
	"errors"
	"time"

	communitydomain "github.com/koomyhq/koomy/internal/community/domain"
	membershipdomain "github.com/koomyhq/koomy/internal/membership/domain"
	"github.com/koomyhq/koomy/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler: missing dependency")

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	MembershipSvc membershipdomain.Service
	CommunityRepo communitydomain.Repository
	Limiter       *ratelimit.JoinLimiter `optional:"true"`
	Config        Config                 `optional:"true"`
}

// Scheduler periodically rebuilds denormalized member counters from the
// membership rows. Drift should not happen, but partial failures and manual
// operator fixes have produced it before, so the sweep reconciles instead of
// trusting the counter forever.
type Scheduler struct {
	db            *gorm.DB
	log           *zap.Logger
	cfg           Config
	membershipSvc membershipdomain.Service
	communityRepo communitydomain.Repository
	limiter       *ratelimit.JoinLimiter
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.MembershipSvc == nil || p.CommunityRepo == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:            p.DB,
		log:           p.Log.Named("scheduler"),
		cfg:           p.Config.withDefaults(),
		membershipSvc: p.MembershipSvc,
		communityRepo: p.CommunityRepo,
		limiter:       p.Limiter,
	}, nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.log.Warn("recount sweep failed", zap.Error(err))
			}
		}
	}
}

// RunOnce recounts every community and returns how many counters it had to
// correct.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	if s.limiter.Enabled() {
		token, acquired, err := s.limiter.TryLockSweep(ctx)
		if err != nil {
			// The sweep is idempotent; run without the lock rather than
			// skipping a round because redis is down.
			s.log.Warn("sweep lock unavailable", zap.Error(err))
		} else if !acquired {
			return 0, nil
		} else {
			defer func() {
				if err := s.limiter.ReleaseSweep(ctx, token); err != nil {
					s.log.Warn("failed to release sweep lock", zap.Error(err))
				}
			}()
		}
	}

	communities, err := s.communityRepo.FindAll(ctx, s.db)
	if err != nil {
		return 0, err
	}

	corrected := 0
	for _, community := range communities {
		resp, err := s.membershipSvc.Recount(ctx, community.ID.String())
		if err != nil {
			s.log.Warn("recount failed",
				zap.String("community_id", community.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if resp.Previous != resp.Current {
			corrected++
			s.log.Info("member counter reconciled",
				zap.String("community_id", community.ID.String()),
				zap.Int("previous", resp.Previous),
				zap.Int("current", resp.Current),
			)
		}
	}

	if corrected > 0 {
		s.log.Info("recount sweep finished",
			zap.Int("communities", len(communities)),
			zap.Int("corrected", corrected),
		)
	}
	return corrected, nil
}
