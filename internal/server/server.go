package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/koomyhq/koomy/internal/audit"
	auditdomain "github.com/koomyhq/koomy/internal/audit/domain"
	"github.com/koomyhq/koomy/internal/authorization"
	"github.com/koomyhq/koomy/internal/community"
	communitydomain "github.com/koomyhq/koomy/internal/community/domain"
	"github.com/koomyhq/koomy/internal/config"
	"github.com/koomyhq/koomy/internal/fullaccess"
	fullaccessdomain "github.com/koomyhq/koomy/internal/fullaccess/domain"
	"github.com/koomyhq/koomy/internal/membership"
	membershipdomain "github.com/koomyhq/koomy/internal/membership/domain"
	"github.com/koomyhq/koomy/internal/observability"
	obsmiddleware "github.com/koomyhq/koomy/internal/observability/logger"
	obsmetrics "github.com/koomyhq/koomy/internal/observability/metrics"
	obstracing "github.com/koomyhq/koomy/internal/observability/tracing"
	"github.com/koomyhq/koomy/internal/overview"
	overviewdomain "github.com/koomyhq/koomy/internal/overview/domain"
	"github.com/koomyhq/koomy/internal/plan"
	plandomain "github.com/koomyhq/koomy/internal/plan/domain"
	"github.com/koomyhq/koomy/internal/quota"
	quotadomain "github.com/koomyhq/koomy/internal/quota/domain"
	"github.com/koomyhq/koomy/internal/ratelimit"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	audit.Module,
	plan.Module,
	community.Module,
	fullaccess.Module,
	membership.Module,
	quota.Module,
	overview.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	genID         *snowflake.Node
	authzSvc      authorization.Service
	auditSvc      auditdomain.Service
	planSvc       plandomain.Service
	communitySvc  communitydomain.Service
	fullAccessSvc fullaccessdomain.Service
	membershipSvc membershipdomain.Service
	quotaSvc      quotadomain.Service
	overviewSvc   overviewdomain.Service
	joinLimiter   *ratelimit.JoinLimiter
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	GenID         *snowflake.Node
	AuthzSvc      authorization.Service
	AuditSvc      auditdomain.Service
	PlanSvc       plandomain.Service
	CommunitySvc  communitydomain.Service
	FullAccessSvc fullaccessdomain.Service
	MembershipSvc membershipdomain.Service
	QuotaSvc      quotadomain.Service
	OverviewSvc   overviewdomain.Service
	JoinLimiter   *ratelimit.JoinLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		genID:         p.GenID,
		authzSvc:      p.AuthzSvc,
		auditSvc:      p.AuditSvc,
		planSvc:       p.PlanSvc,
		communitySvc:  p.CommunitySvc,
		fullAccessSvc: p.FullAccessSvc,
		membershipSvc: p.MembershipSvc,
		quotaSvc:      p.QuotaSvc,
		overviewSvc:   p.OverviewSvc,
		joinLimiter:   p.JoinLimiter,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1", s.ActorRequired())

	// -------- Plans --------
	api.GET("/plans", s.ListPlans)
	api.GET("/plans/:id", s.GetPlanByID)

	// -------- Communities --------
	api.POST("/communities", s.authorizeAction(authorization.ObjectCommunity, authorization.ActionCommunityCreate), s.CreateCommunity)
	api.GET("/communities", s.ListCommunities)
	api.GET("/communities/:id", s.authorizeAction(authorization.ObjectCommunity, authorization.ActionCommunityView), s.GetCommunityByID)
	api.POST("/communities/:id/plan", s.authorizeAction(authorization.ObjectCommunity, authorization.ActionCommunityChangePlan), s.ChangeCommunityPlan)
	api.GET("/communities/:id/quota", s.authorizeAction(authorization.ObjectQuota, authorization.ActionQuotaView), s.GetCommunityQuota)

	// -------- Memberships --------
	api.GET("/communities/:id/members", s.authorizeAction(authorization.ObjectMembership, authorization.ActionMembershipView), s.ListMembers)
	api.POST("/communities/:id/members", s.authorizeAction(authorization.ObjectMembership, authorization.ActionMembershipCreate), s.CreateMember)
	api.DELETE("/communities/:id/members/:memberId", s.authorizeAction(authorization.ObjectMembership, authorization.ActionMembershipRemove), s.RemoveMember)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin/api/v1", s.ActorRequired())

	admin.POST("/communities/:id/full-access", s.authorizeAction(authorization.ObjectFullAccess, authorization.ActionFullAccessGrant), s.GrantFullAccess)
	admin.DELETE("/communities/:id/full-access", s.authorizeAction(authorization.ObjectFullAccess, authorization.ActionFullAccessRevoke), s.RevokeFullAccess)
	admin.POST("/communities/:id/members/recount", s.authorizeAction(authorization.ObjectMembership, authorization.ActionMembershipRecount), s.RecountMembers)

	admin.GET("/overview", s.authorizeAction(authorization.ObjectOverview, authorization.ActionOverviewView), s.GetOverview)
	admin.GET("/audit-logs", s.authorizeAction(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
}
