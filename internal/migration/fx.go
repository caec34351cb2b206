package migration

import (
	auditdomain "github.com/koomyhq/koomy/internal/audit/domain"
	communitydomain "github.com/koomyhq/koomy/internal/community/domain"
	"github.com/koomyhq/koomy/internal/config"
	membershipdomain "github.com/koomyhq/koomy/internal/membership/domain"
	plandomain "github.com/koomyhq/koomy/internal/plan/domain"
	"github.com/koomyhq/koomy/internal/ratelimit"
	"github.com/koomyhq/koomy/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, limiter *ratelimit.JoinLimiter) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := Up(sqlDB); err != nil {
				return err
			}
		} else {
			// Non-postgres deployments (sqlite local dev, mysql) go through
			// gorm's migrator instead of the SQL files.
			if err := conn.AutoMigrate(
				&plandomain.Plan{},
				&communitydomain.Community{},
				&membershipdomain.Membership{},
				&auditdomain.AuditLog{},
			); err != nil {
				return err
			}
		}

		return seed.EnsurePlanCatalog(conn, limiter)
	}),
)
