// Package seed bootstraps the plan catalog so a fresh deployment can create
// communities out of the box.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/koomyhq/koomy/internal/plan/domain"
	"github.com/koomyhq/koomy/internal/ratelimit"
	"gorm.io/gorm"
)

type planSeed struct {
	Code         string
	Name         string
	MaxMembers   *int
	PriceMonthly *int64
	PriceYearly  *int64
	IsPublic     bool
	SortOrder    int
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

// catalog is the out-of-the-box plan ladder. ENTERPRISE is quote-only: no
// listed price, no member cap.
var catalog = []planSeed{
	{Code: "STARTER_FREE", Name: "Starter", MaxMembers: intPtr(50), PriceMonthly: int64Ptr(0), PriceYearly: int64Ptr(0), IsPublic: true, SortOrder: 0},
	{Code: "CLUB", Name: "Club", MaxMembers: intPtr(250), PriceMonthly: int64Ptr(2900), PriceYearly: int64Ptr(29000), IsPublic: true, SortOrder: 1},
	{Code: "FEDERATION", Name: "Federation", MaxMembers: intPtr(2500), PriceMonthly: int64Ptr(9900), PriceYearly: int64Ptr(99000), IsPublic: true, SortOrder: 2},
	{Code: "ENTERPRISE", Name: "Enterprise", IsPublic: false, SortOrder: 3},
}

// EnsurePlanCatalog inserts any missing catalog plans. Existing rows are
// left untouched so operators can tune caps and prices in place. The
// limiter, when configured, serializes seeding across replicas; it may be
// nil.
func EnsurePlanCatalog(db *gorm.DB, limiter *ratelimit.JoinLimiter) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()

	if limiter.Enabled() {
		token, ok, err := limiter.TryLockSeed(ctx)
		if err != nil {
			return err
		}
		if !ok {
			// Another replica is seeding.
			return nil
		}
		defer func() { _ = limiter.ReleaseSeed(ctx, token) }()
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range catalog {
			var plan plandomain.Plan
			err := tx.WithContext(ctx).
				Where("code = ?", entry.Code).
				First(&plan).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			plan = plandomain.Plan{
				ID:           node.Generate(),
				Code:         entry.Code,
				Name:         entry.Name,
				MaxMembers:   entry.MaxMembers,
				PriceMonthly: entry.PriceMonthly,
				PriceYearly:  entry.PriceYearly,
				IsPublic:     entry.IsPublic,
				SortOrder:    entry.SortOrder,
			}
			if err := tx.WithContext(ctx).Create(&plan).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
