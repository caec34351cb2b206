package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, community *Community) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Community, error)
	// FindByIDForUpdate locks the community row for the remainder of the
	// surrounding transaction. Admission control depends on this lock: the
	// quota decision and the counter write must see the same row state.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Community, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]Community, error)
	UpdatePlan(ctx context.Context, db *gorm.DB, id, planID snowflake.ID, now time.Time) error
	UpdateMemberCount(ctx context.Context, db *gorm.DB, id snowflake.ID, count int, now time.Time) error
	UpdateFullAccess(ctx context.Context, db *gorm.DB, id snowflake.ID, grantedAt, expiresAt *time.Time, reason *string, grantedBy *snowflake.ID, now time.Time) error
}
