package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/koomyhq/koomy/internal/community/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, community *domain.Community) error {
	return db.WithContext(ctx).Create(community).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Community, error) {
	var c domain.Community
	err := db.WithContext(ctx).Where("id = ?", id).Take(&c).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Community, error) {
	tx := db.WithContext(ctx)
	// sqlite has no SELECT ... FOR UPDATE; its transactions lock the whole
	// database anyway.
	if db.Dialector.Name() != "sqlite" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var c domain.Community
	err := tx.Where("id = ?", id).Take(&c).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.Community, error) {
	var items []domain.Community
	err := db.WithContext(ctx).Order("created_at ASC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdatePlan(ctx context.Context, db *gorm.DB, id, planID snowflake.ID, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE communities SET plan_id = ?, updated_at = ? WHERE id = ?`,
		planID,
		now,
		id,
	).Error
}

func (r *repo) UpdateMemberCount(ctx context.Context, db *gorm.DB, id snowflake.ID, count int, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE communities SET member_count = ?, updated_at = ? WHERE id = ?`,
		count,
		now,
		id,
	).Error
}

func (r *repo) UpdateFullAccess(ctx context.Context, db *gorm.DB, id snowflake.ID, grantedAt, expiresAt *time.Time, reason *string, grantedBy *snowflake.ID, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE communities
		 SET full_access_granted_at = ?, full_access_expires_at = ?, full_access_reason = ?, full_access_granted_by = ?, updated_at = ?
		 WHERE id = ?`,
		grantedAt,
		expiresAt,
		reason,
		grantedBy,
		now,
		id,
	).Error
}
