package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/koomyhq/koomy/internal/plan/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Plan, error) {
	var p domain.Plan
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, max_members, price_monthly, price_yearly, is_public, sort_order, created_at
		 FROM plans WHERE id = ?`,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Plan, error) {
	var p domain.Plan
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, max_members, price_monthly, price_yearly, is_public, sort_order, created_at
		 FROM plans WHERE code = ?`,
		code,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindAllPublic(ctx context.Context, db *gorm.DB) ([]domain.Plan, error) {
	var items []domain.Plan
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, max_members, price_monthly, price_yearly, is_public, sort_order, created_at
		 FROM plans WHERE is_public = ? ORDER BY sort_order ASC`,
		true,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
