package repository

import (
	"context"

	"github.com/koomyhq/koomy/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.AuditLog) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.AuditLog, error) {
	stmt := db.WithContext(ctx).Model(&domain.AuditLog{})

	if filter.CommunityID != "" {
		stmt = stmt.Where("community_id = ?", filter.CommunityID)
	}
	if filter.Action != "" {
		stmt = stmt.Where("action = ?", filter.Action)
	}
	if filter.StartAt != nil {
		stmt = stmt.Where("created_at >= ?", *filter.StartAt)
	}
	if filter.EndAt != nil {
		stmt = stmt.Where("created_at < ?", *filter.EndAt)
	}
	if filter.AfterID != "" {
		stmt = stmt.Where("id < ?", filter.AfterID)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	var items []domain.AuditLog
	err := stmt.Order("id DESC").Limit(limit + 1).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
