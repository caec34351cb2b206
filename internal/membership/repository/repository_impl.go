package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/koomyhq/koomy/internal/membership/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, membership *domain.Membership) error {
	return db.WithContext(ctx).Create(membership).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, communityID, id snowflake.ID) (*domain.Membership, error) {
	var m domain.Membership
	err := db.WithContext(ctx).
		Where("community_id = ? AND id = ?", communityID, id).
		Take(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB, communityID snowflake.ID) ([]domain.Membership, error) {
	var items []domain.Membership
	err := db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("joined_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, communityID, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).
		Where("community_id = ? AND id = ?", communityID, id).
		Delete(&domain.Membership{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) CountByCommunity(ctx context.Context, db *gorm.DB, communityID snowflake.ID) (int, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Membership{}).
		Where("community_id = ?", communityID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
