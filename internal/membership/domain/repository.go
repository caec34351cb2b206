package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, membership *Membership) error
	FindByID(ctx context.Context, db *gorm.DB, communityID, id snowflake.ID) (*Membership, error)
	FindAll(ctx context.Context, db *gorm.DB, communityID snowflake.ID) ([]Membership, error)
	Delete(ctx context.Context, db *gorm.DB, communityID, id snowflake.ID) (bool, error)
	CountByCommunity(ctx context.Context, db *gorm.DB, communityID snowflake.ID) (int, error)
}
