package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository reads plan rows. The catalog is seeded out of band and treated
// as immutable reference data; no write path is exposed here.
type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Plan, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Plan, error)
	FindAllPublic(ctx context.Context, db *gorm.DB) ([]Plan, error)
}
