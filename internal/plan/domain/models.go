// Package domain contains persistence models for the plan catalog.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Plan is an immutable pricing tier. A nil MaxMembers means the plan puts
// no cap on community membership; nil prices mean the plan is quote-only.
type Plan struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Code         string       `gorm:"type:text;not null;uniqueIndex:ux_plans_code" json:"code"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	MaxMembers   *int         `gorm:"column:max_members" json:"max_members"`
	PriceMonthly *int64       `gorm:"column:price_monthly" json:"price_monthly"`
	PriceYearly  *int64       `gorm:"column:price_yearly" json:"price_yearly"`
	IsPublic     bool         `gorm:"column:is_public;not null;default:true" json:"is_public"`
	SortOrder    int          `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Plan) TableName() string { return "plans" }
