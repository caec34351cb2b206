// Package domain contains persistence models for the community service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Community is a tenant: an association or club managed on the platform.
// MemberCount is a denormalized running total maintained transactionally by
// the membership service; the Recount operation reconciles it against the
// membership rows.
//
// The four full_access_* columns form one grant: a null granted_at means no
// grant, a granted_at with null expires_at means a permanent grant, and an
// expires_at in the past means the grant is expired but still recorded
// until explicitly revoked.
type Community struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	Slug        string       `gorm:"type:text;not null;uniqueIndex:ux_communities_slug" json:"slug"`
	PlanID      snowflake.ID `gorm:"column:plan_id;not null;index" json:"plan_id"`
	MemberCount int          `gorm:"column:member_count;not null;default:0" json:"member_count"`

	FullAccessGrantedAt *time.Time    `gorm:"column:full_access_granted_at" json:"full_access_granted_at"`
	FullAccessExpiresAt *time.Time    `gorm:"column:full_access_expires_at" json:"full_access_expires_at"`
	FullAccessReason    *string       `gorm:"column:full_access_reason;type:text" json:"full_access_reason"`
	FullAccessGrantedBy *snowflake.ID `gorm:"column:full_access_granted_by" json:"full_access_granted_by"`

	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Community) TableName() string { return "communities" }
