// Package domain contains persistence models for the membership service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"

	StatusActive = "ACTIVE"
)

// Membership is one person's seat in a community.
type Membership struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	CommunityID snowflake.ID `gorm:"column:community_id;not null;uniqueIndex:ux_memberships_community_user,priority:1" json:"community_id"`
	UserID      snowflake.ID `gorm:"column:user_id;not null;uniqueIndex:ux_memberships_community_user,priority:2" json:"user_id"`
	DisplayName string       `gorm:"column:display_name;type:text;not null" json:"display_name"`
	Email       string       `gorm:"type:text;not null" json:"email"`
	Role        string       `gorm:"type:text;not null" json:"role"`
	Status      string       `gorm:"type:text;not null" json:"status"`
	JoinedAt    time.Time    `gorm:"column:joined_at;not null;default:CURRENT_TIMESTAMP" json:"joined_at"`
}

// TableName sets the database table name.
func (Membership) TableName() string { return "memberships" }
