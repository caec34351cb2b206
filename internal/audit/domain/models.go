// Package domain contains the audit trail models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// AuditLog is one append-only record of an administrative action.
type AuditLog struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	CommunityID *snowflake.ID     `gorm:"column:community_id;index" json:"community_id,omitempty"`
	ActorID     *string           `gorm:"column:actor_id;type:text" json:"actor_id,omitempty"`
	Action      string            `gorm:"type:text;not null;index" json:"action"`
	TargetType  string            `gorm:"column:target_type;type:text;not null" json:"target_type"`
	TargetID    *string           `gorm:"column:target_id;type:text" json:"target_id,omitempty"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

// TableName sets the database table name.
func (AuditLog) TableName() string { return "audit_logs" }
