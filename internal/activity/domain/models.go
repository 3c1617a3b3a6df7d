package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ActivityLog is a free-text entry in the platform activity log.
type ActivityLog struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Username  *string      `gorm:"type:text" json:"username,omitempty"`
	Message   string       `gorm:"type:text;not null" json:"message"`
	Failure   bool         `gorm:"not null;default:false" json:"failure"`
	CreatedAt time.Time    `gorm:"not null;index" json:"created_at"`
}

func (ActivityLog) TableName() string { return "activity_logs" }
