package model

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"` // recipient
	EntityID   uuid.UUID `gorm:"type:uuid" json:"entity_id"`              // subject the event refers to
	EntityType string    `gorm:"type:varchar(50);not null" json:"entity_type"` // 'leaderboard', 'team', 'project'
	Type       string    `gorm:"type:varchar(50);not null" json:"type"`        // 'rank_change', 'project_approved', ...
	Message    string    `gorm:"type:text" json:"message"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
