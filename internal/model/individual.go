package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Individual is the solo-profile score source of truth. Points here are
// authoritative; the leaderboard only mirrors them.
type Individual struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User        *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Description *string        `gorm:"type:text" json:"description,omitempty"`
	Points      int            `gorm:"not null;default:0" json:"points"`
	TechStacks  pq.StringArray `gorm:"type:text[]" json:"tech_stacks"`
	Languages   pq.StringArray `gorm:"type:text[]" json:"languages"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i *Individual) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
