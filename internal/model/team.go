package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const MaxTeamMembers = 5

type Team struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatorID   uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"creator_id"`
	Name        string         `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Logo        *string        `gorm:"type:text" json:"logo,omitempty"`
	Description *string        `gorm:"type:text" json:"description,omitempty"`
	Points      int            `gorm:"not null;default:0" json:"points"`
	TechStacks  pq.StringArray `gorm:"type:text[]" json:"tech_stacks"`
	Languages   pq.StringArray `gorm:"type:text[]" json:"languages"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	Members     []TeamMember   `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type TeamMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TeamID    uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_team_user,priority:1" json:"team_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_team_user,priority:2" json:"user_id"`
	Role      string    `gorm:"size:50;default:'Member'" json:"role"`
	Status    string    `gorm:"size:20;default:'Active'" json:"status"`
	Points    int       `gorm:"not null;default:0" json:"points"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
