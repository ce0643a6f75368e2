package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	ProjectStatusPending  = "pending"
	ProjectStatusApproved = "approved"
	ProjectStatusRejected = "rejected"
)

// Project belongs either to an individual (OwnerUserID) or a team
// (OwnerTeamID), mirroring the leaderboard's kind split. Approval awards
// PointsAwarded to the owner through the score source adapter.
type Project struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerKind     string         `gorm:"size:16;not null" json:"owner_kind"`
	OwnerUserID   *uuid.UUID     `gorm:"type:uuid;index" json:"owner_user_id,omitempty"`
	OwnerTeamID   *uuid.UUID     `gorm:"type:uuid;index" json:"owner_team_id,omitempty"`
	Name          string         `gorm:"size:150;not null" json:"name"`
	Description   *string        `gorm:"type:text" json:"description,omitempty"`
	Link          *string        `gorm:"type:text" json:"link,omitempty"`
	Status        string         `gorm:"size:20;not null;default:'pending'" json:"status"`
	PointsAwarded int            `gorm:"not null;default:0" json:"points_awarded"`
	TechStacks    pq.StringArray `gorm:"type:text[]" json:"tech_stacks"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
