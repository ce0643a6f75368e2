package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	KindIndividual = "individual"
	KindTeam       = "team"
)

// ValidKind reports whether k names a ranked subject kind.
func ValidKind(k string) bool {
	return k == KindIndividual || k == KindTeam
}

// LeaderboardEntry is one row of the derived ranking table: at most one per
// (kind, subject). Points mirror the authoritative value on the Individual or
// Team; Rank is a dense 1-based ordinal assigned by the recompute pass and is
// 0 (unranked) until the first pass touches the entry. The taxonomy arrays are
// denormalized copies used only for filtered reads.
type LeaderboardEntry struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Kind        string         `gorm:"size:16;not null;index:idx_lb_kind_points,priority:1;uniqueIndex:idx_lb_kind_user,priority:1;uniqueIndex:idx_lb_kind_team,priority:1" json:"kind"`
	UserID      *uuid.UUID     `gorm:"type:uuid;uniqueIndex:idx_lb_kind_user,priority:2" json:"user_id,omitempty"`
	TeamID      *uuid.UUID     `gorm:"type:uuid;uniqueIndex:idx_lb_kind_team,priority:2" json:"team_id,omitempty"`
	Points      int            `gorm:"not null;default:0;index:idx_lb_kind_points,priority:2,sort:desc" json:"points"`
	Rank        int            `gorm:"not null;default:0" json:"rank"`
	TechStacks  pq.StringArray `gorm:"type:text[]" json:"tech_stacks"`
	Languages   pq.StringArray `gorm:"type:text[]" json:"languages"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	LastUpdated time.Time      `gorm:"not null" json:"last_updated"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e *LeaderboardEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// SubjectID returns whichever identity field the kind discriminates to.
func (e *LeaderboardEntry) SubjectID() uuid.UUID {
	if e.Kind == KindTeam {
		if e.TeamID != nil {
			return *e.TeamID
		}
		return uuid.Nil
	}
	if e.UserID != nil {
		return *e.UserID
	}
	return uuid.Nil
}

// ScoreLog is an append-only record of every score push that reached the
// ranking store, kept for auditing score drift.
type ScoreLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Kind      string    `gorm:"size:16;not null;index:idx_sl_kind_subject,priority:1" json:"kind"`
	SubjectID uuid.UUID `gorm:"type:uuid;not null;index:idx_sl_kind_subject,priority:2" json:"subject_id"`
	Points    int       `gorm:"not null" json:"points"`
	Source    string    `gorm:"size:50" json:"source"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
