package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateProjectRequest struct {
	OwnerKind   string   `json:"owner_kind" binding:"required,oneof=individual team"`
	OwnerTeamID *string  `json:"owner_team_id" binding:"omitempty,uuid"`
	Name        string   `json:"name" binding:"required,min=2,max=150"`
	Description *string  `json:"description"`
	Link        *string  `json:"link" binding:"omitempty,url"`
	TechStacks  []string `json:"tech_stacks" binding:"omitempty,dive,uuid"`
}

type UpdateProjectRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=2,max=150"`
	Description *string  `json:"description"`
	Link        *string  `json:"link" binding:"omitempty,url"`
	TechStacks  []string `json:"tech_stacks" binding:"omitempty,dive,uuid"`
}

type UpdateProjectStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
	Points int    `json:"points" binding:"min=0"`
}

type ProjectResponse struct {
	ID            uuid.UUID  `json:"id"`
	OwnerKind     string     `json:"owner_kind"`
	OwnerUserID   *uuid.UUID `json:"owner_user_id,omitempty"`
	OwnerTeamID   *uuid.UUID `json:"owner_team_id,omitempty"`
	Name          string     `json:"name"`
	Description   *string    `json:"description,omitempty"`
	Link          *string    `json:"link,omitempty"`
	Status        string     `json:"status"`
	PointsAwarded int        `json:"points_awarded"`
	TechStacks    []string   `json:"tech_stacks"`
	CreatedAt     time.Time  `json:"created_at"`
}
