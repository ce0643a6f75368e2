package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateTeamRequest struct {
	Name        string   `json:"name" binding:"required,min=2,max=100"`
	Logo        *string  `json:"logo" binding:"omitempty,url"`
	Description *string  `json:"description"`
	TechStacks  []string `json:"tech_stacks" binding:"omitempty,dive,uuid"`
}

type UpdateTeamRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=2,max=100"`
	Logo        *string  `json:"logo" binding:"omitempty,url"`
	Description *string  `json:"description"`
	TechStacks  []string `json:"tech_stacks" binding:"omitempty,dive,uuid"`
	Languages   []string `json:"languages" binding:"omitempty,dive,uuid"`
	Tags        []string `json:"tags" binding:"omitempty,dive,uuid"`
}

type AddTeamMemberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Role   string `json:"role" binding:"omitempty,oneof=Leader Member"`
}

type TeamMemberResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Role   string    `json:"role"`
	Status string    `json:"status"`
	Points int       `json:"points"`
}

type TeamResponse struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Logo        *string              `json:"logo,omitempty"`
	Description *string              `json:"description,omitempty"`
	Points      int                  `json:"points"`
	TechStacks  []string             `json:"tech_stacks"`
	Members     []TeamMemberResponse `json:"members"`
	CreatedAt   time.Time            `json:"created_at"`
}
