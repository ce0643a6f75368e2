package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateIndividualRequest struct {
	Description *string  `json:"description"`
	TagIDs      []string `json:"tag_ids" binding:"omitempty,dive,uuid"`
}

type UpdateIndividualRequest struct {
	Description  *string  `json:"description"`
	TechStackIDs []string `json:"tech_stack_ids" binding:"omitempty,dive,uuid"`
	LanguageIDs  []string `json:"language_ids" binding:"omitempty,dive,uuid"`
	TagIDs       []string `json:"tag_ids" binding:"omitempty,dive,uuid"`
}

type UpdatePointsRequest struct {
	Points int `json:"points" binding:"min=0"`
}

type IndividualResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Points      int       `json:"points"`
	TechStacks  []string  `json:"tech_stacks"`
	Languages   []string  `json:"languages"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
}
