package dto

import (
	"github.com/google/uuid"
)

type CreateTaxonomyRequest struct {
	Content string  `json:"content" binding:"required,min=1,max=100"`
	Logo    *string `json:"logo" binding:"omitempty,url"`
}

type TaxonomyResponse struct {
	ID      uuid.UUID `json:"id"`
	Content string    `json:"content"`
	Logo    *string   `json:"logo,omitempty"`
}

type TaxonomyFilter struct {
	Search string `form:"search"`
}
