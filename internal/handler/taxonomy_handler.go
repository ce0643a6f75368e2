package handler

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cyberhunter-club/cyber-hunter-backend/internal/dto"
	"github.com/cyberhunter-club/cyber-hunter-backend/internal/service"
	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/apperror"
	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/response"
	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/validator"
)

type TaxonomyHandler struct {
	service service.TaxonomyService
}

func NewTaxonomyHandler(service service.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{service: service}
}

func (h *TaxonomyHandler) create(c *gin.Context, label string, fn func(context.Context, dto.CreateTaxonomyRequest) (*dto.TaxonomyResponse, error)) {
	var req dto.CreateTaxonomyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, fmt.Errorf("%w: %s", apperror.ErrInvalidInput, validator.FormatValidationError(err)))
		return
	}

	resp, err := fn(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseCreated(c, resp, label+" created successfully")
}

func (h *TaxonomyHandler) list(c *gin.Context, label string, fn func(context.Context, string) ([]dto.TaxonomyResponse, error)) {
	resp, err := fn(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseOK(c, resp, label+" fetched successfully")
}

func (h *TaxonomyHandler) delete(c *gin.Context, label string, fn func(context.Context, uuid.UUID) error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, fmt.Errorf("%w: invalid id", apperror.ErrInvalidInput))
		return
	}

	if err := fn(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseOK(c, nil, label+" deleted successfully")
}

func (h *TaxonomyHandler) CreateTechStack(c *gin.Context) {
	h.create(c, "Tech stack", h.service.CreateTechStack)
}

func (h *TaxonomyHandler) ListTechStacks(c *gin.Context) {
	h.list(c, "Tech stacks", h.service.ListTechStacks)
}

func (h *TaxonomyHandler) DeleteTechStack(c *gin.Context) {
	h.delete(c, "Tech stack", h.service.DeleteTechStack)
}

func (h *TaxonomyHandler) CreateLanguage(c *gin.Context) {
	h.create(c, "Language", h.service.CreateLanguage)
}

func (h *TaxonomyHandler) ListLanguages(c *gin.Context) {
	h.list(c, "Languages", h.service.ListLanguages)
}

func (h *TaxonomyHandler) DeleteLanguage(c *gin.Context) {
	h.delete(c, "Language", h.service.DeleteLanguage)
}

func (h *TaxonomyHandler) CreateTag(c *gin.Context) {
	h.create(c, "Tag", h.service.CreateTag)
}

func (h *TaxonomyHandler) ListTags(c *gin.Context) {
	h.list(c, "Tags", h.service.ListTags)
}

func (h *TaxonomyHandler) DeleteTag(c *gin.Context) {
	h.delete(c, "Tag", h.service.DeleteTag)
}

func (h *TaxonomyHandler) CreateInterest(c *gin.Context) {
	h.create(c, "Interest", h.service.CreateInterest)
}

func (h *TaxonomyHandler) ListInterests(c *gin.Context) {
	h.list(c, "Interests", h.service.ListInterests)
}

func (h *TaxonomyHandler) DeleteInterest(c *gin.Context) {
	h.delete(c, "Interest", h.service.DeleteInterest)
}
