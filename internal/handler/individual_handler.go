package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cyberhunter-club/cyber-hunter-backend/internal/dto"
	"github.com/cyberhunter-club/cyber-hunter-backend/internal/service"
	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/apperror"
	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/response"
	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/validator"
)

type IndividualHandler struct {
	service service.IndividualService
}

func NewIndividualHandler(service service.IndividualService) *IndividualHandler {
	return &IndividualHandler{service: service}
}

func (h *IndividualHandler) Create(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateIndividualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, fmt.Errorf("%w: %s", apperror.ErrInvalidInput, validator.FormatValidationError(err)))
		return
	}

	resp, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseCreated(c, resp, "Individual profile created successfully")
}

func (h *IndividualHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, fmt.Errorf("%w: invalid individual id", apperror.ErrInvalidInput))
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseOK(c, resp, "Individual fetched successfully")
}

func (h *IndividualHandler) Update(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, fmt.Errorf("%w: invalid individual id", apperror.ErrInvalidInput))
		return
	}

	var req dto.UpdateIndividualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, fmt.Errorf("%w: %s", apperror.ErrInvalidInput, validator.FormatValidationError(err)))
		return
	}

	resp, err := h.service.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseOK(c, resp, "Individual updated successfully")
}

func (h *IndividualHandler) UpdatePoints(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, fmt.Errorf("%w: invalid individual id", apperror.ErrInvalidInput))
		return
	}

	var req dto.UpdatePointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, fmt.Errorf("%w: %s", apperror.ErrInvalidInput, validator.FormatValidationError(err)))
		return
	}

	resp, err := h.service.UpdatePoints(c.Request.Context(), id, req.Points)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseOK(c, resp, "Points updated successfully")
}

func (h *IndividualHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, fmt.Errorf("%w: invalid individual id", apperror.ErrInvalidInput))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseOK(c, nil, "Individual deleted successfully")
}
