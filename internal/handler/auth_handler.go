package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/cyberhunter-club/cyber-hunter-backend/internal/dto"
	"github.com/cyberhunter-club/cyber-hunter-backend/internal/service"
	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/apperror"
	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/response"
	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/validator"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, fmt.Errorf("%w: %s", apperror.ErrInvalidInput, validator.FormatValidationError(err)))
		return
	}

	resp, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseCreated(c, resp, "Account created successfully")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, fmt.Errorf("%w: %s", apperror.ErrInvalidInput, validator.FormatValidationError(err)))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseOK(c, resp, "Logged in successfully")
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.Me(c.Request.Context(), userID.String())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseOK(c, resp, "Profile fetched successfully")
}
