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

type LeaderboardHandler struct {
	service service.LeaderboardService
}

func NewLeaderboardHandler(service service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

// GetLeaderboard serves GET /leaderboard with type/search/filter/pagination
// query parameters.
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	var query dto.LeaderboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, fmt.Errorf("%w: %s", apperror.ErrInvalidInput, validator.FormatValidationError(err)))
		return
	}

	page, err := h.service.GetLeaderboard(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseOK(c, page, "Leaderboard fetched successfully")
}

func (h *LeaderboardHandler) GetFilters(c *gin.Context) {
	filters, err := h.service.GetFilters(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseOK(c, filters, "Leaderboard filters fetched successfully")
}

// UpdateRankings triggers a full dense-rank recompute for both kinds.
func (h *LeaderboardHandler) UpdateRankings(c *gin.Context) {
	result, err := h.service.UpdateRankings(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseOK(c, result, "Leaderboard rankings updated successfully")
}

// Refresh runs the reconciliation sweep: registers missing subjects, removes
// orphans, then recomputes.
func (h *LeaderboardHandler) Refresh(c *gin.Context) {
	result, err := h.service.Refresh(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseOK(c, result, "Leaderboard refreshed successfully")
}

// Initialize rebuilds the ranking table from every live subject.
func (h *LeaderboardHandler) Initialize(c *gin.Context) {
	result, err := h.service.Initialize(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseOK(c, result, "Leaderboard initialized successfully")
}
