package response

import (
	"log"
	"net/http"

	"github.com/cyberhunter-club/cyber-hunter-backend/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	c.JSON(code, gin.H{"success": false, "error": err.Error()})
}

// ResponseOK standardized success response
func ResponseOK(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "message": message})
}

// ResponseCreated standardized creation response
func ResponseCreated(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data, "message": message})
}
