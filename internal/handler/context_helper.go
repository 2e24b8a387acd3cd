package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/nipuna-lk/edutrack-api/internal/middleware"
	"github.com/nipuna-lk/edutrack-api/internal/models"
)

// currentClaims extracts the authenticated teacher claims from the request
// context. The JWT middleware guarantees presence on protected routes.
func currentClaims(c *gin.Context) (*models.JWTClaims, bool) {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok
}
