package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kcislk/gradebook-api/internal/middleware"
	"github.com/kcislk/gradebook-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func scopeFromContext(c *gin.Context) (models.UserScope, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		return models.UserScope{}, false
	}
	return claims.Scope(), true
}
