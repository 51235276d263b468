package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ledgerline/practice-portal/practice-portal-backend/internal/workflow"
)

const contextKeyActor = "currentActor"

// Middleware validates the bearer token and stores the actor on the gin
// context for handlers downstream.
func Middleware(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		claims, err := service.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed token subject"})
			return
		}
		c.Set(contextKeyActor, workflow.Actor{
			ID:   userID,
			Name: claims.Name,
			Role: string(claims.Role),
		})
		c.Next()
	}
}

// CurrentActor returns the authenticated actor set by Middleware.
func CurrentActor(c *gin.Context) (workflow.Actor, bool) {
	v, ok := c.Get(contextKeyActor)
	if !ok {
		return workflow.Actor{}, false
	}
	actor, ok := v.(workflow.Actor)
	return actor, ok
}
