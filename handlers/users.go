package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/angelodel80/cadmus-api/internal/users"
	"github.com/angelodel80/cadmus-api/pkg/logger"
	"github.com/angelodel80/cadmus-api/pkg/middleware"
)

// RegisterUserInfo mounts GET /user-info on an authenticated group. The
// caller's user record is refreshed from the token claims; without a user
// store the claims themselves are returned.
func RegisterUserInfo(rg gin.IRouter, svc *users.Service) {
	rg.GET("/user-info", func(c *gin.Context) {
		claims, ok := middleware.Claims(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}
		if svc != nil {
			u, err := svc.UpsertFromClaims(c.Request.Context(), claims)
			if err != nil {
				logger.Warnf("user-info: upsert %s: %v", middleware.CallerID(c), err)
			} else if u != nil {
				c.JSON(http.StatusOK, gin.H{"user": u})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"claims": claims})
	})
}
