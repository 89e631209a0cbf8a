package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/traderiser/wallet-backend/internal/core/ports/services"
)

// RequireStaff creates a Gin middleware that restricts a route to staff
// users. Must run after AuthMiddleware.
func RequireStaff(userService portssvc.UserSvcFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		user, err := userService.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			GetLoggerFromCtx(c.Request.Context()).Error("Failed to load user for staff check", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if !user.IsStaff {
			GetLoggerFromCtx(c.Request.Context()).Warn("Non-staff user attempted staff route")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Staff access required"})
			return
		}

		c.Next()
	}
}
