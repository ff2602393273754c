package middlewares

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studyflow/accounthub/internal/domain/user"
)

// Authorizer resolves the caller against the store and checks the role.
// service.AccessGate is the real implementation.
type Authorizer interface {
	Authorize(ctx context.Context, callerID int64, requiredRole string) (user.User, error)
}

// RequireAdmin runs after RequireAuth. The caller's role comes from the
// store, not the token, so revoking admin takes effect immediately.
func RequireAdmin(gate Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, ok := UserIDFromContext(c)

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		_, err := gate.Authorize(ctx, callerID, user.RoleAdmin)

		if err != nil {
			switch {
			case errors.Is(err, user.ErrUnauthenticated):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": gin.H{
						"code":    "unauthorized",
						"message": "Unknown caller",
					},
				})
			case errors.Is(err, user.ErrForbidden):
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error": gin.H{
						"code":    "forbidden",
						"message": "Admin role required",
					},
				})
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": gin.H{
						"code":    "internal_error",
						"message": "Could not verify permissions",
					},
				})
			}
			return
		}

		c.Next()
	}
}
