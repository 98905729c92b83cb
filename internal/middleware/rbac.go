package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/avidev9/school-portal-api/internal/models"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
	"github.com/avidev9/school-portal-api/pkg/response"
)

// RequireRoles gates a route group to the listed roles. A valid token with
// the wrong role is rejected as unauthorized rather than forbidden so the
// client treats it like a missing session and sends the user back to login.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "account role not permitted here"))
			c.Abort()
			return
		}
		c.Next()
	}
}
