package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/policy"
)

// RequireCapability rejects callers whose role may not perform action. It
// must run after RequireAuth.
func RequireCapability(action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if err := policy.Authorize(user.Role, action); err != nil {
			apierrors.Respond(c, err)
			c.Abort()
			return
		}

		c.Next()
	}
}
