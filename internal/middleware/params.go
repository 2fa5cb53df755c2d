package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
)

// ParseIDParam parses the named path parameter as a positive id and stores it
// in the context under the same name. Task, team, user and notification
// routes all address their resource this way.
func ParseIDParam(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param(name), 10, 64)
		if err != nil || id == 0 {
			apierrors.BadRequest(c, "Invalid "+name)
			c.Abort()
			return
		}

		c.Set(name, id)
		c.Next()
	}
}

// GetIDParam returns an id stored by ParseIDParam
func GetIDParam(c *gin.Context, name string) uint64 {
	return c.GetUint64(name)
}
