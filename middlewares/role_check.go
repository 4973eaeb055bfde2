package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/utils"
)

// RequireCapability must run after Authenticate.
func RequireCapability(capability models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Error(utils.Unauthorized("You're not logged in, please login!"))
			c.Abort()
			return
		}
		if !user.Role.Can(capability) {
			c.Error(utils.Forbidden("You don't have permission to perform this action"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSelfOr lets a user through when the path parameter names them,
// and anyone else only with the given capability.
func RequireSelfOr(param string, capability models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Error(utils.Unauthorized("You're not logged in, please login!"))
			c.Abort()
			return
		}
		if c.Param(param) != user.ID && !user.Role.Can(capability) {
			c.Error(utils.Forbidden("You don't have permission to perform this action"))
			c.Abort()
			return
		}
		c.Next()
	}
}
