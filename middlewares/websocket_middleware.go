package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/duty-roster/sessions"
	"github.com/yeremiapane/duty-roster/utils"
)

// WebSocketAuth accepts the session cookie, or a socket token in ?token=
// for clients that cannot send cookies on the handshake.
func WebSocketAuth(store sessions.Store, cfg CookieConfig, tokens SocketTokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.Query("token"); raw != "" {
			sess, err := tokens.ResolveSocketToken(c.Request.Context(), raw)
			if err != nil {
				c.Error(err)
				c.Abort()
				return
			}
			setSession(c, sess, "")
			c.Next()
			return
		}

		token, err := c.Cookie(cfg.Name)
		if err != nil || token == "" {
			c.Error(utils.Unauthorized("Authentication required for the live channel"))
			c.Abort()
			return
		}
		sess, err := store.Resolve(c.Request.Context(), token)
		if err != nil {
			c.Error(utils.Unauthorized("Session expired, please login again"))
			c.Abort()
			return
		}
		setSession(c, sess, token)
		c.Next()
	}
}
