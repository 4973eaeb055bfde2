package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/sessions"
	"github.com/yeremiapane/duty-roster/utils"
)

const (
	ctxSession = "session"
	ctxUser    = "user"
	ctxToken   = "token"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

func SetSessionCookie(c *gin.Context, cfg CookieConfig, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cfg.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(c *gin.Context, cfg CookieConfig) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Authenticate resolves the session cookie and stores the session, the
// cached user and the raw token on the context. The cookie is re-issued so
// the browser's expiry follows the sliding server-side one.
func Authenticate(store sessions.Store, cfg CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cfg.Name)
		if err != nil || token == "" {
			c.Error(utils.Unauthorized("You're not logged in, please login!"))
			c.Abort()
			return
		}

		sess, err := store.Resolve(c.Request.Context(), token)
		if err != nil {
			c.Error(utils.WrapApiError(http.StatusUnauthorized, "Session expired, please login again", err))
			c.Abort()
			return
		}

		SetSessionCookie(c, cfg, token)
		setSession(c, sess, token)
		c.Next()
	}
}

// OptionalSession is Authenticate without the rejection, for logout.
func OptionalSession(store sessions.Store, cfg CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(cfg.Name); err == nil && token != "" {
			if sess, err := store.Resolve(c.Request.Context(), token); err == nil {
				setSession(c, sess, token)
			}
		}
		c.Next()
	}
}

func setSession(c *gin.Context, sess *models.Session, token string) {
	c.Set(ctxSession, sess)
	c.Set(ctxUser, sess.Snapshot())
	c.Set(ctxToken, token)
}

// CurrentUser returns the snapshot cached in the session.
func CurrentUser(c *gin.Context) (models.UserSnapshot, bool) {
	v, ok := c.Get(ctxUser)
	if !ok {
		return models.UserSnapshot{}, false
	}
	u, ok := v.(models.UserSnapshot)
	return u, ok
}

func CurrentSession(c *gin.Context) (*models.Session, bool) {
	v, ok := c.Get(ctxSession)
	if !ok {
		return nil, false
	}
	s, ok := v.(*models.Session)
	return s, ok
}

func SessionToken(c *gin.Context) string {
	return c.GetString(ctxToken)
}

type SocketTokenResolver interface {
	ResolveSocketToken(ctx context.Context, raw string) (*models.Session, error)
}
