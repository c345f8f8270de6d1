package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tasklr/pkg/response"
)

const (
	LoginPath = "/login"

	msgNotAuthenticated = "Not authenticated"
	msgAuthFailed       = "Authentication failed. Please sign in again."
)

// Auth requires a signed-in session. API requests are answered with 401,
// pages are redirected to the login page. Tokens close to expiry are
// refreshed; a failed refresh ends the session. On success the task service
// for the user is available through CurrentService.
func (mw Middleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		sess := CurrentSession(c)
		if !sess.Authenticated() {
			mw.deny(c, msgNotAuthenticated, LoginPath)
			return
		}

		token, refreshed, err := mw.refresher.Fresh(ctx, sess.Token)
		if err != nil {
			mw.l.Warnf(ctx, "middleware.Auth.Fresh: %v", err)
			mw.EndSession(c)
			mw.deny(c, msgAuthFailed, LoginPath+"?error=token_refresh_failed")
			return
		}
		if refreshed {
			sess.Token = token
			mw.SaveSession(c, sess)
		}

		svc, err := mw.factory(ctx, token)
		if err != nil {
			mw.l.Errorf(ctx, "middleware.Auth.factory: %v", err)
			response.InternalError(c, "Failed to connect to Google Tasks")
			return
		}
		c.Set(serviceKey, svc)
		c.Next()
	}
}

func (mw Middleware) deny(c *gin.Context, msg, redirect string) {
	if IsAPI(c) {
		response.Unauthorized(c, msg)
		return
	}
	c.Redirect(http.StatusFound, redirect)
	c.Abort()
}

// IsAPI reports whether the request targets the JSON API.
func IsAPI(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}
