package api

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"tasklr/internal/auth"
	"tasklr/internal/middleware"
	"tasklr/pkg/response"
)

const (
	loginErrAccessDenied = middleware.LoginPath + "?error=access_denied"
	loginErrAuthFailed   = middleware.LoginPath + "?error=auth_failed"
)

// LoginPage serves the sign-in page, or sends signed-in users home.
func (h *handler) LoginPage(c *gin.Context) {
	if middleware.CurrentSession(c).Authenticated() {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.File(filepath.Join(h.viewsDir, "login.html"))
}

func (h *handler) IndexPage(c *gin.Context) {
	c.File(filepath.Join(h.viewsDir, "index.html"))
}

// StartAuth stores a fresh state and PKCE verifier in the session and
// redirects to Google's consent page.
func (h *handler) StartAuth(c *gin.Context) {
	ctx := c.Request.Context()

	sess := middleware.CurrentSession(c)
	if sess == nil {
		var err error
		if sess, err = h.mw.NewSession(c); err != nil {
			h.l.Errorf(ctx, "api.StartAuth.NewSession: %v", err)
			response.InternalError(c, "Failed to start sign-in")
			return
		}
	}

	sess.State = auth.NewState()
	sess.Verifier = auth.NewVerifier()
	h.mw.SaveSession(c, sess)

	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(sess.State, sess.Verifier))
}

// Callback finishes the OAuth flow and signs the user in under a new
// session id.
func (h *handler) Callback(c *gin.Context) {
	ctx := c.Request.Context()

	if c.Query("error") != "" {
		c.Redirect(http.StatusFound, loginErrAccessDenied)
		return
	}

	sess := middleware.CurrentSession(c)
	code := c.Query("code")
	if sess == nil || sess.State == "" || c.Query("state") != sess.State || code == "" {
		h.l.Warnf(ctx, "api.Callback: state mismatch or missing code")
		c.Redirect(http.StatusFound, loginErrAuthFailed)
		return
	}

	token, err := h.provider.Exchange(ctx, code, sess.Verifier)
	if err != nil {
		h.l.Errorf(ctx, "api.Callback.Exchange: %v", err)
		c.Redirect(http.StatusFound, loginErrAuthFailed)
		return
	}

	user, err := h.provider.UserInfo(ctx, token)
	if err != nil {
		h.l.Errorf(ctx, "api.Callback.UserInfo: %v", err)
		c.Redirect(http.StatusFound, loginErrAuthFailed)
		return
	}

	sess.Token = token
	sess.User = user
	sess.State = ""
	sess.Verifier = ""
	if _, err := h.mw.RotateSession(c, sess); err != nil {
		h.l.Errorf(ctx, "api.Callback.RotateSession: %v", err)
		c.Redirect(http.StatusFound, loginErrAuthFailed)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *handler) Logout(c *gin.Context) {
	h.mw.EndSession(c)
	c.Redirect(http.StatusFound, middleware.LoginPath)
}
