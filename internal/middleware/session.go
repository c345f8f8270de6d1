package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tasklr/internal/service"
	"tasklr/internal/session"
)

const (
	sessionKey = "tasklr.session"
	serviceKey = "tasklr.service"
)

// Session loads the session named by the cookie, if any. Requests with a
// missing, invalid or expired cookie continue without a session.
func (mw Middleware) Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := c.Cookie(mw.cookie.Name)
		if err == nil && value != "" {
			id, err := mw.codec.Decode(value)
			if err != nil {
				mw.l.Debugf(c.Request.Context(), "middleware.Session: %v", err)
			} else if sess, ok := mw.store.Get(id); ok {
				c.Set(sessionKey, sess)
			}
		}
		c.Next()
	}
}

// CurrentSession returns the session loaded for the request, or nil.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

// CurrentService returns the task service built for the signed-in user.
// It is only set behind Auth.
func CurrentService(c *gin.Context) service.Service {
	v, ok := c.Get(serviceKey)
	if !ok {
		return nil
	}
	svc, _ := v.(service.Service)
	return svc
}

// NewSession creates an empty session for the request and sets its cookie.
func (mw Middleware) NewSession(c *gin.Context) (*session.Session, error) {
	sess := mw.store.New()
	if err := mw.StartSession(c, sess); err != nil {
		mw.store.Destroy(sess.ID)
		return nil, err
	}
	return sess, nil
}

// StartSession stores sess, binds it to the request and sets the cookie.
func (mw Middleware) StartSession(c *gin.Context, sess *session.Session) error {
	value, err := mw.codec.Encode(sess.ID)
	if err != nil {
		return err
	}
	mw.store.Save(sess)
	c.Set(sessionKey, sess)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(mw.cookie.Name, value, int(mw.codec.TTL().Seconds()), "/", "", mw.cookie.Secure, true)
	return nil
}

// SaveSession persists changes to the request's session.
func (mw Middleware) SaveSession(c *gin.Context, sess *session.Session) {
	mw.store.Save(sess)
	c.Set(sessionKey, sess)
}

// RotateSession gives the request's session a new id and cookie.
func (mw Middleware) RotateSession(c *gin.Context, sess *session.Session) (*session.Session, error) {
	rotated := mw.store.Rotate(sess)
	if err := mw.StartSession(c, rotated); err != nil {
		mw.store.Destroy(rotated.ID)
		return nil, err
	}
	return rotated, nil
}

// EndSession destroys the request's session and expires the cookie.
func (mw Middleware) EndSession(c *gin.Context) {
	if sess := CurrentSession(c); sess != nil {
		mw.store.Destroy(sess.ID)
	}
	c.Set(sessionKey, (*session.Session)(nil))

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(mw.cookie.Name, "", -1, "/", "", mw.cookie.Secure, true)
}
