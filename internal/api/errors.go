package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"tasklr/internal/service"
	"tasklr/pkg/response"
)

const (
	msgAuthFailed  = "Authentication failed. Please sign in again."
	msgTitle       = "Title is required"
	msgInvalidBody = "Invalid request body"
	msgInvalidDue  = "Invalid due date"
	msgInvalidStat = "Invalid status"
)

var (
	errTitleRequired = errors.New(msgTitle)
	errInvalidDue    = errors.New(msgInvalidDue)
	errInvalidStatus = errors.New(msgInvalidStat)
	errInvalidBody   = errors.New(msgInvalidBody)
)

// handleAPIError answers a failed backend call. A revoked token ends the
// session; unclassified failures get the route's message.
func (h *handler) handleAPIError(c *gin.Context, op string, err error, msg string) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		h.l.Warnf(ctx, "api.%s: %v", op, err)
		h.mw.EndSession(c)
		response.Unauthorized(c, msgAuthFailed)
	case errors.Is(err, service.ErrForbidden):
		h.l.Warnf(ctx, "api.%s: %v", op, err)
		response.Forbidden(c)
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c)
	default:
		h.l.Errorf(ctx, "api.%s: %v", op, err)
		response.InternalError(c, msg)
	}
}
