package api

import (
	"runtime"

	"github.com/gin-gonic/gin"

	"tasklr/pkg/response"
)

// Status reports build and configuration facts for readiness checks.
// It needs no session.
func (h *handler) Status(c *gin.Context) {
	now := h.now()
	env := h.info.EnvChecks
	if env == nil {
		env = map[string]bool{}
	}
	response.OK(c, statusResp{
		Name:      h.info.Name,
		Version:   h.info.Version,
		Go:        runtime.Version(),
		BaseURL:   h.info.BaseURL,
		Env:       env,
		Uptime:    now.Sub(h.info.StartedAt).Seconds(),
		Timestamp: response.Timestamp(now),
	})
}
