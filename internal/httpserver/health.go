package httpserver

import (
	"time"

	"github.com/gin-gonic/gin"

	"tasklr/pkg/response"
)

// healthCheck handles health check requests
// @Summary Health Check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{} "API is healthy"
// @Router /health [get]
func (srv *HTTPServer) healthCheck(c *gin.Context) {
	response.OK(c, gin.H{
		"status":    "ok",
		"timestamp": response.Timestamp(time.Now()),
	})
}
