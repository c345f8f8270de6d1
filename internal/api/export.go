package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tasklr/internal/aggregate"
	"tasklr/internal/disposition"
	"tasklr/internal/middleware"
	"tasklr/internal/service"
)

// Export godoc
// @Summary     Export all task lists with their tasks
// @Description With download=1 the response is sent as a JSON file attachment.
// @Tags        Export
// @Produce     json
// @Param       download query string false "1 to download as a file"
// @Success     200 {object} aggregate.Export
// @Failure     500 {object} response.ErrorResp
// @Router      /api/export [GET]
func (h *handler) Export(c *gin.Context) {
	export, err := h.agg.ExportAll(c.Request.Context(), middleware.CurrentService(c))
	if err != nil {
		h.handleAPIError(c, "Export", err, "Failed to export tasks")
		return
	}
	h.writeExport(c, export)
}

// TestExport serves a fixed export without a session.
func (h *handler) TestExport(c *gin.Context) {
	h.writeExport(c, aggregate.Export{Lists: []aggregate.ListExport{{
		ID:    "test-list",
		Title: "Test List",
		Tasks: []service.Task{{ID: "t1", Title: "Sample Task"}},
	}}})
}

func (h *handler) writeExport(c *gin.Context, export aggregate.Export) {
	if !wantsDownload(c) {
		c.JSON(http.StatusOK, export)
		return
	}
	name := disposition.ExportFilename(h.now())
	c.Header("Content-Disposition", disposition.Attachment(name))
	c.IndentedJSON(http.StatusOK, export)
}

func wantsDownload(c *gin.Context) bool {
	switch c.Query("download") {
	case "1", "true":
		return true
	}
	return false
}
