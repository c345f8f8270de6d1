package api

import (
	"github.com/gin-gonic/gin"

	"tasklr/internal/middleware"
)

// RegisterPageRoutes maps the HTML pages and the OAuth endpoints.
func RegisterPageRoutes(r gin.IRouter, h *handler, mw middleware.Middleware) {
	r.GET("/login", h.LoginPage)
	r.GET("/", mw.Auth(), h.IndexPage)

	a := r.Group("/auth")
	{
		a.GET("/google", h.StartAuth)
		a.GET("/callback", h.Callback)
		a.POST("/logout", h.Logout)
	}
}

// RegisterAPIRoutes maps the JSON API under rg, which is expected to be /api.
// Everything except the status endpoint requires a signed-in session.
func RegisterAPIRoutes(rg *gin.RouterGroup, h *handler, mw middleware.Middleware) {
	rg.GET("/status", h.Status)

	authed := rg.Group("", mw.Auth())
	authed.GET("/me", h.Me)
	authed.GET("/export", h.Export)

	lists := authed.Group("/tasklists")
	{
		lists.GET("", h.ListLists)
		lists.POST("", h.CreateList)
		lists.GET("/counts", h.Counts)
		lists.PATCH("/:listId", h.RenameList)
		lists.DELETE("/:listId", h.DeleteList)
		lists.POST("/:listId/clear", h.ClearCompleted)

		lists.GET("/:listId/tasks", h.ListTasks)
		lists.POST("/:listId/tasks", h.CreateTask)
		lists.PATCH("/:listId/tasks/:taskId", h.UpdateTask)
		lists.DELETE("/:listId/tasks/:taskId", h.DeleteTask)
		lists.POST("/:listId/tasks/:taskId/move", h.MoveTask)
	}
}

// RegisterTestRoutes maps routes used by smoke tests. They need no session
// and must only be mounted when explicitly enabled.
func RegisterTestRoutes(r gin.IRouter, h *handler) {
	r.GET("/__test/export", h.TestExport)
}
