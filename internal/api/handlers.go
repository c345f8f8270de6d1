package api

import (
	"github.com/gin-gonic/gin"

	"tasklr/internal/middleware"
	"tasklr/internal/service"
	"tasklr/pkg/response"
)

// ListLists godoc
// @Summary  List task lists
// @Tags     Tasklists
// @Produce  json
// @Success  200 {array} service.TaskList
// @Failure  401 {object} response.ErrorResp
// @Router   /api/tasklists [GET]
func (h *handler) ListLists(c *gin.Context) {
	ctx := c.Request.Context()
	svc := middleware.CurrentService(c)

	lists, err := svc.ListLists(ctx)
	if err != nil {
		h.handleAPIError(c, "ListLists", err, "Failed to fetch task lists")
		return
	}
	if lists == nil {
		lists = []service.TaskList{}
	}
	response.OK(c, lists)
}

// CreateList godoc
// @Summary  Create a task list
// @Tags     Tasklists
// @Accept   json
// @Produce  json
// @Param    body body titleReq true "List title"
// @Success  201 {object} service.TaskList
// @Failure  400 {object} response.ErrorResp
// @Router   /api/tasklists [POST]
func (h *handler) CreateList(c *gin.Context) {
	ctx := c.Request.Context()

	title, err := h.processTitleReq(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	list, err := middleware.CurrentService(c).CreateList(ctx, title)
	if err != nil {
		h.handleAPIError(c, "CreateList", err, "Failed to create task list")
		return
	}
	response.Created(c, list)
}

// RenameList godoc
// @Summary  Rename a task list
// @Tags     Tasklists
// @Router   /api/tasklists/{listId} [PATCH]
func (h *handler) RenameList(c *gin.Context) {
	ctx := c.Request.Context()

	title, err := h.processTitleReq(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	list, err := middleware.CurrentService(c).RenameList(ctx, c.Param("listId"), title)
	if err != nil {
		h.handleAPIError(c, "RenameList", err, "Failed to rename task list")
		return
	}
	response.OK(c, list)
}

func (h *handler) DeleteList(c *gin.Context) {
	if err := middleware.CurrentService(c).DeleteList(c.Request.Context(), c.Param("listId")); err != nil {
		h.handleAPIError(c, "DeleteList", err, "Failed to delete task list")
		return
	}
	response.NoContent(c)
}

func (h *handler) ClearCompleted(c *gin.Context) {
	if err := middleware.CurrentService(c).ClearCompleted(c.Request.Context(), c.Param("listId")); err != nil {
		h.handleAPIError(c, "ClearCompleted", err, "Failed to clear completed tasks")
		return
	}
	response.NoContent(c)
}

// Counts godoc
// @Summary     Count incomplete tasks per list
// @Description Lists that cannot be read count as 0.
// @Tags        Tasklists
// @Produce     json
// @Success     200 {object} map[string]int
// @Router      /api/tasklists/counts [GET]
func (h *handler) Counts(c *gin.Context) {
	counts, err := h.agg.CountIncompleteByList(c.Request.Context(), middleware.CurrentService(c))
	if err != nil {
		h.handleAPIError(c, "Counts", err, "Failed to fetch task list counts")
		return
	}
	response.OK(c, counts)
}

// ListTasks returns every task of a list, completed ones included.
func (h *handler) ListTasks(c *gin.Context) {
	ctx := c.Request.Context()

	q := service.PageQuery{IncludeCompleted: true, IncludeHidden: false}
	tasks, err := h.agg.CollectTasks(ctx, middleware.CurrentService(c), c.Param("listId"), q)
	if err != nil {
		h.handleAPIError(c, "ListTasks", err, "Failed to fetch tasks")
		return
	}
	response.OK(c, tasks)
}

func (h *handler) CreateTask(c *gin.Context) {
	ctx := c.Request.Context()

	input, err := h.processCreateTaskReq(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := middleware.CurrentService(c).CreateTask(ctx, c.Param("listId"), input)
	if err != nil {
		h.handleAPIError(c, "CreateTask", err, "Failed to create task")
		return
	}
	response.Created(c, task)
}

// UpdateTask applies a partial update. A null or empty due date clears it.
func (h *handler) UpdateTask(c *gin.Context) {
	ctx := c.Request.Context()

	patch, err := h.processUpdateTaskReq(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := middleware.CurrentService(c).UpdateTask(ctx, c.Param("listId"), c.Param("taskId"), patch)
	if err != nil {
		h.handleAPIError(c, "UpdateTask", err, "Failed to update task")
		return
	}
	response.OK(c, task)
}

func (h *handler) DeleteTask(c *gin.Context) {
	if err := middleware.CurrentService(c).DeleteTask(c.Request.Context(), c.Param("listId"), c.Param("taskId")); err != nil {
		h.handleAPIError(c, "DeleteTask", err, "Failed to delete task")
		return
	}
	response.NoContent(c)
}

// MoveTask moves a task after previous, or to the top when previous is absent.
func (h *handler) MoveTask(c *gin.Context) {
	ctx := c.Request.Context()

	target, err := h.processMoveReq(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := middleware.CurrentService(c).MoveTask(ctx, c.Param("listId"), c.Param("taskId"), target)
	if err != nil {
		h.handleAPIError(c, "MoveTask", err, "Failed to move task")
		return
	}
	response.OK(c, task)
}

// Me returns the profile of the signed-in user.
func (h *handler) Me(c *gin.Context) {
	response.OK(c, middleware.CurrentSession(c).User)
}
