package api

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"tasklr/internal/service"
)

// bindJSON decodes the request body. An empty body leaves dst untouched.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errInvalidBody
	}
	return nil
}

func (h *handler) processTitleReq(c *gin.Context) (string, error) {
	var req titleReq
	if err := bindJSON(c, &req); err != nil {
		return "", err
	}
	return req.validate()
}

func (h *handler) processCreateTaskReq(c *gin.Context) (service.NewTask, error) {
	var req createTaskReq
	if err := bindJSON(c, &req); err != nil {
		return service.NewTask{}, err
	}
	return req.toInput()
}

func (h *handler) processUpdateTaskReq(c *gin.Context) (service.TaskPatch, error) {
	var req updateTaskReq
	if err := bindJSON(c, &req); err != nil {
		return service.TaskPatch{}, err
	}
	return req.toInput()
}

func (h *handler) processMoveReq(c *gin.Context) (service.MoveTarget, error) {
	var req moveReq
	if err := bindJSON(c, &req); err != nil {
		return service.MoveTarget{}, err
	}
	return req.toInput(), nil
}
