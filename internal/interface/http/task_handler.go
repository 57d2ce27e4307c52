package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-board/internal/application"
	"github.com/oksasatya/project-board/internal/domain/entity"
	"github.com/oksasatya/project-board/internal/interface/middleware"
	"github.com/oksasatya/project-board/pkg/response"
)

type TaskHandler struct {
	Tasks  *application.TaskService
	Logger *logrus.Logger
}

func NewTaskHandler(tasks *application.TaskService, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{Tasks: tasks, Logger: logger}
}

// statusRequest is checked by the service, after the assignee check.
type statusRequest struct {
	Status string `json:"status"`
}

type statusResponse struct {
	Message string            `json:"message"`
	Status  entity.TaskStatus `json:"status"`
}

// ListMine returns the caller's tasks as a bare array.
func (h *TaskHandler) ListMine(c *gin.Context) {
	tasks, err := h.Tasks.ListMyTasks(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks)
}

func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Status = ""
	}
	change, err := h.Tasks.UpdateTaskStatus(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("taskId"), req.Status)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, statusResponse{Message: application.MsgStatusUpdated, Status: change.Current})
}
