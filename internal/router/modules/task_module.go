package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/project-board/internal/container"
	"github.com/oksasatya/project-board/internal/domain/policy"
	handlers "github.com/oksasatya/project-board/internal/interface/http"
	"github.com/oksasatya/project-board/internal/interface/middleware"
)

// TaskModule wires the assignee routes: GET /api/user, POST /api/status/:taskId.
type TaskModule struct {
	Handler *handlers.TaskHandler
	Auth    gin.HandlerFunc
}

func NewTaskModule(h *handlers.TaskHandler, auth gin.HandlerFunc) *TaskModule {
	return &TaskModule{Handler: h, Auth: auth}
}

func (m *TaskModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(m.Auth)
	auth.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/user", middleware.Require(policy.TaskList), m.Handler.ListMine)
		auth.POST("/status/:taskId", middleware.Require(policy.TaskUpdate), m.Handler.UpdateStatus)
	}
}
