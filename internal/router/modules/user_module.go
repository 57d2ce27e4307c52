package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/project-board/internal/container"
	"github.com/oksasatya/project-board/internal/domain/policy"
	handlers "github.com/oksasatya/project-board/internal/interface/http"
	"github.com/oksasatya/project-board/internal/interface/middleware"
)

// UserModule wires the admin roster: GET /api/users.
type UserModule struct {
	Handler *handlers.UserHandler
	Auth    gin.HandlerFunc
}

func NewUserModule(h *handlers.UserHandler, auth gin.HandlerFunc) *UserModule {
	return &UserModule{Handler: h, Auth: auth}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(m.Auth)
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/users", middleware.Require(policy.ScoreList), m.Handler.ListUsers)
	}
}
