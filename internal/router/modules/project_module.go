package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/project-board/internal/container"
	"github.com/oksasatya/project-board/internal/domain/policy"
	handlers "github.com/oksasatya/project-board/internal/interface/http"
	"github.com/oksasatya/project-board/internal/interface/middleware"
)

// ProjectModule wires the project routes. Every route needs a bearer token
// and passes the policy gate for its operation before the handler runs.
type ProjectModule struct {
	Handler *handlers.ProjectHandler
	Auth    gin.HandlerFunc
}

func NewProjectModule(h *handlers.ProjectHandler, auth gin.HandlerFunc) *ProjectModule {
	return &ProjectModule{Handler: h, Auth: auth}
}

func (m *ProjectModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(m.Auth)
	auth.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/Project", middleware.Require(policy.ProjectList), m.Handler.ListOpen)
		auth.GET("/projects/search", middleware.Require(policy.ProjectSearch), m.Handler.Search)
		auth.GET("/project/:id", middleware.Require(policy.ProjectGet), m.Handler.Get)
		auth.POST("/takeProject/:id", middleware.Require(policy.ProjectClaim), m.Handler.Claim)
		auth.POST("/addProject", middleware.Require(policy.ProjectCreate), m.Handler.Create)
		auth.POST("/project/:id/attachment", middleware.Require(policy.ProjectAttach), m.Handler.Attach)
	}
}
