package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/project-board/internal/container"
	"github.com/oksasatya/project-board/internal/domain/policy"
	handlers "github.com/oksasatya/project-board/internal/interface/http"
	"github.com/oksasatya/project-board/internal/interface/middleware"
)

// AuthModule wires registration, login and session routes.
// Public: POST /api/register, POST /api/login
// Protected: GET /api/role, GET /api/me, POST /api/logout
type AuthModule struct {
	Handler *handlers.AuthHandler
	Auth    gin.HandlerFunc
}

func NewAuthModule(h *handlers.AuthHandler, auth gin.HandlerFunc) *AuthModule {
	return &AuthModule{Handler: h, Auth: auth}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)

	auth := rg.Group("/")
	auth.Use(m.Auth)
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/role", m.Handler.Role)
		auth.GET("/me", middleware.Require(policy.SessionMe), m.Handler.Me)
		auth.POST("/logout", middleware.Require(policy.SessionLogout), m.Handler.Logout)
	}
}
