package modules

import (
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/project-board/internal/container"
	"github.com/oksasatya/project-board/internal/interface/middleware"
)

// DebugModule serves the liveness probe and, when enabled, expvar counters.
type DebugModule struct {
	Metrics bool
}

func NewDebugModule(metrics bool) *DebugModule { return &DebugModule{Metrics: metrics} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if !m.Metrics {
		return
	}
	// private callers (scrapers) skip the per-IP limit
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
