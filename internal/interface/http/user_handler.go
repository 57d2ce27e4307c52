package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-board/internal/application"
	"github.com/oksasatya/project-board/internal/interface/middleware"
	"github.com/oksasatya/project-board/pkg/response"
)

// UserHandler serves the admin user roster.
type UserHandler struct {
	Scores *application.ScoreService
	Logger *logrus.Logger
}

func NewUserHandler(scores *application.ScoreService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Scores: scores, Logger: logger}
}

// ListUsers returns every "user" account with its total score.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.Scores.GetUserScores(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, users)
}
