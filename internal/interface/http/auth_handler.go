package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-board/internal/application"
	"github.com/oksasatya/project-board/internal/interface/middleware"
	"github.com/oksasatya/project-board/pkg/response"
)

// AuthHandler serves registration, login and the session endpoints.
type AuthHandler struct {
	Identity *application.IdentityService
	Logger   *logrus.Logger
}

func NewAuthHandler(identity *application.IdentityService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Identity: identity, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Role     string `json:"role" binding:"required,role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	_, err := h.Identity.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Message(c, http.StatusCreated, application.MsgRegistered)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	res, err := h.Identity.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Role answers with the role bound to the caller's token.
func (h *AuthHandler) Role(c *gin.Context) {
	role, err := h.Identity.ResolveRole(c.Request.Context(), middleware.BearerToken(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"role": role})
}

func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.Identity.Me(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, u)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Identity.Logout(c.Request.Context(), middleware.PrincipalFrom(c)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Message(c, http.StatusOK, application.MsgLoggedOut)
}
