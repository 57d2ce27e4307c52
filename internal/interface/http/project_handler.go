package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-board/internal/application"
	"github.com/oksasatya/project-board/internal/domain/entity"
	"github.com/oksasatya/project-board/internal/interface/middleware"
	"github.com/oksasatya/project-board/pkg/response"
)

// MaxAttachmentBytes caps a project attachment upload.
const MaxAttachmentBytes = 10 << 20

type ProjectHandler struct {
	Projects *application.ProjectService
	Logger   *logrus.Logger
}

func NewProjectHandler(projects *application.ProjectService, logger *logrus.Logger) *ProjectHandler {
	return &ProjectHandler{Projects: projects, Logger: logger}
}

type createProjectRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Deadline    string `json:"deadline" binding:"required,date"`
}

type createProjectResponse struct {
	Message string          `json:"message"`
	Project *entity.Project `json:"project"`
}

// ListOpen returns the open projects as a bare array.
func (h *ProjectHandler) ListOpen(c *gin.Context) {
	projects, err := h.Projects.ListOpenProjects(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, projects)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	p, err := h.Projects.GetProject(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, p)
}

func (h *ProjectHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	projects, err := h.Projects.SearchProjects(c.Request.Context(), middleware.PrincipalFrom(c), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, projects)
}

func (h *ProjectHandler) Claim(c *gin.Context) {
	if _, err := h.Projects.ClaimProject(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Message(c, http.StatusOK, application.MsgProjectTaken)
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	p, err := h.Projects.CreateProject(c.Request.Context(), middleware.PrincipalFrom(c), application.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusCreated, createProjectResponse{Message: application.MsgProjectCreated, Project: p})
}

// Attach stores the multipart "file" field as the project's attachment.
func (h *ProjectHandler) Attach(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxAttachmentBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "file is required", map[string]string{"file": "is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.Logger, application.InternalError(err))
		return
	}
	defer func() { _ = f.Close() }()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	p, err := h.Projects.AttachFile(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), f, fh.Filename, contentType)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, p)
}
