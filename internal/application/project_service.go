package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-board/internal/domain/entity"
	"github.com/oksasatya/project-board/internal/domain/policy"
	repo "github.com/oksasatya/project-board/internal/domain/repository"
)

const (
	defaultSearchSize = 10
	maxSearchSize     = 50
)

// ProjectService owns the project lifecycle: creation, listing and claims.
type ProjectService struct {
	Projects repo.ProjectRepository
	Users    repo.UserRepository
	Index    ProjectIndex
	Storage  ObjectStorage
	Notifier *Notifier
	Logger   *logrus.Logger
}

func NewProjectService(projects repo.ProjectRepository, users repo.UserRepository, index ProjectIndex, storage ObjectStorage, notifier *Notifier, logger *logrus.Logger) *ProjectService {
	return &ProjectService{
		Projects: projects,
		Users:    users,
		Index:    index,
		Storage:  storage,
		Notifier: notifier,
		Logger:   logger,
	}
}

type CreateProjectInput struct {
	Title       string
	Description string
	Deadline    string
}

// ParseDeadline accepts YYYY-MM-DD (what a date input posts) or a full RFC3339 timestamp.
func ParseDeadline(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(entity.DeadlineLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ListOpenProjects returns every project still open for claims.
func (s *ProjectService) ListOpenProjects(ctx context.Context, p policy.Principal) ([]entity.Project, error) {
	if err := policy.Authorize(p, policy.ProjectList); err != nil {
		return nil, AuthorizationError(err)
	}
	projects, err := s.Projects.ListByStatus(ctx, entity.ProjectOpen)
	if err != nil {
		return nil, InternalError(err)
	}
	return projects, nil
}

// GetProject returns one project by id.
func (s *ProjectService) GetProject(ctx context.Context, p policy.Principal, id string) (*entity.Project, error) {
	if err := policy.Authorize(p, policy.ProjectGet); err != nil {
		return nil, AuthorizationError(err)
	}
	return s.load(ctx, id)
}

func (s *ProjectService) load(ctx context.Context, id string) (*entity.Project, error) {
	proj, err := s.Projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NotFoundError(MsgProjectNotFound, err)
		}
		return nil, InternalError(err)
	}
	return proj, nil
}

// CreateProject creates an Open project with no assignees. Admins only.
func (s *ProjectService) CreateProject(ctx context.Context, p policy.Principal, in CreateProjectInput) (*entity.Project, error) {
	if err := policy.Authorize(p, policy.ProjectCreate); err != nil {
		return nil, AuthorizationError(err)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ValidationError("title is required")
	}
	if strings.TrimSpace(in.Deadline) == "" {
		return nil, ValidationError("deadline is required")
	}
	deadline, err := ParseDeadline(in.Deadline)
	if err != nil {
		return nil, ValidationError("deadline must be a date in YYYY-MM-DD format")
	}

	proj := &entity.Project{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Deadline:    deadline,
		Status:      entity.ProjectOpen,
		AssignedTo:  []string{},
		CreatedBy:   p.UserID,
	}
	if err := s.Projects.Create(ctx, proj); err != nil {
		return nil, InternalError(err)
	}
	projectsCreated.Add(1)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"project_id": proj.ID, "admin_id": p.UserID}).Info("project created")
	}
	s.index(ctx, proj)
	return proj, nil
}

// ClaimProject assigns the caller to an open project. The first claim closes the
// project: it becomes Taken and no other user can claim it.
func (s *ProjectService) ClaimProject(ctx context.Context, p policy.Principal, id string) (*entity.Project, error) {
	if err := policy.Authorize(p, policy.ProjectClaim); err != nil {
		return nil, AuthorizationError(err)
	}
	proj, err := s.Projects.Claim(ctx, id, p.UserID)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, NotFoundError(MsgProjectNotFound, err)
		case errors.Is(err, repo.ErrAlreadyClaimed):
			return nil, AlreadyClaimedError(err)
		case errors.Is(err, repo.ErrProjectClosed):
			claimConflicts.Add(1)
			return nil, ProjectClosedError(err)
		}
		return nil, InternalError(err)
	}
	projectsClaimed.Add(1)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"project_id": proj.ID, "user_id": p.UserID}).Info("project claimed")
	}
	s.index(ctx, proj)
	if s.Notifier.active() && s.Users != nil {
		if u, err := s.Users.GetByID(ctx, p.UserID); err == nil {
			s.Notifier.ProjectClaimed(ctx, u, proj)
		}
	}
	return proj, nil
}

// SearchProjects runs a full-text query over titles and descriptions. It returns
// an empty list when no index is configured.
func (s *ProjectService) SearchProjects(ctx context.Context, p policy.Principal, q string, size int) ([]entity.Project, error) {
	if err := policy.Authorize(p, policy.ProjectSearch); err != nil {
		return nil, AuthorizationError(err)
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ValidationError("q is required")
	}
	if s.Index == nil {
		return []entity.Project{}, nil
	}
	if size <= 0 || size > maxSearchSize {
		size = defaultSearchSize
	}
	ids, err := s.Index.Search(ctx, q, size)
	if err != nil {
		return nil, InternalError(err)
	}
	out := make([]entity.Project, 0, len(ids))
	for _, id := range ids {
		proj, err := s.Projects.GetByID(ctx, id)
		if err != nil {
			// stale index entry
			continue
		}
		out = append(out, *proj)
	}
	return out, nil
}

// AttachFile uploads a file for the project and records its URL. Admins only.
func (s *ProjectService) AttachFile(ctx context.Context, p policy.Principal, id string, r io.Reader, filename, contentType string) (*entity.Project, error) {
	if err := policy.Authorize(p, policy.ProjectAttach); err != nil {
		return nil, AuthorizationError(err)
	}
	if s.Storage == nil {
		return nil, UnavailableError(MsgStorageDisabled)
	}
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("projects", id, uuid.NewString()+ext))
	url, err := s.Storage.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		return nil, InternalError(err)
	}
	proj, err := s.Projects.SetAttachmentURL(ctx, id, url)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NotFoundError(MsgProjectNotFound, err)
		}
		return nil, InternalError(err)
	}
	s.index(ctx, proj)
	return proj, nil
}

func (s *ProjectService) index(ctx context.Context, proj *entity.Project) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, proj); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("project_id", proj.ID).Warn("project index failed")
	}
}
