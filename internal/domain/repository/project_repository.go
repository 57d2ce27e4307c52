package repository

import (
	"context"

	"github.com/oksasatya/project-board/internal/domain/entity"
)

// ProjectRepository owns projects and their assignments.
type ProjectRepository interface {
	Create(ctx context.Context, p *entity.Project) error
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	ListByStatus(ctx context.Context, status entity.ProjectStatus) ([]entity.Project, error)
	SetAttachmentURL(ctx context.Context, id, url string) (*entity.Project, error)

	// Claim assigns userID to the project as one atomic read-modify-write on the
	// project record. It returns ErrAlreadyClaimed when userID already holds the
	// project and ErrProjectClosed when someone else does.
	Claim(ctx context.Context, projectID, userID string) (*entity.Project, error)
}

// TaskRepository owns the per-assignee task status.
type TaskRepository interface {
	ListByUser(ctx context.Context, userID string) ([]entity.Task, error)
	// UpdateStatus locks the assignment row, sets the status and stamps ScoredAt
	// on the first transition to Completed. ErrNotAssigned when no assignment exists.
	UpdateStatus(ctx context.Context, projectID, userID string, status entity.TaskStatus) (entity.StatusChange, error)
}
