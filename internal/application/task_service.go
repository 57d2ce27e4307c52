package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-board/internal/domain/entity"
	"github.com/oksasatya/project-board/internal/domain/policy"
	repo "github.com/oksasatya/project-board/internal/domain/repository"
)

// TaskService manages the assignee side of claimed projects.
type TaskService struct {
	Tasks    repo.TaskRepository
	Projects repo.ProjectRepository
	Users    repo.UserRepository
	Tx       repo.Transactor
	Scores   *ScoreService
	Notifier *Notifier
	Logger   *logrus.Logger
	// CompletionPoints is awarded once per task on its first completion.
	CompletionPoints int
}

func NewTaskService(tasks repo.TaskRepository, projects repo.ProjectRepository, users repo.UserRepository, tx repo.Transactor, scores *ScoreService, notifier *Notifier, logger *logrus.Logger, completionPoints int) *TaskService {
	if completionPoints <= 0 {
		completionPoints = 1
	}
	return &TaskService{
		Tasks:            tasks,
		Projects:         projects,
		Users:            users,
		Tx:               tx,
		Scores:           scores,
		Notifier:         notifier,
		Logger:           logger,
		CompletionPoints: completionPoints,
	}
}

// ListMyTasks returns the caller's claimed projects with their task status.
func (s *TaskService) ListMyTasks(ctx context.Context, p policy.Principal) ([]entity.Task, error) {
	if err := policy.Authorize(p, policy.TaskList); err != nil {
		return nil, AuthorizationError(err)
	}
	tasks, err := s.Tasks.ListByUser(ctx, p.UserID)
	if err != nil {
		return nil, InternalError(err)
	}
	return tasks, nil
}

// UpdateTaskStatus moves the caller's task to In Progress or Completed. The
// first transition to Completed awards CompletionPoints in the same
// transaction; later Completed updates award nothing.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, p policy.Principal, projectID, status string) (entity.StatusChange, error) {
	if err := policy.Authorize(p, policy.TaskUpdate); err != nil {
		return entity.StatusChange{}, AuthorizationError(err)
	}
	proj, err := s.Projects.GetByID(ctx, projectID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return entity.StatusChange{}, InternalError(err)
	}
	if proj == nil || !proj.IsAssignedTo(p.UserID) {
		return entity.StatusChange{}, &Error{Kind: KindAuthorization, Message: MsgNotYourTask, Err: repo.ErrNotAssigned}
	}
	next := entity.TaskStatus(strings.TrimSpace(status))
	if _, ok := entity.UpdatableTaskStatuses[next]; !ok {
		return entity.StatusChange{}, ValidationError("status must be one of: In Progress, Completed")
	}

	var change entity.StatusChange
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		change, err = s.Tasks.UpdateStatus(ctx, projectID, p.UserID, next)
		if err != nil {
			return err
		}
		if change.FirstCompletion {
			return s.Scores.IncrementScore(ctx, p.UserID, s.CompletionPoints)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotAssigned) || errors.Is(err, repo.ErrNotFound) {
			return entity.StatusChange{}, &Error{Kind: KindAuthorization, Message: MsgNotYourTask, Err: err}
		}
		var appErr *Error
		if errors.As(err, &appErr) {
			return entity.StatusChange{}, appErr
		}
		return entity.StatusChange{}, InternalError(err)
	}

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"project_id": projectID,
			"user_id":    p.UserID,
			"from":       change.Previous,
			"to":         change.Current,
		}).Info("task status updated")
	}
	if change.FirstCompletion {
		tasksCompleted.Add(1)
		s.notifyCompleted(ctx, p.UserID, projectID)
	}
	return change, nil
}

func (s *TaskService) notifyCompleted(ctx context.Context, userID, projectID string) {
	if !s.Notifier.active() || s.Users == nil || s.Projects == nil {
		return
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return
	}
	proj, err := s.Projects.GetByID(ctx, projectID)
	if err != nil {
		return
	}
	a := entity.Assignment{ProjectID: projectID, UserID: userID, Status: entity.TaskCompleted}
	s.Notifier.TaskCompleted(ctx, u, entity.NewTask(proj, &a), s.CompletionPoints)
}
