package entity

import "time"

// TaskStatus is the progress of a claimed project from the assignee's side.
type TaskStatus string

const (
	TaskPending    TaskStatus = "Pending"
	TaskInProgress TaskStatus = "In Progress"
	TaskCompleted  TaskStatus = "Completed"
)

// UpdatableTaskStatuses are the statuses a caller may set.
var UpdatableTaskStatuses = map[TaskStatus]struct{}{
	TaskInProgress: {},
	TaskCompleted:  {},
}

// Assignment links a user to a claimed project and carries the task status.
// ScoredAt is set once, the first time the task reaches Completed.
type Assignment struct {
	ProjectID string
	UserID    string
	Status    TaskStatus
	ScoredAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Task is the assignee's projection of a project: the project fields with the
// task status in place of the project status.
type Task struct {
	ID            string     `json:"_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Deadline      time.Time  `json:"deadline"`
	Status        TaskStatus `json:"status"`
	AssignedTo    []string   `json:"assignedTo"`
	AttachmentURL string     `json:"attachmentUrl,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// NewTask builds the projection of p for an assignment a.
func NewTask(p *Project, a *Assignment) Task {
	return Task{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Deadline:      p.Deadline,
		Status:        a.Status,
		AssignedTo:    p.AssignedTo,
		AttachmentURL: p.AttachmentURL,
		UpdatedAt:     a.UpdatedAt,
	}
}

// StatusChange reports the outcome of a task status update.
type StatusChange struct {
	Previous TaskStatus
	Current  TaskStatus
	// FirstCompletion is true only for the update that set ScoredAt.
	FirstCompletion bool
}
