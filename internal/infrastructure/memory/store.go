// Package memory is an in-process implementation of the repositories. It backs
// STORAGE_DRIVER=memory for local runs and the service tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/project-board/internal/domain/entity"
	"github.com/oksasatya/project-board/internal/domain/repository"
)

type assignmentKey struct {
	projectID string
	userID    string
}

// Store holds every record behind one mutex. Each repository method is one
// critical section, which makes Claim and UpdateStatus atomic.
type Store struct {
	mu          sync.Mutex
	txMu        sync.Mutex
	users       map[string]*entity.User
	emails      map[string]string
	projects    map[string]*entity.Project
	assignments map[assignmentKey]*entity.Assignment

	// insertion order, so listings are stable
	userOrder       []string
	projectOrder    []string
	assignmentOrder []assignmentKey
	now             func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:       map[string]*entity.User{},
		emails:      map[string]string{},
		projects:    map[string]*entity.Project{},
		assignments: map[assignmentKey]*entity.Assignment{},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Users() *UserRepository       { return &UserRepository{s: s} }
func (s *Store) Projects() *ProjectRepository { return &ProjectRepository{s: s} }
func (s *Store) Tasks() *TaskRepository       { return &TaskRepository{s: s} }
func (s *Store) Transactor() *Transactor      { return &Transactor{s: s} }

func copyUser(u *entity.User) *entity.User {
	c := *u
	return &c
}

func copyProject(p *entity.Project) *entity.Project {
	c := *p
	c.AssignedTo = append([]string{}, p.AssignedTo...)
	return &c
}

func copyAssignment(a *entity.Assignment) *entity.Assignment {
	c := *a
	if a.ScoredAt != nil {
		t := *a.ScoredAt
		c.ScoredAt = &t
	}
	return &c
}

// UserRepository implements repository.UserRepository.
type UserRepository struct{ s *Store }

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, ok := r.s.emails[key]; ok {
		return repository.ErrDuplicateEmail
	}
	now := r.s.now()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.s.users[u.ID] = copyUser(u)
	r.s.emails[key] = u.ID
	r.s.userOrder = append(r.s.userOrder, u.ID)
	id := u.ID
	record(ctx, func(s *Store) {
		delete(s.users, id)
		delete(s.emails, key)
		s.userOrder = without(s.userOrder, id)
	})
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.emails[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(r.s.users[id]), nil
}

func (r *UserRepository) ListByRole(_ context.Context, role entity.Role) ([]entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.User, 0)
	for _, id := range r.s.userOrder {
		if u := r.s.users[id]; u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *UserRepository) IncrementScore(ctx context.Context, id string, amount int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.TotalScore += amount
	u.UpdatedAt = r.s.now()
	record(ctx, func(s *Store) {
		if u, ok := s.users[id]; ok {
			u.TotalScore -= amount
		}
	})
	return nil
}

// ProjectRepository implements repository.ProjectRepository.
type ProjectRepository struct{ s *Store }

func (r *ProjectRepository) Create(ctx context.Context, p *entity.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	p.ID = uuid.NewString()
	if p.Status == "" {
		p.Status = entity.ProjectOpen
	}
	if p.AssignedTo == nil {
		p.AssignedTo = []string{}
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	r.s.projects[p.ID] = copyProject(p)
	r.s.projectOrder = append(r.s.projectOrder, p.ID)
	id := p.ID
	record(ctx, func(s *Store) {
		delete(s.projects, id)
		s.projectOrder = without(s.projectOrder, id)
	})
	return nil
}

func (r *ProjectRepository) GetByID(_ context.Context, id string) (*entity.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyProject(p), nil
}

func (r *ProjectRepository) ListByStatus(_ context.Context, status entity.ProjectStatus) ([]entity.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.Project, 0)
	for _, id := range r.s.projectOrder {
		if p := r.s.projects[id]; p.Status == status {
			out = append(out, *copyProject(p))
		}
	}
	return out, nil
}

func (r *ProjectRepository) SetAttachmentURL(ctx context.Context, id, url string) (*entity.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	prev := p.AttachmentURL
	p.AttachmentURL = url
	p.UpdatedAt = r.s.now()
	record(ctx, func(s *Store) {
		if p, ok := s.projects[id]; ok {
			p.AttachmentURL = prev
		}
	})
	return copyProject(p), nil
}

func (r *ProjectRepository) Claim(ctx context.Context, projectID, userID string) (*entity.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[projectID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.IsAssignedTo(userID) {
		return nil, repository.ErrAlreadyClaimed
	}
	if p.Status != entity.ProjectOpen || len(p.AssignedTo) > 0 {
		return nil, repository.ErrProjectClosed
	}
	now := r.s.now()
	prevStatus := p.Status
	p.AssignedTo = append(p.AssignedTo, userID)
	p.Status = entity.ProjectTaken
	p.UpdatedAt = now
	key := assignmentKey{projectID, userID}
	r.s.assignmentOrder = append(r.s.assignmentOrder, key)
	r.s.assignments[key] = &entity.Assignment{
		ProjectID: projectID,
		UserID:    userID,
		Status:    entity.TaskPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	record(ctx, func(s *Store) {
		delete(s.assignments, key)
		s.assignmentOrder = without(s.assignmentOrder, key)
		if p, ok := s.projects[projectID]; ok {
			p.AssignedTo = without(p.AssignedTo, userID)
			p.Status = prevStatus
		}
	})
	return copyProject(p), nil
}

// TaskRepository implements repository.TaskRepository.
type TaskRepository struct{ s *Store }

func (r *TaskRepository) ListByUser(_ context.Context, userID string) ([]entity.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.Task, 0)
	for _, k := range r.s.assignmentOrder {
		if k.userID != userID {
			continue
		}
		a := r.s.assignments[k]
		p, ok := r.s.projects[k.projectID]
		if !ok {
			continue
		}
		out = append(out, entity.NewTask(copyProject(p), a))
	}
	return out, nil
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, projectID, userID string, status entity.TaskStatus) (entity.StatusChange, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := assignmentKey{projectID, userID}
	a, ok := r.s.assignments[key]
	if !ok {
		return entity.StatusChange{}, repository.ErrNotAssigned
	}
	prev := copyAssignment(a)
	record(ctx, func(s *Store) {
		if _, ok := s.assignments[key]; ok {
			s.assignments[key] = prev
		}
	})
	now := r.s.now()
	change := entity.StatusChange{Previous: a.Status, Current: status}
	a.Status = status
	a.UpdatedAt = now
	if status == entity.TaskCompleted && a.ScoredAt == nil {
		a.ScoredAt = &now
		change.FirstCompletion = true
	}
	return change, nil
}

// Transactor runs units of work one at a time. Repository writes made with
// the unit's context are journaled and undone in reverse order when fn fails;
// writes from other contexts are left alone. Nested calls join the outer unit.
type Transactor struct{ s *Store }

type journalKey struct{}

type journal struct {
	undo []func(*Store)
}

// record adds an undo step to the unit of work in ctx, if any. Callers hold s.mu.
func record(ctx context.Context, undo func(*Store)) {
	if j, ok := ctx.Value(journalKey{}).(*journal); ok {
		j.undo = append(j.undo, undo)
	}
}

func without[T comparable](items []T, v T) []T {
	for i, it := range items {
		if it == v {
			return append(items[:i:i], items[i+1:]...)
		}
	}
	return items
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(journalKey{}).(*journal); ok {
		return fn(ctx)
	}
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	j := &journal{}
	if err := fn(context.WithValue(ctx, journalKey{}, j)); err != nil {
		t.s.mu.Lock()
		defer t.s.mu.Unlock()
		for i := len(j.undo) - 1; i >= 0; i-- {
			j.undo[i](t.s)
		}
		return err
	}
	return nil
}

var (
	_ repository.UserRepository    = (*UserRepository)(nil)
	_ repository.ProjectRepository = (*ProjectRepository)(nil)
	_ repository.TaskRepository    = (*TaskRepository)(nil)
	_ repository.Transactor        = (*Transactor)(nil)
)
