package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/project-board/internal/domain/entity"
	"github.com/oksasatya/project-board/internal/domain/repository"
)

type ProjectRepository struct {
	pool *pgxpool.Pool
	tx   *Transactor
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool, tx: NewTransactor(pool)}
}

const projectColumns = `p.id::text, p.title, p.description, p.deadline, p.status,
	COALESCE(ARRAY(SELECT a.user_id::text FROM project_assignments a WHERE a.project_id = p.id ORDER BY a.created_at), '{}'),
	COALESCE(p.created_by::text, ''), p.attachment_url, p.created_at, p.updated_at`

func scanProject(row pgx.Row) (*entity.Project, error) {
	p := &entity.Project{}
	var status string
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Deadline, &status, &p.AssignedTo,
		&p.CreatedBy, &p.AttachmentURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	p.Status = entity.ProjectStatus(status)
	if p.AssignedTo == nil {
		p.AssignedTo = []string{}
	}
	return p, nil
}

func nullableUUID(id string) any {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	return id
}

func (r *ProjectRepository) Create(ctx context.Context, p *entity.Project) error {
	if p.Status == "" {
		p.Status = entity.ProjectOpen
	}
	row := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO projects (title, description, deadline, status, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text, created_at, updated_at
	`, p.Title, p.Description, p.Deadline, string(p.Status), nullableUUID(p.CreatedBy))
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return err
	}
	p.AssignedTo = []string{}
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	return scanProject(conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+projectColumns+`
		FROM projects p
		WHERE p.id = $1
	`, id))
}

func (r *ProjectRepository) ListByStatus(ctx context.Context, status entity.ProjectStatus) ([]entity.Project, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects p
		WHERE p.status = $1
		ORDER BY p.created_at
	`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *ProjectRepository) SetAttachmentURL(ctx context.Context, id, url string) (*entity.Project, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	res, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE projects SET attachment_url = $1, updated_at = now() WHERE id = $2
	`, url, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected() == 0 {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Claim locks the project row so concurrent claims serialize on it.
func (r *ProjectRepository) Claim(ctx context.Context, projectID, userID string) (*entity.Project, error) {
	if _, err := uuid.Parse(projectID); err != nil {
		return nil, repository.ErrNotFound
	}
	var out *entity.Project
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		q := conn(ctx, r.pool)

		var status string
		if err := q.QueryRow(ctx, `SELECT status FROM projects WHERE id = $1 FOR UPDATE`, projectID).Scan(&status); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repository.ErrNotFound
			}
			return err
		}

		var mine bool
		if err := q.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM project_assignments WHERE project_id = $1 AND user_id = $2)
		`, projectID, userID).Scan(&mine); err != nil {
			return err
		}
		if mine {
			return repository.ErrAlreadyClaimed
		}
		if entity.ProjectStatus(status) != entity.ProjectOpen {
			return repository.ErrProjectClosed
		}

		if _, err := q.Exec(ctx, `
			INSERT INTO project_assignments (project_id, user_id, status)
			VALUES ($1, $2, $3)
		`, projectID, userID, string(entity.TaskPending)); err != nil {
			if isUniqueViolation(err) {
				return repository.ErrAlreadyClaimed
			}
			return err
		}
		if _, err := q.Exec(ctx, `
			UPDATE projects SET status = $1, updated_at = now() WHERE id = $2
		`, string(entity.ProjectTaken), projectID); err != nil {
			return err
		}

		p, err := r.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type TaskRepository struct {
	pool *pgxpool.Pool
	tx   *Transactor
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool, tx: NewTransactor(pool)}
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]entity.Task, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return []entity.Task{}, nil
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+projectColumns+`, a.status, a.updated_at
		FROM project_assignments a
		JOIN projects p ON p.id = a.project_id
		WHERE a.user_id = $1
		ORDER BY a.created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Task, 0)
	for rows.Next() {
		var (
			p          entity.Project
			projStatus string
			taskStatus string
			updatedAt  time.Time
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Deadline, &projStatus, &p.AssignedTo,
			&p.CreatedBy, &p.AttachmentURL, &p.CreatedAt, &p.UpdatedAt, &taskStatus, &updatedAt); err != nil {
			return nil, err
		}
		p.Status = entity.ProjectStatus(projStatus)
		a := entity.Assignment{ProjectID: p.ID, UserID: userID, Status: entity.TaskStatus(taskStatus), UpdatedAt: updatedAt}
		out = append(out, entity.NewTask(&p, &a))
	}
	return out, rows.Err()
}

// UpdateStatus locks the assignment row; scored_at is stamped at most once.
func (r *TaskRepository) UpdateStatus(ctx context.Context, projectID, userID string, status entity.TaskStatus) (entity.StatusChange, error) {
	if _, err := uuid.Parse(projectID); err != nil {
		return entity.StatusChange{}, repository.ErrNotAssigned
	}
	if _, err := uuid.Parse(userID); err != nil {
		return entity.StatusChange{}, repository.ErrNotAssigned
	}
	var change entity.StatusChange
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		q := conn(ctx, r.pool)

		var (
			prev     string
			scoredAt *time.Time
		)
		err := q.QueryRow(ctx, `
			SELECT status, scored_at
			FROM project_assignments
			WHERE project_id = $1 AND user_id = $2
			FOR UPDATE
		`, projectID, userID).Scan(&prev, &scoredAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repository.ErrNotAssigned
			}
			return err
		}

		change = entity.StatusChange{Previous: entity.TaskStatus(prev), Current: status}
		change.FirstCompletion = status == entity.TaskCompleted && scoredAt == nil

		_, err = q.Exec(ctx, `
			UPDATE project_assignments
			SET status = $1,
			    scored_at = CASE WHEN $2::boolean THEN now() ELSE scored_at END,
			    updated_at = now()
			WHERE project_id = $3 AND user_id = $4
		`, string(status), change.FirstCompletion, projectID, userID)
		return err
	})
	if err != nil {
		return entity.StatusChange{}, err
	}
	return change, nil
}

var (
	_ repository.ProjectRepository = (*ProjectRepository)(nil)
	_ repository.TaskRepository    = (*TaskRepository)(nil)
)
