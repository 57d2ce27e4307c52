package repository

import (
	"context"

	"github.com/oksasatya/project-board/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ListByRole(ctx context.Context, role entity.Role) ([]entity.User, error)
	// IncrementScore adds amount to the user's total score in a single atomic update.
	IncrementScore(ctx context.Context, id string, amount int) error
}
