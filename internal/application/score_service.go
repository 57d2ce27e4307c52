package application

import (
	"context"
	"errors"
	"sort"

	"github.com/oksasatya/project-board/internal/domain/entity"
	"github.com/oksasatya/project-board/internal/domain/policy"
	repo "github.com/oksasatya/project-board/internal/domain/repository"
)

// UserScore is one row of the admin roster.
type UserScore struct {
	ID         string      `json:"_id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       entity.Role `json:"role"`
	TotalScore int         `json:"totalScore"`
}

// ScoreService derives and exposes per-user scores.
type ScoreService struct {
	Users repo.UserRepository
}

func NewScoreService(users repo.UserRepository) *ScoreService {
	return &ScoreService{Users: users}
}

// IncrementScore atomically adds amount to the user's total. Internal only: no
// route reaches it directly.
func (s *ScoreService) IncrementScore(ctx context.Context, userID string, amount int) error {
	if amount <= 0 {
		return ValidationError("score increment must be positive")
	}
	if err := s.Users.IncrementScore(ctx, userID, amount); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NotFoundError("User not found", err)
		}
		return InternalError(err)
	}
	scorePointsAwarded.Add(int64(amount))
	return nil
}

// GetUserScores lists every user with role "user" and their score. Admins only.
func (s *ScoreService) GetUserScores(ctx context.Context, p policy.Principal) ([]UserScore, error) {
	if err := policy.Authorize(p, policy.ScoreList); err != nil {
		return nil, AuthorizationError(err)
	}
	users, err := s.Users.ListByRole(ctx, entity.RoleUser)
	if err != nil {
		return nil, InternalError(err)
	}
	out := make([]UserScore, 0, len(users))
	for _, u := range users {
		out = append(out, UserScore{
			ID:         u.ID,
			Name:       u.Name,
			Email:      u.Email,
			Role:       u.Role,
			TotalScore: u.TotalScore,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
