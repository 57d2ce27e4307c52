package policy

import (
	"errors"
	"testing"

	"github.com/oksasatya/project-board/internal/domain/entity"
)

func TestAuthorize(t *testing.T) {
	user := Principal{UserID: "u1", Role: entity.RoleUser}
	admin := Principal{UserID: "a1", Role: entity.RoleAdmin}

	tests := []struct {
		name    string
		p       Principal
		op      Operation
		allowed bool
	}{
		{"user lists projects", user, ProjectList, true},
		{"admin lists projects", admin, ProjectList, true},
		{"user claims", user, ProjectClaim, true},
		{"admin claims", admin, ProjectClaim, false},
		{"user creates", user, ProjectCreate, false},
		{"admin creates", admin, ProjectCreate, true},
		{"user reads scores", user, ScoreList, false},
		{"admin reads scores", admin, ScoreList, true},
		{"admin updates task", admin, TaskUpdate, false},
		{"unknown operation", admin, Operation("project:delete"), false},
		{"anonymous", Principal{Role: entity.RoleAdmin}, ProjectList, false},
		{"forged role", Principal{UserID: "x", Role: entity.Role("root")}, ProjectList, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.p, tt.op)
			if tt.allowed && err != nil {
				t.Fatalf("Authorize: %v", err)
			}
			if !tt.allowed && !errors.Is(err, ErrDenied) {
				t.Fatalf("Authorize err = %v, want ErrDenied", err)
			}
		})
	}
}
