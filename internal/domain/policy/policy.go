// Package policy is the single authorization table for the API. Every
// operation declares the roles allowed to perform it; anything not listed is
// denied.
package policy

import (
	"errors"
	"fmt"

	"github.com/oksasatya/project-board/internal/domain/entity"
)

// ErrDenied is returned when a principal may not perform an operation.
var ErrDenied = errors.New("access denied")

// Operation names an action guarded by the policy table.
type Operation string

const (
	ProjectList   Operation = "project:list"
	ProjectGet    Operation = "project:get"
	ProjectSearch Operation = "project:search"
	ProjectCreate Operation = "project:create"
	ProjectAttach Operation = "project:attach"
	ProjectClaim  Operation = "project:claim"
	TaskList      Operation = "task:list"
	TaskUpdate    Operation = "task:update_status"
	ScoreList     Operation = "score:list"
	SessionMe     Operation = "session:me"
	SessionLogout Operation = "session:logout"
)

// Principal is the authenticated caller resolved from a bearer token.
type Principal struct {
	UserID    string
	Role      entity.Role
	SessionID string
}

var (
	anyRole   = []entity.Role{entity.RoleUser, entity.RoleAdmin}
	userOnly  = []entity.Role{entity.RoleUser}
	adminOnly = []entity.Role{entity.RoleAdmin}
)

var table = map[Operation][]entity.Role{
	ProjectList:   anyRole,
	ProjectGet:    anyRole,
	ProjectSearch: anyRole,
	ProjectCreate: adminOnly,
	ProjectAttach: adminOnly,
	ProjectClaim:  userOnly,
	// Assignment is checked by the task repository under the row lock.
	TaskList:      anyRole,
	TaskUpdate:    userOnly,
	ScoreList:     adminOnly,
	SessionMe:     anyRole,
	SessionLogout: anyRole,
}

// Authorize returns nil when p may perform op, and an error wrapping ErrDenied otherwise.
func Authorize(p Principal, op Operation) error {
	if p.UserID == "" {
		return fmt.Errorf("%w: anonymous caller for %s", ErrDenied, op)
	}
	for _, r := range table[op] {
		if r == p.Role {
			return nil
		}
	}
	return fmt.Errorf("%w: role %q cannot %s", ErrDenied, p.Role, op)
}
