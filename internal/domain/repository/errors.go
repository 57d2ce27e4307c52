package repository

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrAlreadyClaimed = errors.New("project already claimed by user")
	ErrProjectClosed  = errors.New("project is no longer open")
	ErrNotAssigned    = errors.New("user is not assigned to project")
)
