package repository

import (
	"context"
	"time"
)

// Session is the server-side record behind a bearer token.
type Session struct {
	UserID    string
	SessionID string
	Email     string
	Name      string
	Role      string
	CreatedAt time.Time
}

// SessionRepository stores one active session per user.
type SessionRepository interface {
	Save(ctx context.Context, s Session, ttl time.Duration) error
	// Get returns ErrNotFound when no session exists for userID.
	Get(ctx context.Context, userID string) (*Session, error)
	Delete(ctx context.Context, userID string) error
}
