package application

import (
	"errors"
	"fmt"
)

// Kind classifies an application error; the HTTP layer maps kinds to status codes.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindAlreadyClaimed
	KindProjectClosed
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAlreadyClaimed:
		return "already_claimed"
	case KindProjectClosed:
		return "project_closed"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error is the error type returned by every service operation.
// Message is safe to show to the caller; Err carries the cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on kind: errors.Is(err, &Error{Kind: KindNotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Messages the board client compares against verbatim.
const (
	MsgRegistered      = "User registered successfully"
	MsgProjectCreated  = "Project created successfully"
	MsgProjectTaken    = "Project taken successfully"
	MsgAlreadyTaken    = "You have already taken this project."
	MsgProjectClosed   = "This project has already been taken."
	MsgStatusUpdated   = "Status updated successfully"
	MsgLoggedOut       = "Logged out successfully"
	MsgInvalidCreds    = "Invalid email or password"
	MsgInvalidToken    = "Invalid or expired token"
	MsgForbidden       = "You are not allowed to perform this action"
	MsgProjectNotFound = "Project not found"
	MsgNotYourTask     = "You are not assigned to this project"
	MsgEmailRegistered = "Email is already registered"
	MsgInternal        = "Internal server error"
	MsgSearchDisabled  = "Search is not configured"
	MsgStorageDisabled = "File storage is not configured"
)

func ValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func AuthenticationError(err error) *Error {
	return &Error{Kind: KindAuthentication, Message: MsgInvalidToken, Err: err}
}

func AuthorizationError(err error) *Error {
	return &Error{Kind: KindAuthorization, Message: MsgForbidden, Err: err}
}

func NotFoundError(msg string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Err: err}
}

func ConflictError(msg string, err error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: err}
}

func AlreadyClaimedError(err error) *Error {
	return &Error{Kind: KindAlreadyClaimed, Message: MsgAlreadyTaken, Err: err}
}

func ProjectClosedError(err error) *Error {
	return &Error{Kind: KindProjectClosed, Message: MsgProjectClosed, Err: err}
}

func UnavailableError(msg string) *Error {
	return &Error{Kind: KindUnavailable, Message: msg}
}

func InternalError(err error) *Error {
	return &Error{Kind: KindInternal, Message: MsgInternal, Err: err}
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return MsgInternal
}
