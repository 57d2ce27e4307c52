package application

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-board/internal/domain/entity"
	"github.com/oksasatya/project-board/internal/domain/policy"
	repo "github.com/oksasatya/project-board/internal/domain/repository"
	"github.com/oksasatya/project-board/pkg/helpers"
)

// MinPasswordLength is enforced on registration.
const MinPasswordLength = 6

// IdentityService registers users, issues bearer tokens and resolves them back
// to a principal.
type IdentityService struct {
	Users    repo.UserRepository
	Sessions repo.SessionRepository
	JWT      *helpers.JWTManager
	Logger   *logrus.Logger
	Notifier *Notifier
	// HashCost overrides the bcrypt cost; zero means bcrypt.DefaultCost.
	HashCost int
}

func NewIdentityService(users repo.UserRepository, sessions repo.SessionRepository, jwt *helpers.JWTManager, logger *logrus.Logger, notifier *Notifier) *IdentityService {
	return &IdentityService{
		Users:    users,
		Sessions: sessions,
		JWT:      jwt,
		Logger:   logger,
		Notifier: notifier,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type LoginResult struct {
	Token     string      `json:"token"`
	Role      entity.Role `json:"role"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with a bcrypt-hashed password. No token is issued.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	role := entity.Role(strings.TrimSpace(in.Role))

	switch {
	case name == "":
		return nil, ValidationError("name is required")
	case email == "":
		return nil, ValidationError("email is required")
	case in.Password == "":
		return nil, ValidationError("password is required")
	case !role.Valid():
		return nil, ValidationError("role must be one of: user, admin")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ValidationError("email must be a valid email")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, ValidationError("password must be at least 6 characters long")
	}

	var (
		hash string
		err  error
	)
	if s.HashCost > 0 {
		hash, err = helpers.HashPasswordCost(in.Password, s.HashCost)
	} else {
		hash, err = helpers.HashPassword(in.Password)
	}
	if err != nil {
		return nil, InternalError(err)
	}

	u := &entity.User{Name: name, Email: email, Password: hash, Role: role}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ConflictError(MsgEmailRegistered, err)
		}
		return nil, InternalError(err)
	}
	registrationsTotal.Add(1)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user registered")
	}
	s.Notifier.Welcome(ctx, u)
	return u, nil
}

// Login validates credentials and issues a token bound to the user's id and role.
// Unknown email and wrong password produce the same error.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	invalid := &Error{Kind: KindAuthentication, Message: MsgInvalidCreds}

	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		loginFailuresTotal.Add(1)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, invalid
		}
		return nil, InternalError(err)
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		loginFailuresTotal.Add(1)
		return nil, invalid
	}

	sid := uuid.NewString()
	token, exp, err := s.JWT.GenerateAccessToken(u.ID, string(u.Role), sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return nil, InternalError(err)
	}

	if s.Sessions != nil {
		sess := repo.Session{
			UserID:    u.ID,
			SessionID: sid,
			Email:     u.Email,
			Name:      u.Name,
			Role:      string(u.Role),
			CreatedAt: time.Now().UTC(),
		}
		if err := s.Sessions.Save(ctx, sess, time.Until(exp)); err != nil {
			return nil, InternalError(err)
		}
	}
	loginsTotal.Add(1)
	return &LoginResult{Token: token, Role: u.Role, ExpiresAt: exp}, nil
}

// Authenticate resolves a bearer token to a principal. The token must verify,
// be unexpired, and (when sessions are tracked) match the user's live session.
func (s *IdentityService) Authenticate(ctx context.Context, token string) (policy.Principal, error) {
	claims, err := s.JWT.ParseAccessToken(token)
	if err != nil {
		return policy.Principal{}, AuthenticationError(err)
	}
	role := entity.Role(claims.Role)
	if !role.Valid() {
		return policy.Principal{}, AuthenticationError(errors.New("unknown role in token"))
	}
	if s.Sessions != nil {
		sess, err := s.Sessions.Get(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return policy.Principal{}, AuthenticationError(errors.New("session not found"))
			}
			return policy.Principal{}, InternalError(err)
		}
		if sess.SessionID != claims.SessionID {
			return policy.Principal{}, AuthenticationError(errors.New("session superseded"))
		}
	}
	return policy.Principal{UserID: claims.UserID, Role: role, SessionID: claims.SessionID}, nil
}

// ResolveRole returns the role embedded in a valid token.
func (s *IdentityService) ResolveRole(ctx context.Context, token string) (entity.Role, error) {
	p, err := s.Authenticate(ctx, token)
	if err != nil {
		return "", err
	}
	return p.Role, nil
}

// Logout revokes the caller's session so the token stops working before expiry.
func (s *IdentityService) Logout(ctx context.Context, p policy.Principal) error {
	if err := policy.Authorize(p, policy.SessionLogout); err != nil {
		return AuthorizationError(err)
	}
	if s.Sessions == nil {
		return nil
	}
	if err := s.Sessions.Delete(ctx, p.UserID); err != nil {
		return InternalError(err)
	}
	return nil
}

// Me returns the caller's own profile.
func (s *IdentityService) Me(ctx context.Context, p policy.Principal) (*entity.User, error) {
	if err := policy.Authorize(p, policy.SessionMe); err != nil {
		return nil, AuthorizationError(err)
	}
	u, err := s.Users.GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NotFoundError("User not found", err)
		}
		return nil, InternalError(err)
	}
	return u, nil
}
