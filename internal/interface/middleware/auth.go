package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/project-board/internal/application"
	"github.com/oksasatya/project-board/internal/domain/policy"
	"github.com/oksasatya/project-board/pkg/response"
)

const (
	CtxPrincipalKey = "principal"
	CtxUserIDKey    = "userID"
)

// Authenticator resolves a bearer token; *application.IdentityService satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (policy.Principal, error)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// Auth validates the bearer token and the live session behind it, then stores
// the principal and userID in the Gin context. Authorization is left to the
// services.
func Auth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}
		p, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			status := http.StatusUnauthorized
			if application.KindOf(err) == application.KindInternal {
				status = http.StatusInternalServerError
			}
			response.Error[any](c, status, application.MessageOf(err), nil)
			return
		}
		c.Set(CtxPrincipalKey, p)
		c.Set(CtxUserIDKey, p.UserID)
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by Auth, or the zero value
// (which the policy table denies).
func PrincipalFrom(c *gin.Context) policy.Principal {
	if v, ok := c.Get(CtxPrincipalKey); ok {
		if p, ok := v.(policy.Principal); ok {
			return p
		}
	}
	return policy.Principal{}
}
