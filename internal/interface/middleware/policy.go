package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/project-board/internal/application"
	"github.com/oksasatya/project-board/internal/domain/policy"
	"github.com/oksasatya/project-board/pkg/response"
)

// Require rejects callers whose role may not perform op before the handler
// reads the body. Mount it after Auth.
func Require(op policy.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := policy.Authorize(PrincipalFrom(c), op); err != nil {
			appErr := application.AuthorizationError(err)
			response.Error[any](c, http.StatusForbidden, appErr.Message, application.KindAuthorization.String())
			return
		}
		c.Next()
	}
}
