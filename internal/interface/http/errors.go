package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-board/internal/application"
	"github.com/oksasatya/project-board/pkg/response"
	"github.com/oksasatya/project-board/pkg/validation"
)

func statusFor(kind application.Kind) int {
	switch kind {
	case application.KindValidation:
		return http.StatusBadRequest
	case application.KindAuthentication:
		return http.StatusUnauthorized
	case application.KindAuthorization:
		return http.StatusForbidden
	case application.KindNotFound:
		return http.StatusNotFound
	case application.KindConflict, application.KindAlreadyClaimed, application.KindProjectClosed:
		return http.StatusConflict
	case application.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the envelope for err. Internal errors are logged
// and their cause is never sent to the client.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	kind := application.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Error("request failed")
	}
	response.Error[any](c, status, application.MessageOf(err), kind.String())
}

func writeBindError(c *gin.Context, err error) {
	details := validation.ToDetails(err)
	response.Error[any](c, http.StatusBadRequest, validation.Summary(details), details)
}
