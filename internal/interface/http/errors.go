package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mexyapp-accounts/internal/application"
	"github.com/oksasatya/mexyapp-accounts/internal/domain/entity"
	"github.com/oksasatya/mexyapp-accounts/pkg/response"
	"github.com/oksasatya/mexyapp-accounts/pkg/validation"
)

// writeError is the only place service errors become status codes.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var fieldErr *application.FieldError
	var invalid *entity.ValidationError

	switch {
	case errors.As(err, &fieldErr):
		response.Error[any](c, http.StatusBadRequest, "missing required field", validation.Missing(fieldErr.Fields))
	case errors.As(err, &invalid):
		response.Error[any](c, http.StatusBadRequest, "invalid field", map[string]string{invalid.Field: invalid.Err.Error()})
	case errors.Is(err, entity.ErrUnknownRole):
		response.Error[any](c, http.StatusBadRequest, "unknown role", map[string]string{"role": err.Error()})
	case errors.Is(err, entity.ErrBaseRoleRequired):
		response.Error[any](c, http.StatusConflict, "base role cannot be removed", nil)
	case errors.Is(err, application.ErrDuplicateEmail):
		response.Error[any](c, http.StatusConflict, "email already registered", nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
	default:
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.FullPath(),
				"real_ip":    c.GetString("real_ip"),
			}).Error("request failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}
