package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mexyapp-accounts/internal/application"
	"github.com/oksasatya/mexyapp-accounts/pkg/response"
)

type HealthHandler struct {
	Query  *application.QueryService
	Logger *logrus.Logger
}

func NewHealthHandler(query *application.QueryService, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{Query: query, Logger: logger}
}

// DB reports whether the user store answers within two seconds.
func (h *HealthHandler) DB(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.Query.Ping(ctx); err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("storage ping failed")
		}
		response.Error[any](c, http.StatusServiceUnavailable, "storage unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"db": "ok"}, "healthy", nil)
}
