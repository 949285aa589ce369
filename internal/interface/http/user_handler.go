package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mexyapp-accounts/internal/application"
	"github.com/oksasatya/mexyapp-accounts/pkg/response"
	"github.com/oksasatya/mexyapp-accounts/pkg/validation"
)

type UserHandler struct {
	Registration *application.RegistrationService
	Query        *application.QueryService
	Logger       *logrus.Logger
}

func NewUserHandler(reg *application.RegistrationService, query *application.QueryService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Registration: reg, Query: query, Logger: logger}
}

// Presence is checked by the registration service so that every missing
// field is reported together; binding only guards the column widths.
type registerRequest struct {
	Username string `json:"username" binding:"max=100"`
	Email    string `json:"email" binding:"max=256"`
	Password string `json:"password" binding:"maxbytes=72"`
}

type searchQuery struct {
	Q    string `form:"q" binding:"required"`
	Size int    `form:"size" binding:"omitempty,min=1,max=50"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	view, err := h.Registration.Register(c.Request.Context(), application.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.Header("Location", "/api/users/"+view.ID)
	response.Success(c, http.StatusCreated, view, "user registered", nil)
}

func (h *UserHandler) Get(c *gin.Context) {
	view, err := h.Query.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, view, "user", nil)
}

func (h *UserHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	users, err := h.Query.Search(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, users, "users", map[string]any{"count": len(users)})
}
