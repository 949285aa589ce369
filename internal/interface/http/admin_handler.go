package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mexyapp-accounts/internal/application"
	"github.com/oksasatya/mexyapp-accounts/internal/domain/entity"
	"github.com/oksasatya/mexyapp-accounts/pkg/response"
	"github.com/oksasatya/mexyapp-accounts/pkg/validation"
)

// AdminHandler exposes membership changes on existing users.
type AdminHandler struct {
	Membership *application.MembershipService
	Logger     *logrus.Logger
}

func NewAdminHandler(svc *application.MembershipService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Membership: svc, Logger: logger}
}

type roleRequest struct {
	Role string `json:"role" binding:"required,role"`
}

type emailRequest struct {
	Email string `json:"email" binding:"max=256"`
}

type passwordRequest struct {
	Password string `json:"password" binding:"maxbytes=72"`
}

func (h *AdminHandler) AssignRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	h.reply(c, "role assigned")(h.Membership.AssignRole(c.Request.Context(), c.Param("id"), entity.Role(req.Role)))
}

func (h *AdminHandler) RevokeRole(c *gin.Context) {
	role, err := entity.ParseRole(c.Param("role"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.reply(c, "role revoked")(h.Membership.RevokeRole(c.Request.Context(), c.Param("id"), role))
}

func (h *AdminHandler) Block(c *gin.Context) {
	h.reply(c, "user blocked")(h.Membership.Block(c.Request.Context(), c.Param("id")))
}

func (h *AdminHandler) Unblock(c *gin.Context) {
	h.reply(c, "user unblocked")(h.Membership.Unblock(c.Request.Context(), c.Param("id")))
}

func (h *AdminHandler) ChangeEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	h.reply(c, "email changed")(h.Membership.ChangeEmail(c.Request.Context(), c.Param("id"), req.Email))
}

func (h *AdminHandler) ChangePassword(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	h.reply(c, "password changed")(h.Membership.ChangePassword(c.Request.Context(), c.Param("id"), req.Password))
}

func (h *AdminHandler) Delete(c *gin.Context) {
	if err := h.Membership.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) reply(c *gin.Context, message string) func(*application.UserView, error) {
	return func(view *application.UserView, err error) {
		if err != nil {
			writeError(c, h.Logger, err)
			return
		}
		response.Success(c, http.StatusOK, view, message, nil)
	}
}
