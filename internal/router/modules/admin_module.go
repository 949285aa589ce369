package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/mexyapp-accounts/internal/interface/http"
	"github.com/oksasatya/mexyapp-accounts/internal/interface/middleware"
)

// AdminModule exposes membership changes to callers on private networks.
type AdminModule struct {
	Handler *handlers.AdminHandler
}

func NewAdminModule(h *handlers.AdminHandler) *AdminModule {
	return &AdminModule{Handler: h}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin/users/:id")
	admin.Use(middleware.PrivateNetworkOnly())
	{
		admin.POST("/roles", m.Handler.AssignRole)
		admin.DELETE("/roles/:role", m.Handler.RevokeRole)
		admin.POST("/block", m.Handler.Block)
		admin.POST("/unblock", m.Handler.Unblock)
		admin.PUT("/email", m.Handler.ChangeEmail)
		admin.PUT("/password", m.Handler.ChangePassword)
		admin.DELETE("", m.Handler.Delete)
	}
}
