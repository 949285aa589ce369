package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/mexyapp-accounts/internal/interface/http"
	"github.com/oksasatya/mexyapp-accounts/internal/interface/middleware"
)

// UserModule serves registration and lookups:
// POST /users, GET /users/search, GET /users/:id
type UserModule struct {
	Handler       *handlers.UserHandler
	Redis         *redis.Client
	RegisterLimit int
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client, registerLimit int) *UserModule {
	return &UserModule{Handler: h, Redis: rdb, RegisterLimit: registerLimit}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(m.Redis, m.RegisterLimit, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	readLimiter := middleware.RateLimit(m.Redis, 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	users := rg.Group("/users")
	users.POST("", registerLimiter, m.Handler.Register)
	users.GET("/search", readLimiter, m.Handler.Search)
	users.GET("/:id", readLimiter, m.Handler.Get)
}
