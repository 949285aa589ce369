package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mexyapp-accounts/config"
	"github.com/oksasatya/mexyapp-accounts/internal/container"
	"github.com/oksasatya/mexyapp-accounts/internal/infrastructure/search"
	"github.com/oksasatya/mexyapp-accounts/internal/interface/middleware"
	"github.com/oksasatya/mexyapp-accounts/internal/router"
	"github.com/oksasatya/mexyapp-accounts/pkg/helpers"
	"github.com/oksasatya/mexyapp-accounts/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openUserRepo(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("user storage: %v", err)
	}
	defer closeRepo()

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetUserRepo(repo)
	connectOptional(ctx, cfg, logger)
	defer closeOptional()

	r := gin.New()
	r.Use(gin.Recovery())
	if err := r.SetTrustedProxies(cfg.TrustedProxies()); err != nil {
		logger.Fatalf("trusted proxies: %v", err)
	}
	r.Use(middleware.RequestID())
	if cfg.MetricsEnabled {
		r.Use(middleware.Metrics())
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins(),
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "Location", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	reg.Use(middleware.RealIP())
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// connectOptional dials redis, elasticsearch and rabbitmq when configured.
// A dependency that fails to connect is logged and left out; the service
// runs without its cache, search or events.
func connectOptional(ctx context.Context, cfg *config.Config, logger *logrus.Logger) {
	if cfg.RedisAddr != "" {
		rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable; cache and rate limits disabled")
		} else {
			container.SetRedis(rdb)
		}
	}

	if cfg.SearchEnabled {
		es, err := helpers.NewESClient(ctx, cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err == nil {
			err = search.NewUserIndex(es, cfg.ESUsersIndex).EnsureIndex(ctx)
		}
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable; search disabled")
		} else {
			container.SetES(es)
		}
	}

	if cfg.EventsEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQUserEventsQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; user events disabled")
		} else {
			container.SetRabbitPub(pub)
		}
	}
}

func closeOptional() {
	if rdb := container.GetRedis(); rdb != nil {
		_ = rdb.Close()
	}
	container.GetRabbitPub().Close()
}
