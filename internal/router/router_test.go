package router_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mexyapp-accounts/config"
	"github.com/oksasatya/mexyapp-accounts/internal/container"
	"github.com/oksasatya/mexyapp-accounts/internal/infrastructure/memory"
	"github.com/oksasatya/mexyapp-accounts/internal/interface/middleware"
	"github.com/oksasatya/mexyapp-accounts/internal/router"
	"github.com/oksasatya/mexyapp-accounts/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Init()
	os.Exit(m.Run())
}

func newEngine(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetRedis(nil)
	container.SetES(nil)
	container.SetRabbitPub(nil)
	container.SetUserRepo(memory.NewUserRepository())

	e := gin.New()
	if err := e.SetTrustedProxies(nil); err != nil {
		t.Fatalf("trusted proxies: %v", err)
	}
	e.Use(middleware.RequestID(), middleware.Metrics())
	reg := router.NewRegistry(e)
	reg.Use(middleware.RealIP())
	router.InitModules(reg)
	reg.RegisterAll()
	return e
}

func serve(e *gin.Engine, method, url, remote, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if remote != "" {
		req.RemoteAddr = remote
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestInitModules_PublicRoutes(t *testing.T) {
	e := newEngine(t, &config.Config{BcryptCost: 4, MetricsEnabled: true})

	w := serve(e, http.MethodPost, "/api/users", "", `{"username":"ana","email":"Ana@Shop.com","password":"secret123"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d body %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing request id header")
	}
	if w := serve(e, http.MethodGet, "/api/health/db", "", ""); w.Code != http.StatusOK {
		t.Errorf("health status = %d", w.Code)
	}
	if w := serve(e, http.MethodGet, "/metrics", "", ""); w.Code != http.StatusOK {
		t.Errorf("metrics status = %d", w.Code)
	} else if !bytes.Contains(w.Body.Bytes(), []byte("http_requests_total")) {
		t.Error("metrics body lacks the request counter")
	}
}

func TestInitModules_AdminRoutesAreOptIn(t *testing.T) {
	e := newEngine(t, &config.Config{BcryptCost: 4})
	if w := serve(e, http.MethodPost, "/api/admin/users/x/block", "127.0.0.1:5000", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 while disabled", w.Code)
	}
	if w := serve(e, http.MethodGet, "/metrics", "", ""); w.Code != http.StatusNotFound {
		t.Errorf("metrics status = %d, want 404 while disabled", w.Code)
	}
}

func TestInitModules_AdminRoutesArePrivate(t *testing.T) {
	e := newEngine(t, &config.Config{BcryptCost: 4, AdminRoutesEnabled: true})

	if w := serve(e, http.MethodPost, "/api/admin/users/x/block", "203.0.113.9:5000", ""); w.Code != http.StatusForbidden {
		t.Errorf("public caller status = %d, want 403", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/users/x/block", nil)
	req.RemoteAddr = "203.0.113.9:5000"
	req.Header.Set("X-Forwarded-For", "10.0.0.5")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("spoofed forwarding header status = %d, want 403", w.Code)
	}

	if w := serve(e, http.MethodPost, "/api/admin/users/x/block", "10.1.2.3:5000", ""); w.Code != http.StatusNotFound {
		t.Errorf("private caller status = %d, want 404 for an unknown user", w.Code)
	}
}
