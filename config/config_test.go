package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"STORAGE_DRIVER", "DB_RETRY_ATTEMPTS", "USER_CACHE_TTL", "ADMIN_ROUTES_ENABLED", "RABBITMQ_USER_EVENTS_QUEUE"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.StorageDriver != StoragePostgres {
		t.Errorf("StorageDriver = %q", cfg.StorageDriver)
	}
	if cfg.DBRetryAttempts != 8 || cfg.DBRetryMaxDelay != 8*time.Second {
		t.Errorf("retry = %d/%v", cfg.DBRetryAttempts, cfg.DBRetryMaxDelay)
	}
	if cfg.UserCacheTTL != 5*time.Minute {
		t.Errorf("UserCacheTTL = %v", cfg.UserCacheTTL)
	}
	if cfg.AdminRoutesEnabled {
		t.Error("admin routes should be off by default")
	}
	if cfg.RabbitMQUserEventsQueue != "user_events" {
		t.Errorf("queue = %q", cfg.RabbitMQUserEventsQueue)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("DB_RETRY_ATTEMPTS", "3")
	t.Setenv("DB_RETRY_MAX_DELAY", "250ms")
	t.Setenv("ADMIN_ROUTES_ENABLED", "true")
	t.Setenv("REGISTER_RATE_LIMIT", "0")

	cfg := Load()
	if cfg.StorageDriver != StorageMemory {
		t.Errorf("StorageDriver = %q", cfg.StorageDriver)
	}
	if cfg.DBRetryAttempts != 3 || cfg.DBRetryMaxDelay != 250*time.Millisecond {
		t.Errorf("retry = %d/%v", cfg.DBRetryAttempts, cfg.DBRetryMaxDelay)
	}
	if !cfg.AdminRoutesEnabled || cfg.RegisterRateLimit != 0 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_InvalidValuesKeepDefaults(t *testing.T) {
	t.Setenv("DB_RETRY_ATTEMPTS", "many")
	t.Setenv("USER_CACHE_TTL", "forever")
	t.Setenv("METRICS_ENABLED", "perhaps")

	cfg := Load()
	if cfg.DBRetryAttempts != 8 || cfg.UserCacheTTL != 5*time.Minute || !cfg.MetricsEnabled {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestPostgresDSN(t *testing.T) {
	c := &Config{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5432", DBName: "accounts", DBSSLMode: "disable"}
	if got := c.PostgresDSN(); got != "postgres://u:p@db:5432/accounts?sslmode=disable" {
		t.Errorf("dsn = %q", got)
	}
}

func TestSplitList(t *testing.T) {
	c := &Config{CORSAllowedOrigins: " https://a.example , ,https://b.example"}
	if got := c.CORSOrigins(); !reflect.DeepEqual(got, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("origins = %v", got)
	}
	if got := (&Config{}).ESAddrs(); len(got) != 0 {
		t.Errorf("addrs = %v", got)
	}
}
