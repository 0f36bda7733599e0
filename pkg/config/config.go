// pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	// Tenant directory sources (YAML file and/or env seed; DB when DATABASE_URL set)
	DirectoryFile string
	TenantClaim   string // claim carrying the tenant identifier

	// Backend orchestration service
	BackendBaseURL string
	SearchPageSize int
	SearchMaxPages int

	// Identity provider admin API
	IdentityAdminURL string
	IdentityCacheTTL time.Duration
	EnrichWorkers    int
	FetchWorkers     int

	// Redis & Postgres
	RedisURL    string
	DatabaseURL string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Env:              env("BRIDGE_ENV", "dev"),
		HTTPAddr:         env("BRIDGE_HTTP_ADDR", ":8080"),
		DirectoryFile:    env("TENANT_DIRECTORY_FILE", ""),
		TenantClaim:      env("TENANT_CLAIM", "tenant"),
		BackendBaseURL:   env("BACKEND_BASE_URL", "http://localhost:9090"),
		SearchPageSize:   envInt("SEARCH_PAGE_SIZE", 25),
		SearchMaxPages:   envInt("SEARCH_MAX_PAGES", 1000),
		IdentityAdminURL: env("IDENTITY_ADMIN_URL", ""),
		IdentityCacheTTL: envDur("IDENTITY_CACHE_TTL_SEC", 30) * time.Second,
		EnrichWorkers:    envInt("ENRICH_WORKERS", 8),
		FetchWorkers:     envInt("FETCH_WORKERS", 8),
		RedisURL:         env("REDIS_URL", ""),
		DatabaseURL:      env("DATABASE_URL", ""),
	}
	if cfg.DirectoryFile == "" && cfg.DatabaseURL == "" && os.Getenv("TENANT_SEED_JSON") == "" {
		log.Println("[WARN] no tenant directory source configured; resolver will reject every request")
	}
	return cfg
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return time.Duration(i)
		}
	}
	return time.Duration(def)
}
