// cmd/bridge-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskbridge/internal/backend"
	"taskbridge/internal/identity"
	"taskbridge/internal/resolver"
	"taskbridge/internal/tasklist"
	"taskbridge/pkg/config"
	"taskbridge/pkg/db"
	"taskbridge/pkg/directory"
	"taskbridge/pkg/logger"
	"taskbridge/pkg/middleware"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)

	pool := db.MustPostgres(context.Background(), cfg.DatabaseURL, log)
	rdb := db.MustRedis(context.Background(), cfg.RedisURL, log)

	var descs []directory.Descriptor
	if seeded, err := directory.FromEnv(log); err != nil {
		log.Fatalw("tenant seed", "err", err)
	} else {
		descs = append(descs, seeded...)
	}
	if cfg.DirectoryFile != "" {
		fromFile, err := directory.FromYAMLFile(cfg.DirectoryFile)
		if err != nil {
			log.Fatalw("directory file", "err", err)
		}
		descs = append(descs, fromFile...)
	}
	if pool != nil {
		ctx := context.Background()
		if err := directory.EnsureSchema(ctx, pool); err != nil {
			log.Fatalw("schema", "err", err)
		}
		if err := directory.Seed(ctx, pool, descs); err != nil {
			log.Warnw("seed", "err", err)
		}
		fromDB, err := directory.FromPostgres(ctx, pool, log)
		if err != nil {
			log.Fatalw("directory load", "err", err)
		}
		descs = fromDB
	}
	dir, err := directory.New(descs)
	if err != nil {
		log.Fatalw("tenant directory", "err", err)
	}
	log.Infow("tenant directory ready", "tenants", dir.Len())

	backends := backend.NewRegistry(dir, cfg.BackendBaseURL)
	adapters := identity.NewRegistry()
	if err := adapters.Build(dir, cfg.IdentityAdminURL, rdb, cfg.IdentityCacheTTL); err != nil {
		log.Fatalw("identity adapters", "err", err)
	}

	res := resolver.New(dir, cfg.TenantClaim)
	val := resolver.NewValidator(backends)
	svc := tasklist.New(res, val, backends, adapters, cfg, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(log))
	r.Use(middleware.Tracing())
	r.Use(middleware.BearerAuth(svc))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("ok")) })
	tasklist.Routes(r, svc)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Infow("bridge-service listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	fmt.Println("bridge-service stopped")
}
