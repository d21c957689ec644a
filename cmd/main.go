package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sagun15/edfi-apis-sub000/internal/auth"
	"github.com/Sagun15/edfi-apis-sub000/internal/config"
	"github.com/Sagun15/edfi-apis-sub000/internal/db"
	"github.com/Sagun15/edfi-apis-sub000/internal/logger"
	"github.com/Sagun15/edfi-apis-sub000/internal/model"
	"github.com/Sagun15/edfi-apis-sub000/internal/resolver"
	"github.com/Sagun15/edfi-apis-sub000/internal/router"

	"github.com/spf13/pflag"
)

func main() {
	debugFlag := pflag.BoolP("debug", "d", false, "enable debug logging")
	migrateOnly := pflag.Bool("migrate", false, "apply database migrations and exit")
	pflag.Parse()

	if err := logger.Init("."); err != nil {
		fmt.Fprintf(os.Stderr, "log init failed: %v\n", err)
		os.Exit(1)
	}
	logger.SetDebug(*debugFlag)
	cfg := config.LoadConfig()

	// schema
	if *migrateOnly || cfg.AutoMigrate {
		if err := db.Migrate(cfg.PostgresDSN, cfg.MigrationsDir); err != nil {
			logger.Error("migrate_failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		if *migrateOnly {
			return
		}
	}

	// PostgreSQL
	if err := db.InitPostgres(cfg.PostgresDSN); err != nil {
		logger.Error("postgres_init_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer db.ClosePostgres()
	logger.Info("postgres_connected", nil)

	// Redis, optional
	db.InitRedis(cfg.RedisAddr)
	if db.RDB != nil {
		if err := db.PingRedis(context.Background()); err != nil {
			logger.Warn("redis_unavailable", map[string]any{"addr": cfg.RedisAddr, "error": err.Error()})
		} else {
			logger.Info("redis_connected", map[string]any{"addr": cfg.RedisAddr})
		}
	}

	// resource definitions
	if err := model.InitRegistry(cfg.ResourcesDir); err != nil {
		logger.Error("registry_init_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	resolver.Configure(resolver.Options{
		DefaultLimit:             cfg.Paging.DefaultLimit,
		MaxLimit:                 cfg.Paging.MaxLimit,
		CountCacheTTLSec:         cfg.Cache.CountTTLSec,
		PredicateCacheMaxEntries: cfg.Cache.PredicateMaxEntries,
	})

	var validator *auth.JWTValidator
	if cfg.Auth.Enabled {
		v, err := auth.NewJWTValidator(cfg.Auth.JWT)
		if err != nil {
			logger.Error("auth_init_failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		validator = v
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.InitRoutes(cfg, validator),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server_start", map[string]any{"port": cfg.Port, "auth": cfg.Auth.Enabled})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server_error", map[string]any{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", map[string]any{"error": err.Error()})
	}
	logger.Info("server_stopped", nil)
}
