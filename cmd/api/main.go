// @title        User Service API
// @version      1.0
// @description  User and role management with a read-through user cache and bearer-token authentication.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/accessdesk/user-service/internal/api"
	"github.com/accessdesk/user-service/internal/core/service"
	"github.com/accessdesk/user-service/internal/infrastructure/config"
	"github.com/accessdesk/user-service/internal/infrastructure/db"
	"github.com/accessdesk/user-service/internal/infrastructure/db/redis"
	"github.com/accessdesk/user-service/internal/infrastructure/security"
	"github.com/accessdesk/user-service/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootstrap := logger.New(logger.Options{Pretty: true, Output: os.Stderr})
		bootstrap.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "user-service",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Persistence ---
	store, err := db.Open(ctx, cfg, logger.Component("db"))
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("Failed to close store")
		}
	}()

	// --- Cache (best effort: the service runs without it) ---
	rdb := redis.NewClient(redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Timeout:  cfg.Redis.Timeout,
	})
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close redis client")
		}
	}()
	cache := redis.NewCache(rdb, cfg.Redis.TTL, cfg.Redis.Timeout)
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unreachable, user reads will bypass the cache")
	} else {
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
	}

	// --- Services ---
	hasher := security.NewBcryptHasher(0)
	tokens := security.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)

	roleService := service.NewRoleService(store.Roles(), logger.Component("roles"))
	userService := service.NewUserService(store.Users(), store.Roles(), cache, hasher, logger.Component("users"))
	authService := service.NewAuthService(store.Users(), store.Roles(), cache, hasher, tokens, logger.Component("auth"))

	if _, err := roleService.EnsureRole(ctx, cfg.AdminRole, "bootstrap administrator role"); err != nil {
		return err
	}

	e := api.NewRouter(api.Deps{
		Users:     userService,
		Roles:     roleService,
		Auth:      authService,
		Tokens:    tokens,
		AdminRole: cfg.AdminRole,
		Store:     store,
		Cache:     cache,
		Log:       logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("store", string(store.Kind())).
			Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("Server exited")
	return nil
}
