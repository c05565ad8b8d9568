package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/accessdesk/user-service/docs"
	"github.com/accessdesk/user-service/internal/api/handler"
	"github.com/accessdesk/user-service/internal/api/middleware"
	"github.com/accessdesk/user-service/internal/core/ports"
)

// Deps is everything the HTTP layer needs from the composition root.
type Deps struct {
	Users  ports.UserService
	Roles  ports.RoleService
	Auth   ports.AuthService
	Tokens ports.TokenVerifier

	// AdminRole is the role name allowed to delete users and manage roles.
	AdminRole string

	Store handler.Pinger
	Cache handler.Pinger

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// HTTP metrics live in a per-router registry so building several routers
	// (tests) never double-registers; /metrics merges it with the default one.
	registry := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "users_http",
		Registerer: registry,
	}))

	// --- Dependencies ---
	authn := middleware.Auth(d.Tokens)
	adminOnly := middleware.RBAC(d.AdminRole)

	userHandler := handler.NewUserHandler(d.Users, d.AdminRole)
	roleHandler := handler.NewRoleHandler(d.Roles)
	authHandler := handler.NewAuthHandler(d.Auth)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)

	// --- Users ---
	e.POST("/users", userHandler.Create)
	e.GET("/users", userHandler.List, authn)
	e.GET("/users/:id", userHandler.Get, authn)
	e.PUT("/users/:id", userHandler.Update, authn)
	e.DELETE("/users/:id", userHandler.Delete, authn, adminOnly)

	// --- Roles ---
	e.GET("/roles", roleHandler.List)
	e.GET("/roles/:id", roleHandler.Get)
	e.POST("/roles", roleHandler.Create, authn, adminOnly)
	e.PUT("/roles/:id", roleHandler.Update, authn, adminOnly)
	e.DELETE("/roles/:id", roleHandler.Delete, authn, adminOnly)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(
		map[string]handler.Pinger{"store": d.Store},
		map[string]handler.Pinger{"cache": d.Cache},
	)

	e.GET("/health", healthHandler.Liveness)           // liveness: is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness: are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, registry},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
