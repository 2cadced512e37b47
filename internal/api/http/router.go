package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cinema-service/internal/api/http/handlers"
	"github.com/spec-kit/cinema-service/internal/auth"
	"github.com/spec-kit/cinema-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}

	app.Post("/login", cfg.Auth.Login)
	app.Put("/refresh", cfg.Auth.Refresh)
	app.Post("/register", cfg.Auth.Register)

	gate := cfg.AuthMiddleware.Handle
	app.Get("/me", gate, cfg.Auth.Me)
	app.Get("/admin/ping", gate, auth.RequireRole(domain.RoleAdmin), cfg.Auth.AdminPing)
}
