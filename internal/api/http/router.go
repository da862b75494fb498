package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/member-portal/internal/api/http/handlers"
	"github.com/spec-kit/member-portal/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Pages  *handlers.PagesHandler
	Auth   *handlers.AuthHandler
	Health *handlers.HealthHandler
	Gate   *auth.Gate
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Use(cfg.Gate.LoadSession())

	app.Get("/", cfg.Gate.RequireAuthenticated(), cfg.Pages.Index)
	app.Get("/login", cfg.Gate.RequireAnonymous(), cfg.Pages.LoginForm)
	app.Get("/register", cfg.Gate.RequireAnonymous(), cfg.Pages.RegisterForm)

	app.Post("/register", cfg.Auth.Register)
	app.Post("/login", cfg.Auth.Login)
	app.Post("/logout", cfg.Gate.RequireAuthenticated(), cfg.Auth.Logout)
}
