package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/climatecare/repairdesk/internal/api/http/handlers"
	"github.com/climatecare/repairdesk/internal/auth"
	"github.com/climatecare/repairdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Requests       *handlers.RequestsHandler
	Users          *handlers.UsersHandler
	Stats          *handlers.StatsHandler
	Lookups        *handlers.LookupsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Route-level role guards only trim
// endpoints whole roles have no business reaching; ownership and status
// rules stay in the services.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/auth/logout", cfg.Auth.Logout)
	protected.Get("/auth/me", cfg.Auth.Me)
	protected.Post("/auth/password/change", cfg.Auth.ChangePassword)

	protected.Get("/lookups", cfg.Lookups.Reference)
	protected.Get("/lookups/form", cfg.Lookups.Form)

	requests := protected.Group("/requests")
	requests.Get("/", cfg.Requests.List)
	requests.Post("/", auth.RequireRoles(domain.RoleManager, domain.RoleOperator, domain.RoleClient), cfg.Requests.Create)
	requests.Get("/:id", cfg.Requests.Get)
	requests.Put("/:id", cfg.Requests.Update)
	requests.Delete("/:id", auth.RequireRoles(domain.RoleManager, domain.RoleOperator), cfg.Requests.Delete)
	requests.Post("/:id/comments", auth.RequireRoles(domain.RoleSpecialist), cfg.Requests.AddComment)

	users := protected.Group("/users", auth.RequireRoles(domain.RoleManager, domain.RoleOperator))
	users.Post("/", cfg.Users.Create)
	users.Get("/", cfg.Users.List)

	protected.Get("/stats/overview", auth.RequireRoles(domain.RoleManager), cfg.Stats.Overview)
}
