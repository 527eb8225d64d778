package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/http/handlers"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.Middleware
	Limiter        *ratelimit.Limiter
	RateLimit      config.RateLimitConfig
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	general := cfg.Limiter.Class("general", cfg.RateLimit.General)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Limiter.Class("register", cfg.RateLimit.Register), cfg.Auth.Register)
	authGroup.Post("/login", cfg.Limiter.Class("login", cfg.RateLimit.Login), cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Limiter.Class("refresh", cfg.RateLimit.Refresh), cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/password/reset/request", general, cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", general, cfg.Auth.ConfirmPasswordReset)

	users := app.Group("/users", general, cfg.AuthMiddleware.Handle)
	users.Get("/profile", cfg.Users.Profile)
	users.Put("/", cfg.Users.Update)
	users.Put("/password", cfg.Users.ChangePassword)
	users.Delete("/", cfg.Users.DeleteSelf)

	admin := users.Group("", auth.RequireAdmin())
	admin.Get("/", cfg.Users.List)
	admin.Get("/:id", cfg.Users.GetByID)
	admin.Delete("/:id", cfg.Users.DeleteByID)
}
