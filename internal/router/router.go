package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/suitetest-api/internal/config"
	"github.com/noah-isme/suitetest-api/internal/handler"
	"github.com/noah-isme/suitetest-api/internal/middleware"
	"github.com/noah-isme/suitetest-api/internal/models"
	"github.com/noah-isme/suitetest-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	TestHandler       *handler.TestHandler
	ProgressHandler   *handler.ProgressHandler
	SubmissionHandler *handler.SubmissionHandler
	ResultHandler     *handler.ResultHandler
	DepartmentHandler *handler.DepartmentHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	window := cfg.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}

	tests := api.Group("/tests", jwtMiddleware)

	// /active-test must be registered before the GET /:id route.
	if deps.ProgressHandler != nil {
		deps.ProgressHandler.Register(tests, middleware.RateLimit("save-progress", cfg.RateLimitMax*3, window))
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(tests, middleware.RateLimit("submit", cfg.RateLimitMax, window))
	}
	if deps.ResultHandler != nil {
		deps.ResultHandler.Register(tests)
	}
	if deps.TestHandler != nil {
		deps.TestHandler.Register(tests)
	}

	if deps.DepartmentHandler != nil {
		departments := api.Group("/departments", jwtMiddleware)
		deps.DepartmentHandler.Register(departments, middleware.RequireRole(models.RoleAdmin))
	}
}
