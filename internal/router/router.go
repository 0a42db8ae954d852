package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lernix/lernix-web/internal/config"
	"github.com/lernix/lernix-web/internal/handler"
	"github.com/lernix/lernix-web/internal/middleware"
	"github.com/lernix/lernix-web/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	Guard           *middleware.SessionGuard
	AuthHandler     *handler.AuthHandler
	CourseHandler   *handler.CourseHandler
	StudyHandler    *handler.StudyHandler
	InsightsHandler *handler.InsightsHandler
	HealthChecks    map[string]handler.Pinger
	// AuthRateLimit caps login and registration attempts per client per minute.
	AuthRateLimit int
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get(observability.MetricsPath, observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthChecks))

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", deps.AuthRateLimit, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	// Everything below needs a session.
	if deps.Guard == nil {
		return
	}
	requireSession := deps.Guard.Require()

	if deps.CourseHandler != nil || deps.StudyHandler != nil {
		courses := api.Group("/courses", requireSession)
		if deps.CourseHandler != nil {
			deps.CourseHandler.Register(courses)
		}
		if deps.StudyHandler != nil {
			deps.StudyHandler.Register(courses)
		}
	}

	if deps.InsightsHandler != nil {
		insights := api.Group("/insights", requireSession)
		deps.InsightsHandler.Register(insights)
		deps.InsightsHandler.RegisterPage(app, requireSession)
	}
}
