package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lernix/lernix-web/internal/config"
	"github.com/lernix/lernix-web/internal/utils"
)

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Service      string            `json:"service"`
	Environment  string            `json:"environment"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// HealthCheck reports service health, probing each named dependency. Any
// failing dependency turns the response into a 503.
func HealthCheck(cfg config.Config, deps map[string]Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		}

		if len(deps) > 0 {
			payload.Dependencies = make(map[string]string, len(deps))
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			for name, ping := range deps {
				if err := ping(ctx); err != nil {
					payload.Dependencies[name] = "unavailable"
					payload.Status = "degraded"
					continue
				}
				payload.Dependencies[name] = "ok"
			}
		}

		if payload.Status != "ok" {
			return utils.Fail(c, fiber.StatusServiceUnavailable, "service degraded", payload)
		}
		return utils.SendSuccess(c, "service healthy", payload)
	}
}
