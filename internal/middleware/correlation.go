package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/lernix/lernix-web/internal/observability"
)

const localCorrelationID = "correlation_id"

// CorrelationID makes sure every request carries an identifier that is echoed
// to the browser and forwarded to the backend through the user context.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		incoming := strings.TrimSpace(c.Get(observability.CorrelationHeader))
		if incoming == "" {
			incoming = strings.TrimSpace(c.Get("X-Request-ID"))
		}
		if incoming == "" {
			incoming = uuid.NewString()
		}

		c.Locals(localCorrelationID, incoming)
		c.Set(observability.CorrelationHeader, incoming)
		c.SetUserContext(observability.ContextWithCorrelation(c.UserContext(), incoming))

		return c.Next()
	}
}

// GetCorrelationID returns the correlation identifier bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(localCorrelationID).(string); ok {
		return id
	}
	return observability.CorrelationIDFromContext(c.UserContext())
}
