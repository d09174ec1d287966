package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mrrizaldi/shortener-link/internal/logger"
)

func (h *handler) health(c *fiber.Ctx) error {
	ctx := c.UserContext()
	failed := fiber.Map{}

	for name, check := range h.HealthChecks {
		if err := check(ctx); err != nil {
			logger.FromContext(ctx).Warn("health check failed", "check", name, "err", err)
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "checks": failed})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
