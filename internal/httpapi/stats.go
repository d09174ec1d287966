package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mrrizaldi/shortener-link/internal/analytics"
)

func (h *handler) stats(c *fiber.Ctx) error {
	slug := c.Params("slug")
	ctx := c.UserContext()

	iv, err := analytics.ParseInterval(c.Query("interval", string(analytics.Interval1d)))
	if err != nil {
		return respondError(c, "stats", err)
	}

	if st, ok := h.StatsCache.Get(ctx, slug, iv); ok {
		return c.JSON(st)
	}

	st, err := h.Stats.GetStats(ctx, slug, iv)
	if err != nil {
		return respondError(c, "stats", err)
	}
	h.StatsCache.Set(ctx, st)

	return c.JSON(st)
}
