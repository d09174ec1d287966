package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/mrrizaldi/shortener-link/internal/metrics"
	"github.com/mrrizaldi/shortener-link/internal/shortener"
)

func (h *handler) redirect(c *fiber.Ctx) error {
	// Header and param strings point into fasthttp buffers that are reused
	// after the handler returns; the tracker may still hold them.
	slug := utils.CopyString(c.Params("slug"))
	visit := shortener.NewVisit(
		utils.CopyString(c.Get(fiber.HeaderUserAgent)),
		utils.CopyString(c.Get(fiber.HeaderReferer)),
		utils.CopyString(c.Get(fiber.HeaderXForwardedFor)),
		utils.CopyString(c.Get("X-Real-IP")),
	)

	dest, err := h.Resolver.Resolve(c.UserContext(), slug, visit)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			metrics.Redirects.WithLabelValues("not_found").Inc()
		} else {
			metrics.Redirects.WithLabelValues("error").Inc()
		}
		return respondError(c, "redirect", err)
	}

	metrics.Redirects.WithLabelValues("redirected").Inc()
	return c.Redirect(dest, fiber.StatusTemporaryRedirect)
}
