package httpapi

import (
	"errors"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"github.com/mrrizaldi/shortener-link/internal/analytics"
	"github.com/mrrizaldi/shortener-link/internal/logger"
	"github.com/mrrizaldi/shortener-link/internal/shortener"
)

const (
	msgNotFound       = "URL not found"
	msgInvalidInput   = "Invalid input"
	msgInvalidIntvl   = "Invalid interval"
	msgSlugInUse      = "Slug already in use"
	msgAlreadyDeleted = "URL is already deleted"
	msgInternal       = "Internal server error"
)

// respondError writes the JSON error body for err. Anything that is not a
// domain error is logged, reported to Sentry and hidden behind a 500.
func respondError(c *fiber.Ctx, op string, err error) error {
	switch {
	case errors.Is(err, shortener.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgNotFound})
	case errors.Is(err, analytics.ErrInvalidInterval):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgInvalidIntvl})
	case errors.Is(err, shortener.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgInvalidInput})
	case errors.Is(err, shortener.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": msgSlugInUse})
	case errors.Is(err, shortener.ErrAlreadyDeleted):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgAlreadyDeleted})
	}

	ctx := c.UserContext()
	logger.FromContext(ctx).Error("request failed", "op", op, "slug", c.Params("slug"), "err", err)
	capture(c, op, err)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msgInternal})
}

func capture(c *fiber.Ctx, op string, err error) {
	hub := sentry.CurrentHub().Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("op", op)
		scope.SetTag("route", c.Route().Path)
		if id := logger.RequestID(c.UserContext()); id != "" {
			scope.SetTag("request_id", id)
		}
		hub.CaptureException(err)
	})
}
