package logger

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// FiberMiddleware logs one line per request and hands a request-scoped logger
// to the handlers through c.UserContext(). It expects the requestid middleware
// to run first.
func FiberMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		ctx := c.UserContext()
		if id, ok := c.Locals("requestid").(string); ok && id != "" {
			ctx = WithRequestID(ctx, id)
		}
		c.SetUserContext(IntoContext(ctx, Default()))

		err := c.Next()
		latency := time.Since(start)

		route := ""
		if r := c.Route(); r != nil {
			route = r.Path
		}

		attrs := []any{
			"status", c.Response().StatusCode(),
			"method", c.Method(),
			"path", c.OriginalURL(),
			"route", route,
			"ip", c.IP(),
			"user_agent", c.Get(fiber.HeaderUserAgent),
			"latency_ms", float64(latency.Microseconds()) / 1000.0,
		}

		log := FromContext(c.UserContext())
		if err != nil {
			log.Error("http request", append(attrs, "err", err.Error())...)
			return err
		}
		log.Info("http request", attrs...)
		return nil
	}
}
