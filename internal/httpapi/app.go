// Package httpapi exposes the shortener over HTTP with Fiber.
package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mrrizaldi/shortener-link/internal/analytics"
	"github.com/mrrizaldi/shortener-link/internal/cache"
	"github.com/mrrizaldi/shortener-link/internal/logger"
	"github.com/mrrizaldi/shortener-link/internal/shortener"
)

// HealthCheck pings one backing service.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Links      *shortener.Service
	Resolver   *shortener.Resolver
	Stats      *analytics.Aggregator
	StatsCache *cache.Stats

	// AppDomain is the public base URL short links are built on.
	AppDomain      string
	RequestTimeout time.Duration
	HealthChecks   map[string]HealthCheck
}

type handler struct {
	Deps
}

func NewApp(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "shortener-link",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.FiberMiddleware())
	app.Use(cors.New())
	if deps.RequestTimeout > 0 {
		app.Use(timeout(deps.RequestTimeout))
	}

	h := &handler{Deps: deps}

	app.Get("/health", h.health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	api.Post("/shorten", h.shorten)
	api.Get("/urls", h.listURLs)
	api.Get("/stats/:slug", h.stats)
	api.Delete("/delete/:slug", h.deleteURL)
	api.Get("/qr/:slug", h.qr)

	// Registered last so it never shadows the fixed routes above.
	app.Get("/:slug", h.redirect)

	return app
}

// timeout bounds the store calls of one request through its user context.
func timeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return respondError(c, "unhandled", err)
}
