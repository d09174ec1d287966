package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/mrrizaldi/shortener-link/internal/analytics"
	"github.com/mrrizaldi/shortener-link/internal/cache"
	"github.com/mrrizaldi/shortener-link/internal/config"
	"github.com/mrrizaldi/shortener-link/internal/httpapi"
	applog "github.com/mrrizaldi/shortener-link/internal/logger"
	"github.com/mrrizaldi/shortener-link/internal/queue"
	"github.com/mrrizaldi/shortener-link/internal/shortener"
	"github.com/mrrizaldi/shortener-link/internal/snowflake"
	"github.com/mrrizaldi/shortener-link/internal/storage/memory"
	"github.com/mrrizaldi/shortener-link/internal/storage/postgres"
)

// store is what the API needs from either backend.
type store interface {
	shortener.Store
	analytics.Source
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		slog.Warn(".env file not found, relying on env vars", "err", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	log := applog.Init(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error("api service stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	log := applog.Default()
	var closers []func(context.Context) error

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](shutdownCtx); err != nil {
				log.Warn("shutdown step failed", "err", err)
			}
		}
	}()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.Log.Env, Release: cfg.Log.Version}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		closers = append(closers, func(context.Context) error {
			sentry.Flush(2 * time.Second)
			return nil
		})
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	closers = append(closers, closeStore)
	checks := map[string]httpapi.HealthCheck{"store": st.Ping}

	ids, err := snowflake.NewGenerator(cfg.NodeID)
	if err != nil {
		return fmt.Errorf("id generator: %w", err)
	}

	statsCache, rdb, err := openStatsCache(ctx, cfg)
	if err != nil {
		return err
	}
	if rdb != nil {
		closers = append(closers, func(context.Context) error { return rdb.Close() })
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	background := shortener.NewBackgroundTracker(st, shortener.BackgroundOptions{
		QueueSize:    cfg.TrackingQueueSize,
		Workers:      cfg.TrackingWorkers,
		WriteTimeout: cfg.TrackingWriteTimeout,
	})
	closers = append(closers, background.Close)

	var tracker shortener.Tracker
	switch cfg.TrackingMode {
	case config.TrackingSync:
		tracker = shortener.NewSyncTracker(st)
	case config.TrackingQueue:
		conn, err := queue.Dial(cfg.RabbitMQURL, cfg.ClickQueueName)
		if err != nil {
			return err
		}
		closers = append(closers, func(context.Context) error { return conn.Close() })
		tracker = queue.NewPublisher(conn.Channel, conn.Queue, background)
	default:
		tracker = background
	}
	log.Info("click tracking configured", "mode", cfg.TrackingMode)

	app := httpapi.NewApp(httpapi.Deps{
		Links:          shortener.NewService(st, ids),
		Resolver:       shortener.NewResolver(st, tracker),
		Stats:          analytics.NewAggregator(st),
		StatsCache:     statsCache,
		AppDomain:      cfg.AppDomain,
		RequestTimeout: cfg.RequestTimeout,
		HealthChecks:   checks,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting API service", "addr", cfg.HTTPAddr)
		errCh <- app.Listen(cfg.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down API service")
	// The HTTP server stops before the tracker drains and the pools close.
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.Warn("http shutdown", "err", err)
	}
	return nil
}

func openStore(cfg config.Config) (store, func(context.Context) error, error) {
	if cfg.UsesMemoryStore() {
		applog.Default().Warn("using in-memory store, data is lost on restart")
		return memory.New(), func(context.Context) error { return nil }, nil
	}

	db, err := postgres.Open(postgres.OpenConfig{
		DSN:             cfg.DBURL,
		LogLevel:        cfg.GormLogLevel,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, nil, err
	}

	applog.Default().Info("running GORM auto-migration")
	if err := postgres.Migrate(db); err != nil {
		_ = postgres.Close(db)
		return nil, nil, err
	}

	return postgres.NewStore(db), func(context.Context) error { return postgres.Close(db) }, nil
}

// openStatsCache picks Redis when REDIS_ADDR is set and the in-process cache
// otherwise. The returned client is nil unless Redis is used.
func openStatsCache(ctx context.Context, cfg config.Config) (*cache.Stats, *redis.Client, error) {
	if cfg.StatsCacheTTL == 0 {
		return cache.NewStats(nil, 0), nil, nil
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return cache.NewStats(cache.NewRedis(rdb), cfg.StatsCacheTTL), rdb, nil
	}

	local, err := cache.NewLocal(cfg.StatsCacheMaxCost)
	if err != nil {
		return nil, nil, fmt.Errorf("local stats cache: %w", err)
	}
	return cache.NewStats(local, cfg.StatsCacheTTL), nil, nil
}

