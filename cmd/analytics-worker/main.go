package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mrrizaldi/shortener-link/internal/config"
	applog "github.com/mrrizaldi/shortener-link/internal/logger"
	"github.com/mrrizaldi/shortener-link/internal/queue"
	"github.com/mrrizaldi/shortener-link/internal/storage/postgres"
)

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

	if cfg.UsesMemoryStore() {
		log.Error("analytics worker needs a PostgreSQL DB_URL")
		os.Exit(1)
	}
	if cfg.RabbitMQURL == "" {
		log.Error("analytics worker needs RABBITMQ_URL", "err", config.ErrRabbitMQURLEmpty)
		os.Exit(1)
	}

	db, err := postgres.Open(postgres.OpenConfig{
		DSN:             cfg.DBURL,
		LogLevel:        cfg.GormLogLevel,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Error("unable to connect to primary database", "err", err)
		os.Exit(1)
	}
	defer postgres.Close(db)

	if err := postgres.Migrate(db); err != nil {
		log.Error("auto-migration failed", "err", err)
		os.Exit(1)
	}

	conn, err := queue.Dial(cfg.RabbitMQURL, cfg.ClickQueueName)
	if err != nil {
		log.Error("unable to connect to RabbitMQ", "err", err)
		os.Exit(1)
	}
	defer conn.Close()

	msgs, err := conn.Consume(cfg.WorkerPrefetch)
	if err != nil {
		log.Error("failed to register consumer", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := queue.NewWorker(postgres.NewStore(db), queue.WorkerOptions{
		BatchSize:     cfg.WorkerBatchSize,
		FlushInterval: cfg.WorkerFlushInterval,
	})

	log.Info("analytics worker started, waiting for click events",
		"queue", cfg.ClickQueueName, "prefetch", cfg.WorkerPrefetch, "batch_size", cfg.WorkerBatchSize)
	worker.Run(applog.IntoContext(ctx, log), msgs)

	log.Info("analytics worker stopped")
}
