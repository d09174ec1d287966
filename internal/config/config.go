package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mrrizaldi/shortener-link/internal/logger"
)

// MemoryDBURL selects the in-memory store instead of PostgreSQL.
const MemoryDBURL = "memory://"

type TrackingMode string

const (
	TrackingSync       TrackingMode = "sync"
	TrackingBackground TrackingMode = "background"
	TrackingQueue      TrackingMode = "queue"
)

const (
	defaultHTTPAddr  = ":3000"
	defaultAppDomain = "http://localhost:3000"
	defaultQueueName = "click_events"

	defaultDBMaxOpenConns    = 10
	defaultDBMaxIdleConns    = 5
	defaultDBConnMaxLifetime = 30 * time.Minute

	defaultStatsCacheTTL     = 10 * time.Second
	defaultStatsCacheMaxCost = 32 << 20

	defaultTrackingQueueSize    = 1024
	defaultTrackingWorkers      = 4
	defaultTrackingWriteTimeout = 5 * time.Second

	defaultWorkerBatchSize     = 100
	defaultWorkerFlushInterval = 2 * time.Second
	defaultWorkerPrefetch      = 100

	defaultRequestTimeout  = 5 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

type Config struct {
	HTTPAddr  string
	AppDomain string

	DBURL             string
	GormLogLevel      string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	StatsCacheTTL     time.Duration
	StatsCacheMaxCost int64

	RabbitMQURL    string
	ClickQueueName string

	TrackingMode         TrackingMode
	TrackingQueueSize    int
	TrackingWorkers      int
	TrackingWriteTimeout time.Duration

	WorkerBatchSize     int
	WorkerFlushInterval time.Duration
	WorkerPrefetch      int

	NodeID          int64
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	SentryDSN       string

	Log logger.Config
}

// Load reads the process environment. Call godotenv.Load first to pick up a .env file.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:       normalizeListenAddr(getEnv("API_SERVICE_PORT", defaultHTTPAddr)),
		AppDomain:      strings.TrimRight(getEnv("APP_DOMAIN", defaultAppDomain), "/"),
		DBURL:          getEnv("DB_URL", ""),
		GormLogLevel:   getEnv("GORM_LOG_LEVEL", "warn"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RabbitMQURL:    getEnv("RABBITMQ_URL", ""),
		ClickQueueName: getEnv("CLICK_QUEUE_NAME", defaultQueueName),
		TrackingMode:   TrackingMode(strings.ToLower(getEnv("TRACKING_MODE", string(TrackingBackground)))),
		SentryDSN:      getEnv("SENTRY_DSN", ""),
		Log:            logger.ConfigFromEnv(),
	}

	if cfg.DBURL == "" {
		return Config{}, ErrDBURLEmpty
	}
	if u, err := url.Parse(cfg.AppDomain); err != nil || u.Scheme == "" || u.Host == "" {
		return Config{}, fmt.Errorf("%w: %q", ErrInvalidAppDomain, cfg.AppDomain)
	}

	switch cfg.TrackingMode {
	case TrackingSync, TrackingBackground:
	case TrackingQueue:
		if cfg.RabbitMQURL == "" {
			return Config{}, ErrRabbitMQURLEmpty
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrInvalidTrackingMode, cfg.TrackingMode)
	}

	ints := []struct {
		key string
		def int
		dst *int
	}{
		{"DB_MAX_OPEN_CONNS", defaultDBMaxOpenConns, &cfg.DBMaxOpenConns},
		{"DB_MAX_IDLE_CONNS", defaultDBMaxIdleConns, &cfg.DBMaxIdleConns},
		{"REDIS_DB", 0, &cfg.RedisDB},
		{"TRACKING_QUEUE_SIZE", defaultTrackingQueueSize, &cfg.TrackingQueueSize},
		{"TRACKING_WORKERS", defaultTrackingWorkers, &cfg.TrackingWorkers},
		{"WORKER_BATCH_SIZE", defaultWorkerBatchSize, &cfg.WorkerBatchSize},
		{"WORKER_PREFETCH", defaultWorkerPrefetch, &cfg.WorkerPrefetch},
	}
	for _, f := range ints {
		v, err := getInt(f.key, f.def)
		if err != nil {
			return Config{}, err
		}
		*f.dst = v
	}

	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"DB_CONN_MAX_LIFETIME", defaultDBConnMaxLifetime, &cfg.DBConnMaxLifetime},
		{"STATS_CACHE_TTL", defaultStatsCacheTTL, &cfg.StatsCacheTTL},
		{"TRACKING_WRITE_TIMEOUT", defaultTrackingWriteTimeout, &cfg.TrackingWriteTimeout},
		{"WORKER_FLUSH_INTERVAL", defaultWorkerFlushInterval, &cfg.WorkerFlushInterval},
		{"REQUEST_TIMEOUT", defaultRequestTimeout, &cfg.RequestTimeout},
		{"SHUTDOWN_TIMEOUT", defaultShutdownTimeout, &cfg.ShutdownTimeout},
	}
	for _, f := range durations {
		v, err := getDuration(f.key, f.def)
		if err != nil {
			return Config{}, err
		}
		*f.dst = v
	}

	maxCost, err := getInt("STATS_CACHE_MAX_COST", defaultStatsCacheMaxCost)
	if err != nil {
		return Config{}, err
	}
	cfg.StatsCacheMaxCost = int64(maxCost)

	nodeID, err := getInt("NODE_ID", 1)
	if err != nil {
		return Config{}, err
	}
	cfg.NodeID = int64(nodeID)

	return cfg, nil
}

// UsesMemoryStore reports whether DB_URL selects the in-memory store.
func (c Config) UsesMemoryStore() bool {
	return c.DBURL == MemoryDBURL
}

func normalizeListenAddr(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return defaultHTTPAddr
	}
	if !strings.Contains(v, ":") {
		return ":" + v
	}
	return v
}

func getEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidInt, key, raw)
	}
	return v, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidDuration, key, raw)
	}
	return v, nil
}
