package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_URL", "postgres://u:p@localhost:5432/db")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":3000", cfg.HTTPAddr)
	require.Equal(t, "http://localhost:3000", cfg.AppDomain)
	require.Equal(t, TrackingBackground, cfg.TrackingMode)
	require.Equal(t, "click_events", cfg.ClickQueueName)
	require.Equal(t, 10*time.Second, cfg.StatsCacheTTL)
	require.Equal(t, 100, cfg.WorkerBatchSize)
	require.Equal(t, 2*time.Second, cfg.WorkerFlushInterval)
	require.Equal(t, int64(1), cfg.NodeID)
	require.False(t, cfg.UsesMemoryStore())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_URL", MemoryDBURL)
	t.Setenv("API_SERVICE_PORT", "8080")
	t.Setenv("APP_DOMAIN", "https://sho.rt/")
	t.Setenv("TRACKING_MODE", "SYNC")
	t.Setenv("STATS_CACHE_TTL", "0s")
	t.Setenv("TRACKING_WORKERS", "2")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, "https://sho.rt", cfg.AppDomain)
	require.Equal(t, TrackingSync, cfg.TrackingMode)
	require.Zero(t, cfg.StatsCacheTTL)
	require.Equal(t, 2, cfg.TrackingWorkers)
	require.True(t, cfg.UsesMemoryStore())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want error
	}{
		{"bad/no_db_url", map[string]string{}, ErrDBURLEmpty},
		{"bad/app_domain", map[string]string{"DB_URL": MemoryDBURL, "APP_DOMAIN": "not a url"}, ErrInvalidAppDomain},
		{"bad/tracking_mode", map[string]string{"DB_URL": MemoryDBURL, "TRACKING_MODE": "later"}, ErrInvalidTrackingMode},
		{"bad/queue_without_rabbit", map[string]string{"DB_URL": MemoryDBURL, "TRACKING_MODE": "queue"}, ErrRabbitMQURLEmpty},
		{"bad/int", map[string]string{"DB_URL": MemoryDBURL, "WORKER_BATCH_SIZE": "many"}, ErrInvalidInt},
		{"bad/duration", map[string]string{"DB_URL": MemoryDBURL, "REQUEST_TIMEOUT": "5"}, ErrInvalidDuration},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("DB_URL", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.ErrorIs(t, err, tc.want)
		})
	}
}
