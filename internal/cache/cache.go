// Package cache keeps recently computed stats payloads so dashboard polling
// does not rerun the aggregate queries on every request.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mrrizaldi/shortener-link/internal/analytics"
	"github.com/mrrizaldi/shortener-link/internal/logger"
	"github.com/mrrizaldi/shortener-link/internal/metrics"
)

// Backend is a byte store with per-key expiry. A miss is (nil, false, nil).
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

func StatsKey(slug string, iv analytics.Interval) string {
	return "stats:" + slug + ":" + string(iv)
}

// Stats caches analytics.Stats by slug and interval. Backend errors are
// logged and treated as misses. A nil backend or a zero TTL disables it.
type Stats struct {
	backend Backend
	ttl     time.Duration
}

func NewStats(backend Backend, ttl time.Duration) *Stats {
	if ttl <= 0 {
		backend = nil
	}
	return &Stats{backend: backend, ttl: ttl}
}

func (s *Stats) Enabled() bool { return s != nil && s.backend != nil }

func (s *Stats) Get(ctx context.Context, slug string, iv analytics.Interval) (analytics.Stats, bool) {
	if !s.Enabled() {
		return analytics.Stats{}, false
	}

	raw, ok, err := s.backend.Get(ctx, StatsKey(slug, iv))
	if err != nil {
		logger.FromContext(ctx).Warn("stats cache read failed", "slug", slug, "interval", iv, "err", err)
		metrics.StatsCache.WithLabelValues("error").Inc()
		return analytics.Stats{}, false
	}
	if !ok {
		metrics.StatsCache.WithLabelValues("miss").Inc()
		return analytics.Stats{}, false
	}

	var st analytics.Stats
	if err := json.Unmarshal(raw, &st); err != nil {
		logger.FromContext(ctx).Warn("stats cache entry undecodable", "slug", slug, "err", err)
		metrics.StatsCache.WithLabelValues("error").Inc()
		return analytics.Stats{}, false
	}
	metrics.StatsCache.WithLabelValues("hit").Inc()
	return st, true
}

func (s *Stats) Set(ctx context.Context, st analytics.Stats) {
	if !s.Enabled() {
		return
	}

	raw, err := json.Marshal(st)
	if err != nil {
		logger.FromContext(ctx).Warn("stats cache encode failed", "slug", st.Slug, "err", err)
		return
	}
	if err := s.backend.Set(ctx, StatsKey(st.Slug, st.Interval), raw, s.ttl); err != nil {
		logger.FromContext(ctx).Warn("stats cache write failed", "slug", st.Slug, "err", err)
	}
}

// Invalidate drops the cached stats of slug for every interval.
func (s *Stats) Invalidate(ctx context.Context, slug string) {
	if !s.Enabled() {
		return
	}

	ivs := analytics.Intervals()
	keys := make([]string, 0, len(ivs))
	for _, iv := range ivs {
		keys = append(keys, StatsKey(slug, iv))
	}
	if err := s.backend.Delete(ctx, keys...); err != nil {
		logger.FromContext(ctx).Warn("stats cache invalidation failed", "slug", slug, "err", err)
	}
}
