// Package metrics holds the Prometheus collectors of the shortener processes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shortener"

var (
	Redirects = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "redirects_total",
		Help:      "Redirect requests by outcome (redirected, not_found, error).",
	}, []string{"result"})

	ClicksRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clicks_recorded_total",
		Help:      "Clicks written to the store, by tracking path.",
	}, []string{"path"})

	TrackingFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tracking_failures_total",
		Help:      "Click writes or publishes that failed, by tracking path.",
	}, []string{"path"})

	TrackingQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "tracking_queue_depth",
		Help:      "Clicks waiting in the in-process tracking queue.",
	})

	StatsCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stats_cache_total",
		Help:      "Stats cache lookups by result (hit, miss).",
	}, []string{"result"})

	WorkerBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "worker_batch_size",
		Help:      "Click events per flushed worker batch.",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
	})

	LinksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "links_created_total",
		Help:      "Short links created.",
	})
)

// Tracking path labels.
const (
	PathSync       = "sync"
	PathBackground = "background"
	PathInline     = "inline"
	PathQueue      = "queue"
	PathWorker     = "worker"
)
