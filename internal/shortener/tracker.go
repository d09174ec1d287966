package shortener

import (
	"context"
	"sync"
	"time"

	"github.com/mrrizaldi/shortener-link/internal"
	"github.com/mrrizaldi/shortener-link/internal/logger"
	"github.com/mrrizaldi/shortener-link/internal/metrics"
)

// SyncTracker writes the click inside the request. If the request context is
// cancelled mid-write the transaction rolls back as a whole.
type SyncTracker struct {
	store ClickWriter
}

func NewSyncTracker(store ClickWriter) *SyncTracker {
	return &SyncTracker{store: store}
}

func (t *SyncTracker) Track(ctx context.Context, ev internal.ClickEvent) error {
	if err := t.store.RecordClick(ctx, ev.Click()); err != nil {
		metrics.TrackingFailures.WithLabelValues(metrics.PathSync).Inc()
		return err
	}
	metrics.ClicksRecorded.WithLabelValues(metrics.PathSync).Inc()
	return nil
}

type BackgroundOptions struct {
	QueueSize    int
	Workers      int
	WriteTimeout time.Duration
}

// BackgroundTracker lets the redirect go out before the click is written.
// Clicks go through a bounded queue drained by a fixed worker pool; when the
// queue is full, or after Close, the click is written inline instead of being
// dropped. Write failures are logged and counted, never returned.
type BackgroundTracker struct {
	store   ClickWriter
	jobs    chan internal.ClickEvent
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewBackgroundTracker(store ClickWriter, opts BackgroundOptions) *BackgroundTracker {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	t := &BackgroundTracker{
		store:   store,
		jobs:    make(chan internal.ClickEvent, opts.QueueSize),
		timeout: opts.WriteTimeout,
	}

	t.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go t.work()
	}
	return t
}

func (t *BackgroundTracker) Track(ctx context.Context, ev internal.ClickEvent) error {
	if t.enqueue(ev) {
		return nil
	}

	logger.FromContext(ctx).Warn("tracking queue unavailable, writing click inline", "slug", ev.Slug)
	t.write(ev, metrics.PathInline)
	return nil
}

func (t *BackgroundTracker) enqueue(ev internal.ClickEvent) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed {
		return false
	}
	select {
	case t.jobs <- ev:
		metrics.TrackingQueueDepth.Inc()
		return true
	default:
		return false
	}
}

func (t *BackgroundTracker) work() {
	defer t.wg.Done()
	for ev := range t.jobs {
		metrics.TrackingQueueDepth.Dec()
		t.write(ev, metrics.PathBackground)
	}
}

func (t *BackgroundTracker) write(ev internal.ClickEvent, path string) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	if err := t.store.RecordClick(ctx, ev.Click()); err != nil {
		metrics.TrackingFailures.WithLabelValues(path).Inc()
		logger.Default().Error("failed to track click",
			"slug", ev.Slug, "link_id", ev.LinkID, "path", path, "err", err)
		return
	}
	metrics.ClicksRecorded.WithLabelValues(path).Inc()
}

// Close stops accepting clicks and waits for the queued ones to be written.
func (t *BackgroundTracker) Close(ctx context.Context) error {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.jobs)
	}
	t.mu.Unlock()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
