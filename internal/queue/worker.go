package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/mrrizaldi/shortener-link/internal"
	"github.com/mrrizaldi/shortener-link/internal/logger"
	"github.com/mrrizaldi/shortener-link/internal/metrics"
	"github.com/mrrizaldi/shortener-link/internal/shortener"
)

// BatchWriter stores a batch of clicks and their hit-count increments
// atomically.
type BatchWriter interface {
	RecordClicks(ctx context.Context, clicks []internal.Click) error
}

type WorkerOptions struct {
	BatchSize     int
	FlushInterval time.Duration
}

// Worker consumes click events and writes them in batches. A batch is
// flushed when full or when the flush interval passes; success acks every
// delivery of the batch and a store failure requeues them all. A batch that
// fails because of an event referencing an unknown link is retried event by
// event so the rest of it still lands.
type Worker struct {
	store BatchWriter
	opts  WorkerOptions

	clicks     []internal.Click
	deliveries []amqp091.Delivery
}

func NewWorker(store BatchWriter, opts WorkerOptions) *Worker {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = 2 * time.Second
	}
	return &Worker{store: store, opts: opts}
}

// Run blocks until ctx is done or msgs is closed, flushing what is pending
// before it returns.
func (w *Worker) Run(ctx context.Context, msgs <-chan amqp091.Delivery) {
	log := logger.FromContext(ctx)
	ticker := time.NewTicker(w.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("worker stopping, flushing pending events", "count", len(w.clicks))
			w.flush(context.WithoutCancel(ctx))
			return

		case d, ok := <-msgs:
			if !ok {
				log.Warn("delivery channel closed")
				w.flush(context.WithoutCancel(ctx))
				return
			}
			w.add(ctx, d)
			if len(w.clicks) >= w.opts.BatchSize {
				w.flush(ctx)
				ticker.Reset(w.opts.FlushInterval)
			}

		case <-ticker.C:
			if len(w.clicks) > 0 {
				log.Debug("timer flush", "count", len(w.clicks))
				w.flush(ctx)
			}
		}
	}
}

func (w *Worker) add(ctx context.Context, d amqp091.Delivery) {
	var ev internal.ClickEvent
	if err := json.Unmarshal(d.Body, &ev); err != nil || ev.LinkID == 0 {
		logger.FromContext(ctx).Error("undecodable click event, rejecting", "err", err)
		_ = d.Reject(false)
		return
	}
	if ev.ClickedAt.IsZero() {
		ev.ClickedAt = d.Timestamp.UTC()
	}

	w.clicks = append(w.clicks, ev.Click())
	w.deliveries = append(w.deliveries, d)
}

func (w *Worker) flush(ctx context.Context) {
	if len(w.clicks) == 0 {
		return
	}
	log := logger.FromContext(ctx)
	clicks, deliveries := w.clicks, w.deliveries
	w.clicks, w.deliveries = nil, nil

	metrics.WorkerBatchSize.Observe(float64(len(clicks)))

	err := w.store.RecordClicks(ctx, clicks)
	switch {
	case err == nil:
		metrics.ClicksRecorded.WithLabelValues(metrics.PathWorker).Add(float64(len(clicks)))
		for _, d := range deliveries {
			_ = d.Ack(false)
		}
		log.Info("click batch written", "count", len(clicks))

	case isPermanent(err):
		log.Warn("click batch holds an unwritable event, writing one by one", "count", len(clicks), "err", err)
		for i := range clicks {
			w.writeOne(ctx, clicks[i], deliveries[i])
		}

	default:
		metrics.TrackingFailures.WithLabelValues(metrics.PathWorker).Add(float64(len(clicks)))
		log.Error("failed to write click batch, requeueing", "count", len(clicks), "err", err)
		for _, d := range deliveries {
			_ = d.Nack(false, true)
		}
	}
}

// writeOne stores a single click after its batch failed. Events that can
// never be written, and redelivered events that fail again, are dropped.
func (w *Worker) writeOne(ctx context.Context, click internal.Click, d amqp091.Delivery) {
	err := w.store.RecordClicks(ctx, []internal.Click{click})
	if err == nil {
		metrics.ClicksRecorded.WithLabelValues(metrics.PathWorker).Inc()
		_ = d.Ack(false)
		return
	}

	metrics.TrackingFailures.WithLabelValues(metrics.PathWorker).Inc()
	log := logger.FromContext(ctx)
	if isPermanent(err) || d.Redelivered {
		log.Error("dropping click event", "link_id", click.LinkID, "redelivered", d.Redelivered, "err", err)
		_ = d.Reject(false)
		return
	}
	log.Error("failed to write click event, requeueing", "link_id", click.LinkID, "err", err)
	_ = d.Nack(false, true)
}

func isPermanent(err error) bool {
	return errors.Is(err, shortener.ErrUnknownLink)
}
