package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rabbitmq/amqp091-go"

	"github.com/mrrizaldi/shortener-link/internal"
	"github.com/mrrizaldi/shortener-link/internal/logger"
	"github.com/mrrizaldi/shortener-link/internal/metrics"
	"github.com/mrrizaldi/shortener-link/internal/shortener"
)

// Publishing is the part of *amqp091.Channel the publisher uses.
type Publishing interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// Publisher is a shortener.Tracker that hands clicks to the analytics worker.
// When publishing fails the click goes to the fallback tracker instead.
type Publisher struct {
	mu       sync.Mutex
	ch       Publishing
	queue    string
	fallback shortener.Tracker
}

var _ shortener.Tracker = (*Publisher)(nil)

func NewPublisher(ch Publishing, queue string, fallback shortener.Tracker) *Publisher {
	return &Publisher{ch: ch, queue: queue, fallback: fallback}
}

func (p *Publisher) Track(ctx context.Context, ev internal.ClickEvent) error {
	err := p.publish(ctx, ev)
	if err == nil {
		metrics.ClicksRecorded.WithLabelValues(metrics.PathQueue).Inc()
		return nil
	}

	metrics.TrackingFailures.WithLabelValues(metrics.PathQueue).Inc()
	if p.fallback == nil {
		return err
	}
	logger.FromContext(ctx).Warn("publish failed, tracking click locally", "slug", ev.Slug, "err", err)
	return p.fallback.Track(ctx, ev)
}

func (p *Publisher) publish(ctx context.Context, ev internal.ClickEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("queue: encode click event: %w", err)
	}

	// amqp091 channels are not safe for concurrent publishes.
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		"", p.queue, false, false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    ev.ClickedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("queue: publish click event: %w", err)
	}
	return nil
}
