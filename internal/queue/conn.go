// Package queue carries click events over RabbitMQ from the API to the
// analytics worker.
package queue

import (
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// Conn is one AMQP connection with a channel and the declared click queue.
type Conn struct {
	conn    *amqp091.Connection
	Channel *amqp091.Channel
	Queue   string
}

// Dial connects and declares the durable click queue.
func Dial(url, queue string) (*Conn, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("queue: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("queue: open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue: declare %q: %w", queue, err)
	}

	return &Conn{conn: conn, Channel: ch, Queue: queue}, nil
}

// Consume sets the prefetch window and starts a manual-ack consumer.
func (c *Conn) Consume(prefetch int) (<-chan amqp091.Delivery, error) {
	if err := c.Channel.Qos(prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("queue: set qos: %w", err)
	}

	msgs, err := c.Channel.Consume(c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("queue: consume %q: %w", c.Queue, err)
	}
	return msgs, nil
}

func (c *Conn) Close() error {
	return closeBoth(c.Channel, c.conn)
}

type closer interface {
	Close() error
}

type connCloser interface {
	closer
	IsClosed() bool
}

// closeBoth closes the channel, then the connection if it is still open.
// A channel error wins over a connection error.
func closeBoth(ch closer, conn connCloser) error {
	chErr := ch.Close()
	if conn.IsClosed() {
		return chErr
	}
	connErr := conn.Close()
	if chErr != nil {
		return chErr
	}
	return connErr
}
