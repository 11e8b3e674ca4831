package amqp

import (
	"context"
	"fmt"

	amqp091 "github.com/rabbitmq/amqp091-go"
)

// session is one broker connection with a channel and a declared queue.
type session interface {
	Publish(ctx context.Context, msg amqp091.Publishing) error
	NotifyClose() <-chan *amqp091.Error
	Close() error
}

type brokerSession struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	queue   string
	closed  <-chan *amqp091.Error
}

// dialBroker connects, opens a channel and declares the target queue.
func dialBroker(cfg Config) (session, error) {
	conn, err := amqp091.DialConfig(cfg.URL, amqp091.Config{
		Dial: amqp091.DefaultDial(cfg.Timeout),
		Properties: amqp091.Table{
			"connection_name": "sensorstream",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	durable := cfg.DeliveryMode == amqp091.Persistent
	queue, err := channel.QueueDeclare(cfg.Queue, durable, false, false, false, nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %q: %w", cfg.Queue, err)
	}

	return &brokerSession{
		conn:    conn,
		channel: channel,
		queue:   queue.Name,
		closed: mergeClose(
			conn.NotifyClose(make(chan *amqp091.Error, 1)),
			channel.NotifyClose(make(chan *amqp091.Error, 1)),
		),
	}, nil
}

// mergeClose reports whichever of the connection or the channel closes
// first. A channel exception leaves the connection up but the session is
// unusable, so both count as loss. The result is closed after at most one
// error; a graceful close yields no error.
func mergeClose(conn, channel <-chan *amqp091.Error) <-chan *amqp091.Error {
	out := make(chan *amqp091.Error, 1)
	go func() {
		defer close(out)
		var (
			amqpErr *amqp091.Error
			ok      bool
		)
		select {
		case amqpErr, ok = <-conn:
		case amqpErr, ok = <-channel:
		}
		if ok && amqpErr != nil {
			out <- amqpErr
		}
	}()
	return out
}

func (s *brokerSession) Publish(ctx context.Context, msg amqp091.Publishing) error {
	// Default exchange routes by queue name.
	return s.channel.PublishWithContext(ctx, "", s.queue, false, false, msg)
}

func (s *brokerSession) NotifyClose() <-chan *amqp091.Error {
	return s.closed
}

func (s *brokerSession) Close() error {
	_ = s.channel.Close()
	return s.conn.Close()
}
