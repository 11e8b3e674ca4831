package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"

	"github.com/nerrad567/sensorstream/internal/fault"
	"github.com/nerrad567/sensorstream/internal/lifecycle"
)

// Logger interface for optional logging support.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Publisher is the "rabbitmq" output provider. Payloads go to a named queue
// through the default exchange.
//
// When the broker drops the connection the publisher reconnects with the
// same retry budget as Open. If that fails the fatal callback receives
// ErrConnectionLost.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Publisher struct {
	log Logger

	// dial opens a session; replaced in tests.
	dial func(cfg Config) (session, error)

	mu         sync.RWMutex
	cfg        Config
	configured bool
	stop       *lifecycle.StopSignal
	sess       session
	closing    bool
	done       chan struct{}
	onFatal    func(error)
}

// New creates an unconfigured RabbitMQ publisher.
func New(log Logger) *Publisher {
	if log == nil {
		log = noopLogger{}
	}
	return &Publisher{
		log:  log,
		dial: dialBroker,
		stop: lifecycle.NewStopSignal(),
	}
}

// Init parses the connection string. Options (aliases in braces):
// url{url,u}, queue{queue_name,queue,q} (both mandatory),
// timeout{timeout,tout}=10, retrycount{retrycount,rc}=3,
// retrydelay{retrydelay,rd}=10, deliverymode{deliverymode,dm}=1.
func (p *Publisher) Init(connString string) error {
	cfg, err := parseConfig(connString)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.cfg = cfg
	p.configured = true
	p.mu.Unlock()

	p.log.Info("rabbitmq provider configured", "queue", cfg.Queue, "delivery_mode", cfg.DeliveryMode)
	return nil
}

// AttachStopSignal attaches the process-wide stop signal observed by Open
// and by reconnects.
func (p *Publisher) AttachStopSignal(stop *lifecycle.StopSignal) {
	if stop == nil {
		return
	}
	p.mu.Lock()
	p.stop = stop
	p.mu.Unlock()
}

// SetOnFatal sets the callback invoked when a dropped connection cannot be
// re-established.
func (p *Publisher) SetOnFatal(fn func(error)) {
	p.mu.Lock()
	p.onFatal = fn
	p.mu.Unlock()
}

// Open connects, declares the queue and starts watching the connection.
func (p *Publisher) Open() error {
	p.mu.Lock()
	if !p.configured {
		p.mu.Unlock()
		return ErrMissingOption.Withf("provider not configured")
	}
	p.closing = false
	if p.done == nil {
		p.done = make(chan struct{})
	}
	done := p.done
	p.mu.Unlock()

	sess, err := p.connect()
	if err != nil {
		return err
	}

	go p.watch(sess, done)
	return nil
}

// connect dials with retries and installs the new session.
func (p *Publisher) connect() (session, error) {
	p.mu.RLock()
	cfg, stop := p.cfg, p.stop
	p.mu.RUnlock()

	var sess session
	err := stop.Retry(cfg.MaxRetries, cfg.RetryDelay, func(attempt int) error {
		s, err := p.dial(cfg)
		if err != nil {
			p.log.Warn("rabbitmq open attempt failed", "attempt", attempt+1, "error", err)
			return ErrOpenFailed.With(err)
		}
		sess = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.closing {
		p.mu.Unlock()
		sess.Close() //nolint:errcheck // Closed while connecting
		return nil, fault.ErrInterrupted
	}
	p.sess = sess
	p.mu.Unlock()

	p.log.Info("rabbitmq provider opened", "queue", cfg.Queue)
	return sess, nil
}

// watch reconnects after the broker closes the connection.
func (p *Publisher) watch(sess session, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case amqpErr, ok := <-sess.NotifyClose():
			if !ok || amqpErr == nil {
				// Graceful close
				return
			}

			p.mu.Lock()
			if p.sess == sess {
				p.sess = nil
			}
			closing := p.closing
			p.mu.Unlock()
			if closing {
				return
			}

			p.log.Warn("rabbitmq connection lost", "code", ErrConnectionLost.Code, "error", amqpErr)
			// a channel exception leaves the connection open
			_ = sess.Close()

			next, err := p.connect()
			if err != nil {
				if errors.Is(err, fault.ErrInterrupted) {
					return
				}
				p.mu.RLock()
				onFatal := p.onFatal
				p.mu.RUnlock()

				p.log.Error("rabbitmq reconnect failed", "code", ErrConnectionLost.Code, "error", err)
				if onFatal != nil {
					onFatal(fault.MarkFatal(ErrConnectionLost.With(err)))
				}
				return
			}
			sess = next
		}
	}
}

// Close stops the watcher and closes the connection. It is idempotent.
func (p *Publisher) Close() error {
	p.mu.Lock()
	sess := p.sess
	p.sess = nil
	p.closing = true
	if p.done != nil {
		close(p.done)
		p.done = nil
	}
	p.mu.Unlock()

	if sess == nil {
		return nil
	}
	if err := sess.Close(); err != nil {
		p.log.Warn("rabbitmq close failed", "error", err)
	}
	p.log.Info("rabbitmq provider closed")
	return nil
}

// Write publishes payload to the queue.
func (p *Publisher) Write(payload []byte) error {
	p.mu.RLock()
	sess, cfg := p.sess, p.cfg
	p.mu.RUnlock()

	if sess == nil {
		return ErrNotOpen
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	contentType := "text/plain"
	if json.Valid(payload) {
		contentType = "application/json"
	}

	err := sess.Publish(ctx, amqp091.Publishing{
		ContentType:  contentType,
		DeliveryMode: cfg.DeliveryMode,
		Timestamp:    time.Now(),
		Body:         payload,
	})
	if err != nil {
		return ErrWriteFailed.With(err)
	}
	return nil
}

// IsOpen reports whether a session is currently established.
func (p *Publisher) IsOpen() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sess != nil
}

// Config returns the configuration built by Init.
func (p *Publisher) Config() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}
