package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"

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

// messageWriter is the part of *kafkago.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer is the "kafka" output provider. Every Write produces one message
// synchronously to the configured topic.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Producer struct {
	log Logger

	// probe verifies a broker is reachable; replaced in tests.
	probe func(ctx context.Context, cfg Config) error

	// newWriter builds the topic writer; replaced in tests.
	newWriter func(cfg Config) messageWriter

	mu         sync.RWMutex
	cfg        Config
	configured bool
	stop       *lifecycle.StopSignal
	writer     messageWriter
}

// New creates an unconfigured Kafka producer.
func New(log Logger) *Producer {
	if log == nil {
		log = noopLogger{}
	}
	return &Producer{
		log:       log,
		probe:     dialBroker,
		newWriter: newTopicWriter,
		stop:      lifecycle.NewStopSignal(),
	}
}

// Init parses the connection string. Options (aliases in braces):
// brokers{brokers,b} comma list, topic{topic,t} (both mandatory),
// timeout{timeout,tout}=10, retrycount{retrycount,rc}=3,
// retrydelay{retrydelay,rd}=2, acks{acks,a}=-1, user{user,u},
// password{password,pw}.
func (p *Producer) Init(connString string) error {
	cfg, err := parseConfig(connString)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.cfg = cfg
	p.configured = true
	p.mu.Unlock()

	p.log.Info("kafka provider configured", "brokers", cfg.Brokers, "topic", cfg.Topic, "acks", cfg.Acks)
	return nil
}

// AttachStopSignal attaches the process-wide stop signal observed by Open.
func (p *Producer) AttachStopSignal(stop *lifecycle.StopSignal) {
	if stop == nil {
		return
	}
	p.mu.Lock()
	p.stop = stop
	p.mu.Unlock()
}

// Open probes the brokers and creates the topic writer.
func (p *Producer) Open() error {
	p.mu.RLock()
	cfg, configured, stop := p.cfg, p.configured, p.stop
	p.mu.RUnlock()

	if !configured {
		return ErrMissingOption.Withf("provider not configured")
	}

	return stop.Retry(cfg.MaxRetries, cfg.RetryDelay, func(attempt int) error {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		if err := p.probe(ctx, cfg); err != nil {
			p.log.Warn("kafka open attempt failed", "attempt", attempt+1, "error", err)
			return ErrOpenFailed.With(err)
		}

		w := p.newWriter(cfg)
		p.mu.Lock()
		p.writer = w
		p.mu.Unlock()

		p.log.Info("kafka provider opened", "brokers", cfg.Brokers, "topic", cfg.Topic)
		return nil
	})
}

// Close flushes and closes the writer. It is idempotent.
func (p *Producer) Close() error {
	p.mu.Lock()
	w := p.writer
	p.writer = nil
	p.mu.Unlock()

	if w == nil {
		return nil
	}
	if err := w.Close(); err != nil {
		p.log.Warn("kafka writer close failed", "error", err)
	}
	p.log.Info("kafka provider closed")
	return nil
}

// Write produces payload as a single message.
func (p *Producer) Write(payload []byte) error {
	p.mu.RLock()
	w, timeout := p.writer, p.cfg.Timeout
	p.mu.RUnlock()

	if w == nil {
		return ErrNotOpen
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := w.WriteMessages(ctx, kafkago.Message{Value: payload, Time: time.Now()}); err != nil {
		return ErrWriteFailed.With(err)
	}
	return nil
}

// IsOpen reports whether Open has succeeded and Close has not been called.
func (p *Producer) IsOpen() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.writer != nil
}

// Config returns the configuration built by Init.
func (p *Producer) Config() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// dialBroker opens and closes a connection to the first reachable broker.
func dialBroker(ctx context.Context, cfg Config) error {
	dialer := &kafkago.Dialer{
		Timeout:   cfg.Timeout,
		DualStack: true,
	}
	if cfg.Username != "" {
		dialer.SASLMechanism = plain.Mechanism{Username: cfg.Username, Password: cfg.Password}
	}

	var lastErr error
	for _, broker := range cfg.Brokers {
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err == nil {
			conn.Close() //nolint:errcheck // Probe connection only
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("no broker reachable: %w", lastErr)
}

func newTopicWriter(cfg Config) messageWriter {
	transport := &kafkago.Transport{
		DialTimeout: cfg.Timeout,
	}
	if cfg.Username != "" {
		transport.SASL = plain.Mechanism{Username: cfg.Username, Password: cfg.Password}
	}

	return &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.LeastBytes{},
		Transport:    transport,
		RequiredAcks: kafkago.RequiredAcks(cfg.Acks),
		MaxAttempts:  1,
		BatchSize:    1,

		// Auto-create topics on first produce
		AllowAutoTopicCreation: true,
	}
}
