package redis

import (
	"context"
	"sync"

	goredis "github.com/redis/go-redis/v9"

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

// commander is the part of *goredis.Client the publisher uses.
type commander interface {
	Ping(ctx context.Context) *goredis.StatusCmd
	Publish(ctx context.Context, channel string, message any) *goredis.IntCmd
	Close() error
}

// Publisher is the "redis" output provider. Every Write is a PUBLISH of the
// payload on the configured channel.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Publisher struct {
	log Logger

	// newClient builds the client; replaced in tests.
	newClient func(cfg Config) commander

	mu         sync.RWMutex
	cfg        Config
	configured bool
	stop       *lifecycle.StopSignal
	client     commander
}

// New creates an unconfigured Redis publisher.
func New(log Logger) *Publisher {
	if log == nil {
		log = noopLogger{}
	}
	return &Publisher{
		log:       log,
		newClient: newRedisClient,
		stop:      lifecycle.NewStopSignal(),
	}
}

// Init parses the connection string. Options (aliases in braces):
// addr{addr,a}=localhost:6379, channel{channel,t} (mandatory), db=0,
// password{password,pw}, timeout{timeout,tout}=3,
// retrycount{retrycount,rc}=3, retrydelay{retrydelay,rd}=2.
func (p *Publisher) Init(connString string) error {
	cfg, err := parseConfig(connString)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.cfg = cfg
	p.configured = true
	p.mu.Unlock()

	p.log.Info("redis provider configured", "addr", cfg.Addr, "channel", cfg.Channel, "db", cfg.DB)
	return nil
}

// AttachStopSignal attaches the process-wide stop signal observed by Open.
func (p *Publisher) AttachStopSignal(stop *lifecycle.StopSignal) {
	if stop == nil {
		return
	}
	p.mu.Lock()
	p.stop = stop
	p.mu.Unlock()
}

// Open creates the client and verifies the server with PING.
func (p *Publisher) Open() error {
	p.mu.RLock()
	cfg, configured, stop := p.cfg, p.configured, p.stop
	p.mu.RUnlock()

	if !configured {
		return ErrMissingOption.Withf("provider not configured")
	}

	return stop.Retry(cfg.MaxRetries, cfg.RetryDelay, func(attempt int) error {
		client := p.newClient(cfg)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			client.Close() //nolint:errcheck // Best effort cleanup on error path
			p.log.Warn("redis open attempt failed", "attempt", attempt+1, "error", err)
			return ErrOpenFailed.With(err)
		}

		p.mu.Lock()
		p.client = client
		p.mu.Unlock()

		p.log.Info("redis provider opened", "addr", cfg.Addr)
		return nil
	})
}

// Close closes the client. It is idempotent.
func (p *Publisher) Close() error {
	p.mu.Lock()
	client := p.client
	p.client = nil
	p.mu.Unlock()

	if client == nil {
		return nil
	}
	if err := client.Close(); err != nil {
		p.log.Warn("redis client close failed", "error", err)
	}
	p.log.Info("redis provider closed")
	return nil
}

// Write publishes payload on the channel. A message nobody is subscribed to
// is still a successful write.
func (p *Publisher) Write(payload []byte) error {
	p.mu.RLock()
	client, cfg := p.client, p.cfg
	p.mu.RUnlock()

	if client == nil {
		return ErrNotOpen
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	receivers, err := client.Publish(ctx, cfg.Channel, payload).Result()
	if err != nil {
		return ErrWriteFailed.With(err)
	}
	p.log.Debug("redis publish", "channel", cfg.Channel, "receivers", receivers)
	return nil
}

// HealthCheck pings the server.
func (p *Publisher) HealthCheck(ctx context.Context) error {
	p.mu.RLock()
	client := p.client
	p.mu.RUnlock()

	if client == nil {
		return ErrNotOpen
	}
	return client.Ping(ctx).Err()
}

// Config returns the configuration built by Init.
func (p *Publisher) Config() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

func newRedisClient(cfg Config) commander {
	return goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})
}
