package influxdb

import (
	"context"
	"fmt"
	"sync"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

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

// Provider writes sensor readings to an InfluxDB v2 bucket.
//
// Each Write is a blocking write of one point, so a failed write is reported
// to the caller's publish policy rather than lost in a background batch.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Provider struct {
	log Logger

	mu         sync.RWMutex
	cfg        Config
	configured bool
	stop       *lifecycle.StopSignal
	client     influxdb2.Client
	writeAPI   api.WriteAPIBlocking
}

// New creates an unconfigured InfluxDB provider.
func New(log Logger) *Provider {
	if log == nil {
		log = noopLogger{}
	}
	return &Provider{
		log:  log,
		stop: lifecycle.NewStopSignal(),
	}
}

// Init parses the connection string. Options (aliases in braces):
// url{url,u}, token{token,tk}, org{org,o}, bucket{bucket,b} (all mandatory),
// measurement{measurement,m}, timeout{timeout,tout}, retrycount{retrycount,rc},
// retrydelay{retrydelay,rd}.
func (p *Provider) Init(connString string) error {
	cfg, err := parseConfig(connString)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.cfg = cfg
	p.configured = true
	p.mu.Unlock()

	p.log.Info("influxdb provider configured",
		"url", cfg.URL,
		"org", cfg.Org,
		"bucket", cfg.Bucket,
		"measurement", cfg.Measurement,
	)
	return nil
}

// AttachStopSignal attaches the process-wide stop signal observed by Open.
func (p *Provider) AttachStopSignal(stop *lifecycle.StopSignal) {
	if stop == nil {
		return
	}
	p.mu.Lock()
	p.stop = stop
	p.mu.Unlock()
}

// Open creates the client and verifies the server with a ping, retrying up
// to the configured retry count.
func (p *Provider) Open() error {
	p.mu.RLock()
	cfg := p.cfg
	configured := p.configured
	stop := p.stop
	p.mu.RUnlock()

	if !configured {
		return ErrMissingOption.Withf("provider not configured")
	}

	return stop.Retry(cfg.MaxRetries, cfg.RetryDelay, func(attempt int) error {
		client := influxdb2.NewClientWithOptions(
			cfg.URL,
			cfg.Token,
			influxdb2.DefaultOptions().
				SetHTTPRequestTimeout(uint(cfg.Timeout.Seconds())), // #nosec G115 -- positive by construction
		)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		healthy, err := client.Ping(ctx)
		if err == nil && !healthy {
			err = fmt.Errorf("server not healthy")
		}
		if err != nil {
			client.Close()
			p.log.Warn("influxdb open attempt failed", "attempt", attempt+1, "error", err)
			return ErrOpenFailed.With(err)
		}

		p.mu.Lock()
		p.client = client
		p.writeAPI = client.WriteAPIBlocking(cfg.Org, cfg.Bucket)
		p.mu.Unlock()

		p.log.Info("influxdb provider opened", "url", cfg.URL)
		return nil
	})
}

// Close releases the client. It is idempotent.
func (p *Provider) Close() error {
	p.mu.Lock()
	client := p.client
	p.client = nil
	p.writeAPI = nil
	p.mu.Unlock()

	if client != nil {
		client.Close()
		p.log.Info("influxdb provider closed")
	}
	return nil
}

// HealthCheck pings the server.
func (p *Provider) HealthCheck(ctx context.Context) error {
	p.mu.RLock()
	client := p.client
	p.mu.RUnlock()

	if client == nil {
		return ErrNotOpen
	}

	healthy, err := client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("influxdb health check failed: %w", err)
	}
	if !healthy {
		return fmt.Errorf("influxdb health check failed: server not healthy")
	}
	return nil
}

// IsOpen reports whether Open has succeeded and Close has not been called.
func (p *Provider) IsOpen() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.client != nil
}

// Config returns the configuration built by Init.
func (p *Provider) Config() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}
