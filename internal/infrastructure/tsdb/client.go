package tsdb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/sensorstream/internal/lifecycle"
)

// Logger is the subset of slog used by the provider.
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

// Client writes sensor readings to VictoriaMetrics using InfluxDB line protocol.
//
// Lines are batched and flushed either when the batch reaches the configured
// size or when the flush interval timer fires. A size-triggered flush runs in
// the calling Write and its error is returned; a timer flush reports errors
// through the OnError callback.
//
// A Client is safe for concurrent use.
type Client struct {
	log        Logger
	httpClient *http.Client

	mu         sync.RWMutex
	cfg        Config
	configured bool
	connected  bool
	stop       *lifecycle.StopSignal

	// Batching
	batch     []string
	batchMu   sync.Mutex
	flushMu   sync.Mutex
	flushTick *time.Ticker
	done      chan struct{}
	wg        sync.WaitGroup

	// onError receives timer flush failures.
	onError func(err error)
}

// New creates an unconfigured VictoriaMetrics provider.
func New(log Logger) *Client {
	if log == nil {
		log = noopLogger{}
	}
	c := &Client{
		log:        log,
		httpClient: &http.Client{},
		stop:       lifecycle.NewStopSignal(),
	}
	c.onError = func(err error) {
		c.log.Error("victoriametrics background flush failed", "error", err)
	}
	return c
}

// Init parses the connection string. Options (aliases in braces):
// url{url,u} (mandatory), measurement{measurement,m}, batchsize{batchsize,bs},
// flushinterval{flushinterval,fi}, timeout{timeout,tout},
// retrycount{retrycount,rc}, retrydelay{retrydelay,rd}.
func (c *Client) Init(connString string) error {
	cfg, err := parseConfig(connString)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.cfg = cfg
	c.configured = true
	c.mu.Unlock()

	c.log.Info("victoriametrics provider configured",
		"url", cfg.URL,
		"measurement", cfg.Measurement,
		"batch_size", cfg.BatchSize,
	)
	return nil
}

// AttachStopSignal attaches the process-wide stop signal observed by Open.
func (c *Client) AttachStopSignal(stop *lifecycle.StopSignal) {
	if stop == nil {
		return
	}
	c.mu.Lock()
	c.stop = stop
	c.mu.Unlock()
}

// Open verifies connectivity via GET /health, retrying up to the configured
// retry count, then starts the background flush goroutine.
func (c *Client) Open() error {
	c.mu.RLock()
	cfg := c.cfg
	configured := c.configured
	connected := c.connected
	stop := c.stop
	c.mu.RUnlock()

	if !configured {
		return ErrMissingOption.Withf("provider not configured")
	}
	if connected {
		return nil
	}

	err := stop.Retry(cfg.MaxRetries, cfg.RetryDelay, func(attempt int) error {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		if err := c.ping(ctx, cfg.URL); err != nil {
			c.log.Warn("victoriametrics open attempt failed", "attempt", attempt+1, "error", err)
			return ErrOpenFailed.With(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.batchMu.Lock()
	c.batch = make([]string, 0, cfg.BatchSize)
	c.batchMu.Unlock()

	c.mu.Lock()
	c.connected = true
	c.flushTick = time.NewTicker(cfg.FlushInterval)
	c.done = make(chan struct{})
	c.mu.Unlock()

	c.wg.Add(1)
	go c.flushLoop(c.flushTick, c.done)

	c.log.Info("victoriametrics provider opened", "url", cfg.URL)
	return nil
}

// flushLoop flushes on every tick until done closes.
func (c *Client) flushLoop(tick *time.Ticker, done <-chan struct{}) {
	defer c.wg.Done()
	for {
		select {
		case <-tick.C:
			if err := c.Flush(); err != nil {
				c.reportError(err)
			}
		case <-done:
			return
		}
	}
}

// Close stops the flush goroutine and flushes any remaining lines.
// It is idempotent.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return nil
	}
	c.connected = false
	c.flushTick.Stop()
	close(c.done)
	c.mu.Unlock()

	c.wg.Wait()

	if err := c.Flush(); err != nil {
		c.log.Warn("victoriametrics final flush failed", "error", err)
	}
	c.log.Info("victoriametrics provider closed")
	return nil
}

// HealthCheck probes /health.
func (c *Client) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	url := c.cfg.URL
	connected := c.connected
	c.mu.RUnlock()

	if !connected {
		return ErrNotOpen
	}
	return c.ping(ctx, url)
}

func (c *Client) ping(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/health", nil)
	if err != nil {
		return fmt.Errorf("victoriametrics health check: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("victoriametrics health check: %w", err)
	}
	defer resp.Body.Close()
	// drain so the connection is reused
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("victoriametrics health check: status %d", resp.StatusCode)
	}
	return nil
}

// IsOpen reports whether Open has succeeded and Close has not been called.
func (c *Client) IsOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Config returns the configuration built by Init.
func (c *Client) Config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// SetOnError replaces the callback invoked when a timer flush fails.
func (c *Client) SetOnError(callback func(err error)) {
	if callback == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = callback
}

// addLine appends a line to the batch and reports whether it is now full.
func (c *Client) addLine(line string, size int) bool {
	c.batchMu.Lock()
	defer c.batchMu.Unlock()
	c.batch = append(c.batch, line)
	return len(c.batch) >= size
}

// Flush sends all pending lines to VictoriaMetrics in one POST.
// Only one flush executes at a time.
func (c *Client) Flush() error {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()

	c.batchMu.Lock()
	if len(c.batch) == 0 {
		c.batchMu.Unlock()
		return nil
	}
	// Swap batch out under lock
	lines := c.batch
	c.batch = make([]string, 0, cap(lines))
	c.batchMu.Unlock()

	c.mu.RLock()
	cfg := c.cfg
	c.mu.RUnlock()

	body := strings.Join(lines, "\n")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL+"/write", bytes.NewBufferString(body))
	if err != nil {
		return ErrWriteFailed.With(err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ErrWriteFailed.With(err)
	}
	defer resp.Body.Close()
	// drain so the connection is reused
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return ErrWriteFailed.Withf("HTTP %d", resp.StatusCode)
	}

	c.log.Debug("victoriametrics batch flushed", "lines", len(lines))
	return nil
}

// reportError delivers an error to the onError callback.
func (c *Client) reportError(err error) {
	c.mu.RLock()
	callback := c.onError
	c.mu.RUnlock()

	if callback != nil {
		callback(err)
	}
}
