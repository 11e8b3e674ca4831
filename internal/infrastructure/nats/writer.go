package nats

import (
	"sync"
	"time"

	natsgo "github.com/nats-io/nats.go"

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

// conn is the part of *natsgo.Conn the writer uses.
type conn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	IsConnected() bool
	Close()
}

// connHandlers are the connection callbacks the writer installs.
type connHandlers struct {
	disconnected func(err error)
	reconnected  func()
	closed       func()
}

// Writer is the "nats" output provider. Every Write publishes the payload on
// the configured subject and flushes, so a write only succeeds once the
// server has the message.
//
// The client reconnects by itself after a drop. When it gives up, the fatal
// callback set with SetOnFatal receives ErrConnectionClosed.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Writer struct {
	log Logger

	// dial connects to the server; replaced in tests.
	dial func(cfg Config, h connHandlers) (conn, error)

	mu         sync.RWMutex
	cfg        Config
	configured bool
	closing    bool
	stop       *lifecycle.StopSignal
	nc         conn
	onFatal    func(error)
}

// New creates an unconfigured NATS writer.
func New(log Logger) *Writer {
	if log == nil {
		log = noopLogger{}
	}
	return &Writer{
		log:  log,
		dial: dialServer,
		stop: lifecycle.NewStopSignal(),
	}
}

// Init parses the connection string. Options (aliases in braces):
// url{url,u}=nats://127.0.0.1:4222, subject{subject,t} (mandatory),
// name{name,n}=sensorstream, timeout{timeout,tout}=5,
// retrycount{retrycount,rc}=3, retrydelay{retrydelay,rd}=2.
func (w *Writer) Init(connString string) error {
	cfg, err := parseConfig(connString)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.cfg = cfg
	w.configured = true
	w.mu.Unlock()

	w.log.Info("nats provider configured", "url", cfg.URL, "subject", cfg.Subject)
	return nil
}

// AttachStopSignal attaches the process-wide stop signal observed by Open.
func (w *Writer) AttachStopSignal(stop *lifecycle.StopSignal) {
	if stop == nil {
		return
	}
	w.mu.Lock()
	w.stop = stop
	w.mu.Unlock()
}

// SetOnFatal sets the callback invoked when the connection is lost for good.
func (w *Writer) SetOnFatal(fn func(error)) {
	w.mu.Lock()
	w.onFatal = fn
	w.mu.Unlock()
}

// Open connects to the server.
func (w *Writer) Open() error {
	w.mu.Lock()
	cfg, configured, stop := w.cfg, w.configured, w.stop
	w.closing = false
	w.mu.Unlock()

	if !configured {
		return ErrMissingOption.Withf("provider not configured")
	}

	handlers := connHandlers{
		disconnected: func(err error) {
			w.log.Warn("nats connection lost", "error", err)
		},
		reconnected: func() {
			w.log.Info("nats connection restored")
		},
		closed: w.handleClosed,
	}

	return stop.Retry(cfg.MaxRetries, cfg.RetryDelay, func(attempt int) error {
		nc, err := w.dial(cfg, handlers)
		if err != nil {
			w.log.Warn("nats open attempt failed", "attempt", attempt+1, "error", err)
			return ErrOpenFailed.With(err)
		}

		w.mu.Lock()
		w.nc = nc
		w.mu.Unlock()

		w.log.Info("nats provider opened", "url", cfg.URL)
		return nil
	})
}

// handleClosed runs when the client closes the connection. Only a close we
// did not ask for is fatal.
func (w *Writer) handleClosed() {
	w.mu.Lock()
	closing := w.closing
	onFatal := w.onFatal
	w.nc = nil
	w.mu.Unlock()

	if closing {
		return
	}
	w.log.Error("nats connection closed", "code", ErrConnectionClosed.Code)
	if onFatal != nil {
		onFatal(ErrConnectionClosed)
	}
}

// Close closes the connection. It is idempotent.
func (w *Writer) Close() error {
	w.mu.Lock()
	nc := w.nc
	w.nc = nil
	w.closing = true
	w.mu.Unlock()

	if nc != nil {
		nc.Close()
		w.log.Info("nats provider closed")
	}
	return nil
}

// Write publishes payload and flushes it to the server.
func (w *Writer) Write(payload []byte) error {
	w.mu.RLock()
	nc, cfg := w.nc, w.cfg
	w.mu.RUnlock()

	if nc == nil {
		return ErrNotOpen
	}

	if err := nc.Publish(cfg.Subject, payload); err != nil {
		return ErrWriteFailed.With(err)
	}
	if err := nc.FlushTimeout(cfg.Timeout); err != nil {
		return ErrWriteFailed.With(err)
	}
	return nil
}

// IsConnected reports whether the client currently has a live connection.
func (w *Writer) IsConnected() bool {
	w.mu.RLock()
	nc := w.nc
	w.mu.RUnlock()
	return nc != nil && nc.IsConnected()
}

// Config returns the configuration built by Init.
func (w *Writer) Config() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cfg
}

func dialServer(cfg Config, h connHandlers) (conn, error) {
	return natsgo.Connect(cfg.URL,
		natsgo.Name(cfg.Name),
		natsgo.Timeout(cfg.Timeout),
		natsgo.MaxReconnects(cfg.MaxRetries),
		natsgo.ReconnectWait(cfg.RetryDelay),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) { h.disconnected(err) }),
		natsgo.ReconnectHandler(func(*natsgo.Conn) { h.reconnected() }),
		natsgo.ClosedHandler(func(*natsgo.Conn) { h.closed() }),
	)
}
