package mqtt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/sensorstream/internal/fault"
	"github.com/nerrad567/sensorstream/internal/infrastructure/config"
	"github.com/nerrad567/sensorstream/internal/lifecycle"
)

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
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

// ConnectionObserver receives connection lifecycle notifications, typically
// to feed metrics.
type ConnectionObserver interface {
	ConnectAttempt(err error)
	Connected(up bool)
}

// PublishClient owns one broker connection and runs the reconnect state machine.
//
// Lifecycle:
//
//	Unconfigured --Init--> Configured --Open--> Connecting --> Connected
//	Connected --connection lost--> Disconnected --(automatic)--> Connecting
//	any --Close--> Closed
//
// The paho callbacks never touch client state directly: OnConnect sets the
// ConnectionEvent, OnConnectionLost clears it and queues a notification that
// the supervisor goroutine turns into a reconnect. Handlers are tagged with
// the generation of the paho client they belong to, so events from a client
// that has since been torn down are dropped.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Write does not serialise callers; producers sharing one client hold a
//     common publish lock (see stream.Publisher).
type PublishClient struct {
	log       Logger
	newClient ClientFactory
	logicalID uint64

	// retryDelay separates failed connect attempts.
	retryDelay time.Duration

	// conn reflects whether the current paho client is usable.
	conn lifecycle.ConnectionEvent

	// lost carries unexpected-disconnect notifications to the supervisor.
	lost chan error

	// openMu serialises open loops from Open and from the supervisor.
	openMu sync.Mutex

	mu         sync.RWMutex
	cfg        Config
	clientID   string
	state      ConnectionState
	client     pahomqtt.Client
	gen        uint64
	retries    int
	stop       *lifecycle.StopSignal
	closing    bool
	done       chan struct{}
	supervised chan struct{}
	onFatal    func(err error)
	observer   ConnectionObserver
}

// NewPublishClient creates an unconfigured client.
//
// The client owns a private stop signal until AttachStopSignal replaces it
// with the process-wide one.
func NewPublishClient(log Logger) *PublishClient {
	if log == nil {
		log = noopLogger{}
	}
	return &PublishClient{
		log:        log,
		newClient:  pahomqtt.NewClient,
		logicalID:  instanceSeq.Add(1),
		retryDelay: defaultRetryDelay,
		lost:       make(chan error, 1),
		state:      StateUnconfigured,
		stop:       lifecycle.NewStopSignal(),
	}
}

// WithClientFactory replaces the paho client constructor. Intended for tests.
func (p *PublishClient) WithClientFactory(f ClientFactory) *PublishClient {
	p.mu.Lock()
	p.newClient = f
	p.mu.Unlock()
	return p
}

// Init parses the connection string and configures the client.
//
// Recognised keys (aliases in braces): host{host,h}, port{port,p},
// topic{topic,t}, bindaddress{bindaddress,ba}, retrycount{retrycount,rc},
// keepalive{keepalive,ka}, qos{qos,q}, timeout{timeout,tout},
// prefix{prefix,prf}, user{user,u}, password{password,pw}.
//
// host and topic are mandatory. On error no state is changed. No network
// activity happens here.
func (p *PublishClient) Init(connString string) error {
	conn, err := config.ParseConnString(connString)
	if err != nil {
		return ErrInvalidParameter.With(err)
	}

	cfg, warnings, err := parseConfig(conn)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateConnecting || p.state == StateConnected {
		return ErrAlreadyOpen
	}

	for _, w := range warnings {
		p.log.Warn(w)
	}

	p.cfg = cfg
	p.clientID = ClientID(cfg.Prefix, p.logicalID)
	p.state = StateConfigured

	p.log.Info("provider configured",
		"broker", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		"topic", cfg.Topic,
		"qos", cfg.QoS,
		"client_id", p.clientID,
	)
	return nil
}

// AttachStopSignal attaches the process-wide stop signal.
//
// Every retry loop in the client observes it, so a shutdown request halts an
// in-flight Open within one wait.
func (p *PublishClient) AttachStopSignal(stop *lifecycle.StopSignal) {
	if stop == nil {
		return
	}
	p.mu.Lock()
	p.stop = stop
	p.mu.Unlock()
}

// SetOnFatal sets a callback invoked when an automatic reconnect gives up.
// The error passed is non-recoverable.
func (p *PublishClient) SetOnFatal(callback func(err error)) {
	p.mu.Lock()
	p.onFatal = callback
	p.mu.Unlock()
}

// SetMetrics sets the connection observer that feeds metrics.
func (p *PublishClient) SetMetrics(o ConnectionObserver) {
	p.mu.Lock()
	p.observer = o
	p.mu.Unlock()
}

// Open connects to the broker, retrying until success, stop, or retry exhaustion.
//
// Each attempt waits up to the configured timeout for the connection. With
// retrycount N an unreachable broker costs exactly N+1 attempts, after which
// the last error is returned marked non-recoverable. If the stop signal fires
// first, fault.ErrInterrupted is returned. Failed attempts are spaced by
// defaultRetryDelay (one second).
//
// After a successful Open the client reconnects on its own whenever the
// connection drops unexpectedly.
func (p *PublishClient) Open() error {
	p.mu.Lock()
	if p.state == StateUnconfigured {
		p.mu.Unlock()
		return ErrNotConfigured
	}
	p.closing = false
	if p.done == nil {
		p.done = make(chan struct{})
	}
	p.mu.Unlock()

	// Drop a disconnect notification left over from a previous session.
	select {
	case <-p.lost:
	default:
	}

	if err := p.open(); err != nil {
		return err
	}

	p.startSupervisor()
	return nil
}

// open runs the connect loop.
func (p *PublishClient) open() error {
	p.openMu.Lock()
	defer p.openMu.Unlock()

	p.mu.Lock()
	p.retries = 0
	stop := p.stop
	done := p.done
	maxRetries := p.cfg.MaxRetries
	p.mu.Unlock()

	for !stop.IsExiting() {
		p.log.Info("opening output mqtt provider", "retry_count", p.RetryCount())

		err := p.connectOnce(stop, done)
		p.observeAttempt(err)

		if err == nil {
			p.mu.Lock()
			p.retries = 0
			p.state = StateConnected
			p.mu.Unlock()
			p.observeConnected(true)
			p.log.Info("output mqtt provider opened", "client_id", p.ClientID())
			return nil
		}

		if errors.Is(err, fault.ErrInterrupted) {
			p.teardown(StateDisconnected)
			return err
		}

		p.mu.Lock()
		p.retries++
		retries := p.retries
		p.mu.Unlock()

		p.log.Warn("connect attempt failed",
			"code", fault.CodeOf(err),
			"error", err,
			"retry_count", retries,
			"max_retries", maxRetries,
		)

		if retries > maxRetries {
			p.teardown(StateDisconnected)
			return fault.MarkFatal(err)
		}

		if !p.pause(stop, done) {
			break
		}
	}

	p.teardown(StateDisconnected)
	return fault.ErrInterrupted
}

// pause waits retryDelay between attempts and reports false when stop or
// Close interrupted it.
func (p *PublishClient) pause(stop *lifecycle.StopSignal, done <-chan struct{}) bool {
	timer := time.NewTimer(p.retryDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-stop.Done():
		return false
	case <-done:
		return false
	}
}

// connectOnce makes a single connect attempt on a fresh paho client.
func (p *PublishClient) connectOnce(stop *lifecycle.StopSignal, done <-chan struct{}) error {
	p.teardown(StateConnecting)

	p.mu.Lock()
	if p.closing {
		p.mu.Unlock()
		return fault.ErrInterrupted
	}
	p.gen++
	gen := p.gen
	cfg := p.cfg
	opts := buildClientOptions(cfg, p.clientID)
	opts.SetOnConnectHandler(func(pahomqtt.Client) {
		p.handleConnect(gen)
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		p.handleConnectionLost(gen, err)
	})
	client := p.newClient(opts)
	p.client = client
	p.mu.Unlock()

	cancel, release := anyOf(stop.Done(), done)
	defer release()

	timeout := cfg.timeout()
	deadline := time.Now().Add(timeout)
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	token := client.Connect()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return ErrConnectException.With(err)
		}
	case <-timer.C:
		return ErrConnectTimeout
	case <-cancel:
		return fault.ErrInterrupted
	}

	// The connect handler runs asynchronously after the token completes.
	if !p.conn.WaitForStatusUntil(cancel, time.Until(deadline), true) {
		select {
		case <-cancel:
			return fault.ErrInterrupted
		default:
			return ErrConnectTimeout
		}
	}
	return nil
}

// teardown discards the current paho client, if any, and moves to state.
func (p *PublishClient) teardown(state ConnectionState) {
	p.mu.Lock()
	client := p.client
	p.client = nil
	p.gen++
	if !p.closing {
		p.state = state
	}
	p.mu.Unlock()

	p.conn.Clear()
	if client != nil {
		client.Disconnect(0)
	}
}

// handleConnect is called by paho when a connection is established.
func (p *PublishClient) handleConnect(gen uint64) {
	if !p.isCurrent(gen) {
		return
	}
	p.conn.Set()
}

// handleConnectionLost is called by paho when an established connection drops.
// It never fires for a Disconnect requested by Close.
func (p *PublishClient) handleConnectionLost(gen uint64, err error) {
	if !p.isCurrent(gen) {
		return
	}
	p.conn.Clear()

	p.mu.Lock()
	if p.state == StateConnected {
		p.state = StateDisconnected
	}
	p.mu.Unlock()
	p.observeConnected(false)

	select {
	case p.lost <- err:
	default:
		// A reconnect is already pending.
	}
}

func (p *PublishClient) isCurrent(gen uint64) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return gen == p.gen && !p.closing
}

// startSupervisor launches the reconnect goroutine once per Open/Close cycle.
func (p *PublishClient) startSupervisor() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done == nil || p.supervised == p.done {
		return
	}
	p.supervised = p.done
	go p.supervise(p.stop, p.done)
}

// supervise re-enters the open loop after every unexpected disconnect until
// stop, Close, or a non-recoverable reconnect failure.
func (p *PublishClient) supervise(stop *lifecycle.StopSignal, done <-chan struct{}) {
	for {
		select {
		case <-stop.Done():
			return
		case <-done:
			return
		case cause := <-p.lost:
			if stop.IsExiting() || p.isClosing() {
				return
			}
			p.log.Warn("broker connection lost, reconnecting",
				"code", ErrUnexpectedDisconnect.Code,
				"error", ErrUnexpectedDisconnect.With(cause),
			)

			err := p.open()
			if err == nil {
				continue
			}
			if errors.Is(err, fault.ErrInterrupted) {
				return
			}

			p.log.Error("reconnect abandoned",
				"code", fault.CodeOf(err),
				"error", err,
			)
			p.mu.RLock()
			callback := p.onFatal
			p.mu.RUnlock()
			if callback != nil {
				callback(err)
			}
			return
		}
	}
}

func (p *PublishClient) isClosing() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closing
}

// Close gracefully disconnects from the broker.
//
// Close always returns nil. It is idempotent and safe to call before Open.
// When connected it requests a graceful disconnect and waits up to the
// configured timeout for the connection event to clear.
func (p *PublishClient) Close() error {
	p.mu.Lock()
	if p.done != nil {
		close(p.done)
		p.done = nil
	}
	p.closing = true
	client := p.client
	p.client = nil
	p.gen++
	if p.state != StateUnconfigured {
		p.state = StateClosed
	}
	timeout := p.cfg.timeout()
	p.mu.Unlock()

	if client == nil {
		p.conn.Clear()
		return nil
	}

	if p.conn.IsSet() {
		go func() {
			client.Disconnect(defaultDisconnectQuiesce)
			p.conn.Clear()
		}()
		if !p.conn.WaitForStatus(timeout, false) {
			p.log.Warn("graceful disconnect timed out", "timeout", timeout)
			p.conn.Clear()
		}
		p.observeConnected(false)
	} else {
		client.Disconnect(0)
	}

	p.log.Info("output mqtt provider closed")
	return nil
}

// HealthCheck verifies the broker connection is usable.
func (p *PublishClient) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !p.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports whether Write may currently be attempted.
func (p *PublishClient) IsConnected() bool {
	p.mu.RLock()
	state := p.state
	p.mu.RUnlock()
	return state == StateConnected && p.conn.IsSet()
}

// State returns the current connection state.
func (p *PublishClient) State() ConnectionState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// RetryCount returns the number of failed attempts in the current open loop.
func (p *PublishClient) RetryCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.retries
}

// Config returns a copy of the configuration built by Init.
func (p *PublishClient) Config() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// ClientID returns the derived broker client identifier.
func (p *PublishClient) ClientID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.clientID
}

// ConnectionEvent exposes the connection condition for callers that want to
// wait on it.
func (p *PublishClient) ConnectionEvent() *lifecycle.ConnectionEvent {
	return &p.conn
}

func (p *PublishClient) observeAttempt(err error) {
	p.mu.RLock()
	o := p.observer
	p.mu.RUnlock()
	if o != nil && !errors.Is(err, fault.ErrInterrupted) {
		o.ConnectAttempt(err)
	}
}

func (p *PublishClient) observeConnected(up bool) {
	p.mu.RLock()
	o := p.observer
	p.mu.RUnlock()
	if o != nil {
		o.Connected(up)
	}
}

// anyOf returns a channel closed when a or b is closed. release must be
// called to free the watcher goroutine.
func anyOf(a, b <-chan struct{}) (<-chan struct{}, func()) {
	out := make(chan struct{})
	quit := make(chan struct{})
	go func() {
		select {
		case <-a:
		case <-b:
		case <-quit:
			return
		}
		close(out)
	}()
	return out, func() { close(quit) }
}
