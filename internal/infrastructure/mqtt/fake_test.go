package mqtt

import (
	"errors"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// fakeToken is a paho Token that completes immediately or never.
type fakeToken struct {
	done chan struct{}
	err  error
}

func completedToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func pendingToken() *fakeToken {
	return &fakeToken{done: make(chan struct{})}
}

func (t *fakeToken) Wait() bool {
	<-t.done
	return true
}

func (t *fakeToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (t *fakeToken) Done() <-chan struct{} { return t.done }
func (t *fakeToken) Error() error          { return t.err }

var errRefused = errors.New("connection refused")

// fakeBroker scripts the behaviour of every paho client built by its factory.
type fakeBroker struct {
	mu sync.Mutex

	// acceptFrom is the first connect attempt (1-based) that succeeds; 0 never.
	acceptFrom int

	// hang makes connect tokens never complete.
	hang bool

	// silent completes the connect token without calling OnConnect.
	silent bool

	// onAttempt runs at the start of every connect attempt.
	onAttempt func(n int)

	publishErr  error
	publishHang bool

	attempts    int
	published   [][]byte
	disconnects int
	clients     []*fakeClient
}

func (b *fakeBroker) factory(opts *pahomqtt.ClientOptions) pahomqtt.Client {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := &fakeClient{broker: b, opts: opts}
	b.clients = append(b.clients, c)
	return c
}

func (b *fakeBroker) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

func (b *fakeBroker) Published() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]byte(nil), b.published...)
}

func (b *fakeBroker) Disconnects() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disconnects
}

func (b *fakeBroker) last() *fakeClient {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.clients) == 0 {
		return nil
	}
	return b.clients[len(b.clients)-1]
}

// drop simulates the broker closing the current connection.
func (b *fakeBroker) drop() {
	c := b.last()
	if c == nil {
		return
	}
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
	if c.opts.OnConnectionLost != nil {
		go c.opts.OnConnectionLost(c, errors.New("EOF"))
	}
}

// fakeClient implements pahomqtt.Client.
type fakeClient struct {
	broker *fakeBroker
	opts   *pahomqtt.ClientOptions

	mu        sync.Mutex
	connected bool
}

func (c *fakeClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeClient) IsConnectionOpen() bool { return c.IsConnected() }

func (c *fakeClient) Connect() pahomqtt.Token {
	b := c.broker
	b.mu.Lock()
	b.attempts++
	n := b.attempts
	hang := b.hang
	silent := b.silent
	accept := b.acceptFrom > 0 && n >= b.acceptFrom
	hook := b.onAttempt
	b.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	if hang {
		return pendingToken()
	}
	if !accept {
		return completedToken(errRefused)
	}

	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
	if !silent && c.opts.OnConnect != nil {
		go c.opts.OnConnect(c)
	}
	return completedToken(nil)
}

func (c *fakeClient) Disconnect(uint) {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	c.broker.mu.Lock()
	c.broker.disconnects++
	c.broker.mu.Unlock()
}

func (c *fakeClient) Publish(_ string, _ byte, _ bool, payload interface{}) pahomqtt.Token {
	b := c.broker
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.publishHang {
		return pendingToken()
	}
	if b.publishErr != nil {
		return completedToken(b.publishErr)
	}
	if p, ok := payload.([]byte); ok {
		b.published = append(b.published, p)
	}
	return completedToken(nil)
}

func (c *fakeClient) Subscribe(string, byte, pahomqtt.MessageHandler) pahomqtt.Token {
	return completedToken(nil)
}

func (c *fakeClient) SubscribeMultiple(map[string]byte, pahomqtt.MessageHandler) pahomqtt.Token {
	return completedToken(nil)
}

func (c *fakeClient) Unsubscribe(...string) pahomqtt.Token {
	return completedToken(nil)
}

func (c *fakeClient) AddRoute(string, pahomqtt.MessageHandler) {}

func (c *fakeClient) OptionsReader() pahomqtt.ClientOptionsReader {
	return pahomqtt.ClientOptionsReader{}
}

// newTestClient returns a configured client wired to broker.
func newTestClient(broker *fakeBroker, conn string) (*PublishClient, error) {
	p := NewPublishClient(nil).WithClientFactory(broker.factory)
	p.retryDelay = time.Millisecond
	if err := p.Init(conn); err != nil {
		return nil, err
	}
	return p, nil
}
