package tsdb_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/sensorstream/internal/fault"
	"github.com/nerrad567/sensorstream/internal/infrastructure/tsdb"
	"github.com/nerrad567/sensorstream/internal/lifecycle"
)

// fakeVM serves /health and /write like a single-node VictoriaMetrics.
type fakeVM struct {
	mu        sync.Mutex
	posts     []string
	rejectAll bool
}

func (f *fakeVM) handler(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/health":
		_, _ = w.Write([]byte("OK"))
	case "/write":
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.rejectAll {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.posts = append(f.posts, string(body))
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeVM) Posts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.posts...)
}

func newServer(t *testing.T) (*fakeVM, *httptest.Server) {
	t.Helper()
	f := &fakeVM{}
	srv := httptest.NewServer(http.HandlerFunc(f.handler))
	t.Cleanup(srv.Close)
	return f, srv
}

func openClient(t *testing.T, conn string) *tsdb.Client {
	t.Helper()
	c := tsdb.New(nil)
	if err := c.Init(conn); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := c.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestInit(t *testing.T) {
	tests := []struct {
		name    string
		conn    string
		wantErr error
	}{
		{"url only", "url=http://x:8428", nil},
		{"aliases", "u=http://x:8428/;m=air;bs=10;fi=2;tout=3;rc=1;rd=1", nil},
		{"missing url", "m=air", tsdb.ErrMissingOption},
		{"bad batch size", "url=http://x;bs=many", tsdb.ErrInvalidOption},
		{"bad timeout", "url=http://x;tout=soon", tsdb.ErrInvalidOption},
		{"malformed", "url", tsdb.ErrInvalidOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tsdb.New(nil).Init(tt.conn)
			if tt.wantErr == nil && err != nil {
				t.Errorf("Init() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Init() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestInitDefaults(t *testing.T) {
	c := tsdb.New(nil)
	if err := c.Init("u=http://x:8428/;bs=0"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	cfg := c.Config()
	if cfg.URL != "http://x:8428" {
		t.Errorf("URL = %q, want trailing slash trimmed", cfg.URL)
	}
	if cfg.Measurement != "sensor" {
		t.Errorf("Measurement = %q, want sensor", cfg.Measurement)
	}
	if cfg.BatchSize != 1 {
		t.Errorf("BatchSize = %d, want 1", cfg.BatchSize)
	}
	if cfg.FlushInterval != time.Second {
		t.Errorf("FlushInterval = %v, want 1s", cfg.FlushInterval)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
}

func TestOpenWriteClose(t *testing.T) {
	f, srv := newServer(t)
	c := openClient(t, "url="+srv.URL+";m=air")

	if !c.IsOpen() {
		t.Error("IsOpen() = false after Open()")
	}

	payload := `{"sensor":"co2","now":"2026-10-16T09:12:44Z","co2":415.2}`
	if err := c.Write([]byte(payload)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	posts := f.Posts()
	if len(posts) != 1 {
		t.Fatalf("server received %d posts, want 1", len(posts))
	}
	want := "air,sensor=co2 co2=415.2 1792141964000000000"
	if posts[0] != want {
		t.Errorf("post = %q, want %q", posts[0], want)
	}

	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := c.Write([]byte(payload)); !errors.Is(err, tsdb.ErrNotOpen) {
		t.Errorf("Write() after Close error = %v, want ErrNotOpen", err)
	}
}

func TestWrite_Batched(t *testing.T) {
	f, srv := newServer(t)
	c := openClient(t, "url="+srv.URL+";bs=3;fi=60")

	for i := 0; i < 2; i++ {
		if err := c.Write([]byte(`{"sensor":"co2","co2":400}`)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if n := len(f.Posts()); n != 0 {
		t.Fatalf("posts before batch full = %d, want 0", n)
	}

	if err := c.Write([]byte(`{"sensor":"co2","co2":401}`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	posts := f.Posts()
	if len(posts) != 1 {
		t.Fatalf("posts = %d, want 1", len(posts))
	}
	if got := strings.Count(posts[0], "\n") + 1; got != 3 {
		t.Errorf("lines in post = %d, want 3", got)
	}
}

func TestClose_FlushesPending(t *testing.T) {
	f, srv := newServer(t)

	c := tsdb.New(nil)
	if err := c.Init("url=" + srv.URL + ";bs=100;fi=60"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := c.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := c.Write([]byte(`{"sensor":"co2","co2":400}`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if n := len(f.Posts()); n != 1 {
		t.Errorf("posts after Close = %d, want 1", n)
	}
}

func TestTimerFlush_ReportsError(t *testing.T) {
	f, srv := newServer(t)
	f.rejectAll = true

	c := tsdb.New(nil)
	if err := c.Init("url=" + srv.URL + ";bs=100;fi=1"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	errCh := make(chan error, 1)
	c.SetOnError(func(err error) {
		select {
		case errCh <- err:
		default:
		}
	})
	if err := c.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer c.Close()

	if err := c.Write([]byte(`{"sensor":"co2","co2":400}`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, tsdb.ErrWriteFailed) {
			t.Errorf("onError() error = %v, want ErrWriteFailed", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timer flush did not report an error")
	}
}

func TestWriteErrors(t *testing.T) {
	f, srv := newServer(t)
	c := openClient(t, "url="+srv.URL)

	if err := c.Write([]byte("aGVsbG8=")); !errors.Is(err, tsdb.ErrInvalidPayload) {
		t.Errorf("Write(base64) error = %v, want ErrInvalidPayload", err)
	}

	f.mu.Lock()
	f.rejectAll = true
	f.mu.Unlock()

	err := c.Write([]byte(`{"sensor":"co2","co2":1}`))
	if !errors.Is(err, tsdb.ErrWriteFailed) {
		t.Errorf("Write() error = %v, want ErrWriteFailed", err)
	}
	if got := fault.CodeOf(err); got != 106 {
		t.Errorf("CodeOf() = %d, want 106", got)
	}
}

func TestWriteBeforeOpen(t *testing.T) {
	c := tsdb.New(nil)
	if err := c.Write([]byte(`{"co2":1}`)); !errors.Is(err, tsdb.ErrNotOpen) {
		t.Errorf("Write() error = %v, want ErrNotOpen", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() before Open error = %v", err)
	}
}

func TestOpenNotConfigured(t *testing.T) {
	if err := tsdb.New(nil).Open(); !errors.Is(err, tsdb.ErrMissingOption) {
		t.Errorf("Open() error = %v, want ErrMissingOption", err)
	}
}

func TestOpenUnhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := tsdb.New(nil)
	if err := c.Init("url=" + srv.URL + ";rc=1;rd=0;tout=1"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	err := c.Open()
	if !errors.Is(err, tsdb.ErrOpenFailed) {
		t.Fatalf("Open() error = %v, want ErrOpenFailed", err)
	}
	if fault.IsRecoverable(err) {
		t.Error("IsRecoverable() = true after retries exhausted")
	}
	if c.IsOpen() {
		t.Error("IsOpen() = true after failed Open")
	}
}

func TestOpenStopped(t *testing.T) {
	_, srv := newServer(t)

	stop := lifecycle.NewStopSignal()
	stop.Stop()

	c := tsdb.New(nil)
	if err := c.Init("url=" + srv.URL); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	c.AttachStopSignal(stop)

	if err := c.Open(); !errors.Is(err, fault.ErrInterrupted) {
		t.Errorf("Open() error = %v, want ErrInterrupted", err)
	}
}

func TestHealthCheck(t *testing.T) {
	_, srv := newServer(t)
	c := openClient(t, "url="+srv.URL)

	if err := c.HealthCheck(t.Context()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
	if err := tsdb.New(nil).HealthCheck(t.Context()); !errors.Is(err, tsdb.ErrNotOpen) {
		t.Errorf("HealthCheck() unopened error = %v, want ErrNotOpen", err)
	}
}
