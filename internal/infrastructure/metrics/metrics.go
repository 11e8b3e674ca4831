// Package metrics exposes sensorstream counters in the Prometheus format.
//
// A Metrics value owns its own registry, so tests and multiple instances do
// not collide on the default registerer.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sensorstream"

// Result label values.
const (
	resultOK    = "ok"
	resultError = "error"
)

// Logger interface for optional logging support.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Metrics holds every collector sensorstream reports.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Metrics struct {
	reg *prometheus.Registry

	connectAttempts *prometheus.CounterVec
	connected       prometheus.Gauge
	publishes       *prometheus.CounterVec
	publishLatency  *prometheus.HistogramVec
	samples         *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		connectAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_attempts_total",
			Help:      "Broker connection attempts by result.",
		}, []string{"result"}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected",
			Help:      "1 while the output provider holds a live broker connection.",
		}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publishes_total",
			Help:      "Payload writes to the output provider by sensor and result.",
		}, []string{"sensor", "result"}),
		publishLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_latency_seconds",
			Help:      "Output provider write latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"sensor"}),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Sensor sampling cycles by sensor and result.",
		}, []string{"sensor", "result"}),
	}

	m.reg.MustRegister(
		m.connectAttempts,
		m.connected,
		m.publishes,
		m.publishLatency,
		m.samples,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ConnectAttempt records one broker connection attempt.
func (m *Metrics) ConnectAttempt(err error) {
	m.connectAttempts.WithLabelValues(result(err)).Inc()
}

// Connected records the connection state.
func (m *Metrics) Connected(up bool) {
	if up {
		m.connected.Set(1)
		return
	}
	m.connected.Set(0)
}

// PublishResult records one write of a sensor payload.
func (m *Metrics) PublishResult(sensor string, took time.Duration, err error) {
	m.publishes.WithLabelValues(sensor, result(err)).Inc()
	m.publishLatency.WithLabelValues(sensor).Observe(took.Seconds())
}

// SampleResult records one sampling cycle.
func (m *Metrics) SampleResult(sensor string, err error) {
	m.samples.WithLabelValues(sensor, result(err)).Inc()
}

// Handler serves the registry in the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Server is a running /metrics listener.
type Server struct {
	srv  *http.Server
	addr net.Addr
}

// Serve listens on addr and serves /metrics in the background. The listen
// error, if any, is returned synchronously.
func (m *Metrics) Serve(addr string, log Logger) (*Server, error) {
	if log == nil {
		log = noopLogger{}
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics http server", "error", err)
		}
	}()
	log.Info("metrics server started", "addr", ln.Addr().String())

	return &Server{srv: srv, addr: ln.Addr()}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.addr.String()
}

// Shutdown stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultOK
}
