package stream

import (
	"sync"
	"time"
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

// Recorder receives per-sensor pipeline outcomes. *metrics.Metrics
// implements it.
type Recorder interface {
	PublishResult(sensor string, took time.Duration, err error)
	SampleResult(sensor string, err error)
}

type noopRecorder struct{}

func (noopRecorder) PublishResult(string, time.Duration, error) {}
func (noopRecorder) SampleResult(string, error)                 {}

// Writer is the part of provider.Output a Publisher needs.
type Writer interface {
	Write(payload []byte) error
}

// Publisher serialises writes from all sensor loops onto one output.
type Publisher struct {
	mu  sync.Mutex
	out Writer
	rec Recorder
}

// NewPublisher wraps out. rec may be nil.
func NewPublisher(out Writer, rec Recorder) *Publisher {
	if rec == nil {
		rec = noopRecorder{}
	}
	return &Publisher{out: out, rec: rec}
}

// Publish writes payload on behalf of sensor while holding the publish lock.
func (p *Publisher) Publish(sensor string, payload []byte) error {
	p.mu.Lock()
	start := time.Now()
	err := p.out.Write(payload)
	took := time.Since(start)
	p.mu.Unlock()

	p.rec.PublishResult(sensor, took, err)
	return err
}
