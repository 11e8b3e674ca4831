// Package provider defines the output provider contract and the registry
// that selects one provider per process by name.
package provider

import (
	"context"

	"github.com/nerrad567/sensorstream/internal/lifecycle"
)

// Output is a sink for transformed sensor payloads.
//
// The lifecycle is Init (parse the connection string), AttachStopSignal,
// Open (connect, retrying as configured), any number of Write calls, Close.
// Open fails with a non-recoverable error once its retries are exhausted and
// with fault.ErrInterrupted when the stop signal fires first.
type Output interface {
	Init(connString string) error
	Open() error
	Close() error
	Write(payload []byte) error
	AttachStopSignal(stop *lifecycle.StopSignal)
}

// FatalNotifier is implemented by outputs that can fail after Open, for
// example when a dropped connection cannot be restored.
type FatalNotifier interface {
	SetOnFatal(fn func(err error))
}

// HealthChecker is implemented by outputs that can probe their backend.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

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

// Factory builds an unconfigured Output.
type Factory func(log Logger) (Output, error)
