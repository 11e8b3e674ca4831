package stream

import (
	"context"
	"errors"
	"time"

	"github.com/nerrad567/sensorstream/internal/fault"
	"github.com/nerrad567/sensorstream/internal/lifecycle"
	"github.com/nerrad567/sensorstream/internal/pubstack"
	"github.com/nerrad567/sensorstream/internal/sensor"
)

// Sampling retry defaults.
const (
	DefaultSampleRetries = 5
	DefaultSampleDelay   = 500 * time.Millisecond
)

// Loop samples one sensor at a fixed interval and publishes each reading.
type Loop struct {
	Name      string
	Reader    sensor.Reader
	Interval  time.Duration
	Stage     pubstack.Stage
	Publisher *Publisher
	Policy    RetryPolicy
	Stop      *lifecycle.StopSignal
	Log       Logger
	Metrics   Recorder

	// SampleRetries and SampleDelay bound the reads of one cycle.
	SampleRetries int
	SampleDelay   time.Duration

	// Verbose logs each payload before and after the transform stage.
	Verbose bool
}

// Run loops until the stop signal is set, returning nil, or until a publish
// fails with a non-recoverable error, returning that error.
func (l *Loop) Run() error {
	l.defaults()

	ctx, cancel := stopContext(l.Stop)
	defer cancel()

	l.Log.Info("sensor loop started", "interval", l.Interval.String())
	defer l.Log.Info("sensor loop stopped")

	for !l.Stop.IsExiting() {
		reading, err := l.sample(ctx)
		switch {
		case errors.Is(err, fault.ErrInterrupted):
			return nil
		case err != nil:
			l.Metrics.SampleResult(l.Name, err)
			l.Log.Warn("sampling failed, skipping cycle",
				"retries", l.SampleRetries,
				"code", fault.CodeOf(err),
				"error", err,
			)
		default:
			l.Metrics.SampleResult(l.Name, nil)
			if err := l.publish(reading); err != nil {
				if errors.Is(err, fault.ErrInterrupted) {
					return nil
				}
				return err
			}
		}

		if l.Stop.Sleep(l.Interval) {
			return nil
		}
	}
	return nil
}

// sample reads the sensor, retrying a bounded number of times.
func (l *Loop) sample(ctx context.Context) (sensor.Reading, error) {
	var reading sensor.Reading
	err := l.Stop.Retry(l.SampleRetries, l.SampleDelay, func(attempt int) error {
		r, err := l.Reader.Sample(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return fault.ErrInterrupted
			}
			l.Log.Debug("sample attempt failed", "attempt", attempt+1, "error", err)
			return err
		}
		reading = r
		return nil
	})
	if err != nil && ctx.Err() != nil {
		return sensor.Reading{}, fault.ErrInterrupted
	}
	return reading, err
}

// publish formats, transforms and writes one reading. Only a stop or a
// non-recoverable output error is returned; everything else drops the
// reading with a warning.
func (l *Loop) publish(reading sensor.Reading) error {
	payload, err := reading.Payload()
	if err != nil {
		l.Log.Warn("cannot format reading", "error", err)
		return nil
	}
	if l.Verbose {
		l.Log.Debug("payload", "stage", "in", "payload", string(payload))
	}

	out, err := l.Stage.Transform(payload)
	if err != nil {
		l.Log.Warn("transform failed, skipping cycle", "code", fault.CodeOf(err), "error", err)
		return nil
	}
	if l.Verbose {
		l.Log.Debug("payload", "stage", "out", "payload", string(out))
	}

	err = l.Policy.Do(l.Stop, func() error {
		return l.Publisher.Publish(l.Name, out)
	})
	switch {
	case err == nil:
		l.Log.Debug("pub ok", "bytes", len(out))
		return nil
	case errors.Is(err, fault.ErrInterrupted):
		return err
	case !fault.IsRecoverable(err):
		l.Log.Error("publish failed", "code", fault.CodeOf(err), "error", err)
		return err
	default:
		l.Log.Warn("publish failed, reading dropped",
			"policy", l.Policy.Mode,
			"code", fault.CodeOf(err),
			"error", err,
		)
		return nil
	}
}

func (l *Loop) defaults() {
	if l.Stop == nil {
		l.Stop = lifecycle.NewStopSignal()
	}
	if l.Log == nil {
		l.Log = noopLogger{}
	}
	if l.Metrics == nil {
		l.Metrics = noopRecorder{}
	}
	if l.Stage == nil {
		l.Stage = &pubstack.Passthrough{}
	}
	if l.SampleRetries < 0 {
		l.SampleRetries = 0
	}
}

// stopContext returns a context cancelled when stop is set.
func stopContext(stop *lifecycle.StopSignal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-stop.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
