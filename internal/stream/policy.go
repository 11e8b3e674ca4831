package stream

import (
	"time"

	"github.com/nerrad567/sensorstream/internal/fault"
	"github.com/nerrad567/sensorstream/internal/infrastructure/config"
	"github.com/nerrad567/sensorstream/internal/lifecycle"
)

// RetryPolicy decides how often a failed publish is repeated.
//
// Only recoverable errors are retried. A non-recoverable error is returned
// at once, and a stop between attempts returns fault.ErrInterrupted.
type RetryPolicy struct {
	// Mode is config.PolicyRetry, config.PolicyOnce or config.PolicyBounded.
	Mode string

	// Delay separates attempts.
	Delay time.Duration

	// MaxAttempts caps attempts in bounded mode.
	MaxAttempts int
}

// PolicyFromConfig converts the publish section of the configuration.
func PolicyFromConfig(c config.PublishConfig) RetryPolicy {
	return RetryPolicy{
		Mode:        c.Policy,
		Delay:       c.RetryDelayDuration(),
		MaxAttempts: c.MaxAttempts,
	}
}

// attempts returns the attempt budget, or 0 for unlimited.
func (rp RetryPolicy) attempts() int {
	switch rp.Mode {
	case config.PolicyOnce:
		return 1
	case config.PolicyBounded:
		return max(rp.MaxAttempts, 1)
	default:
		return 0
	}
}

// Do runs fn under the policy and returns the last error, or nil.
func (rp RetryPolicy) Do(stop *lifecycle.StopSignal, fn func() error) error {
	limit := rp.attempts()

	for n := 1; ; n++ {
		if stop.IsExiting() {
			return fault.ErrInterrupted
		}

		err := fn()
		if err == nil || !fault.IsRecoverable(err) {
			return err
		}
		if limit > 0 && n >= limit {
			return err
		}
		if stop.Sleep(rp.Delay) {
			return fault.ErrInterrupted
		}
	}
}
