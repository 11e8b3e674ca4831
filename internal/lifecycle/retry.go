package lifecycle

import (
	"time"

	"github.com/nerrad567/sensorstream/internal/fault"
)

// Retry runs attempt until it succeeds, the stop signal fires, or
// maxRetries+1 attempts have failed. Attempts are separated by delay, and the
// delay is cut short by Stop.
//
// On exhaustion the last error is returned marked non-recoverable. When stop
// is observed fault.ErrInterrupted is returned.
func (s *StopSignal) Retry(maxRetries int, delay time.Duration, attempt func(n int) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}

	var err error
	for n := 0; n <= maxRetries; n++ {
		if s.IsExiting() {
			return fault.ErrInterrupted
		}
		if err = attempt(n); err == nil {
			return nil
		}
		if n < maxRetries && s.Wait(delay) {
			return fault.ErrInterrupted
		}
	}
	return fault.MarkFatal(err)
}
