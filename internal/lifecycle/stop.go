package lifecycle

import (
	"sync"
	"time"
)

// StopSignal is a monotonic "exit requested" latch.
//
// The zero value is not usable; create one with NewStopSignal.
type StopSignal struct {
	once sync.Once
	done chan struct{}
}

// NewStopSignal returns a StopSignal in the running state.
func NewStopSignal() *StopSignal {
	return &StopSignal{done: make(chan struct{})}
}

// Stop sets the latch. It may be called any number of times from any goroutine.
func (s *StopSignal) Stop() {
	s.once.Do(func() {
		close(s.done)
	})
}

// IsExiting reports whether Stop has been called.
func (s *StopSignal) IsExiting() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that is closed when Stop is called.
func (s *StopSignal) Done() <-chan struct{} {
	return s.done
}

// Wait blocks up to timeout and reports whether the latch was set.
// A non-positive timeout returns the current state without blocking.
func (s *StopSignal) Wait(timeout time.Duration) bool {
	if timeout <= 0 {
		return s.IsExiting()
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.done:
		return true
	case <-timer.C:
		return s.IsExiting()
	}
}

// Sleep pauses for d and reports whether it was cut short by Stop.
func (s *StopSignal) Sleep(d time.Duration) bool {
	return s.Wait(d)
}
