package lifecycle

import (
	"sync"
	"time"
)

// ConnectionEvent is a boolean condition with edge set/clear operations and
// bounded waits for a desired value.
//
// The zero value is a cleared event ready for use.
type ConnectionEvent struct {
	mu      sync.Mutex
	set     bool
	changed chan struct{}
}

// Set marks the event as connected. Idempotent.
func (e *ConnectionEvent) Set() {
	e.update(true)
}

// Clear marks the event as disconnected. Idempotent.
func (e *ConnectionEvent) Clear() {
	e.update(false)
}

// IsSet returns the current value.
func (e *ConnectionEvent) IsSet() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.set
}

func (e *ConnectionEvent) update(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.set == v {
		return
	}
	e.set = v
	if e.changed != nil {
		close(e.changed)
		e.changed = nil
	}
}

// watch returns the current value and a channel closed on the next edge.
func (e *ConnectionEvent) watch() (bool, <-chan struct{}) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.changed == nil {
		e.changed = make(chan struct{})
	}
	return e.set, e.changed
}

// WaitForStatus blocks until the event equals status or timeout elapses,
// and reports whether the value matched.
func (e *ConnectionEvent) WaitForStatus(timeout time.Duration, status bool) bool {
	return e.WaitForStatusUntil(nil, timeout, status)
}

// WaitForStatusUntil is WaitForStatus that also gives up, returning false,
// when cancel is closed. A nil cancel channel never fires.
func (e *ConnectionEvent) WaitForStatusUntil(cancel <-chan struct{}, timeout time.Duration, status bool) bool {
	current, changed := e.watch()
	if current == status {
		return true
	}
	if timeout <= 0 {
		return false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-changed:
			current, changed = e.watch()
			if current == status {
				return true
			}
		case <-timer.C:
			return e.IsSet() == status
		case <-cancel:
			return false
		}
	}
}
