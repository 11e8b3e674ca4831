package lifecycle

import (
	"testing"
	"time"
)

func TestConnectionEvent_SetReturnsImmediately(t *testing.T) {
	var e ConnectionEvent
	e.Set()

	for _, timeout := range []time.Duration{0, time.Millisecond, time.Hour} {
		start := time.Now()
		if !e.WaitForStatus(timeout, true) {
			t.Errorf("WaitForStatus(%v, true) = false after Set", timeout)
		}
		if time.Since(start) > 100*time.Millisecond {
			t.Errorf("WaitForStatus(%v, true) blocked after Set", timeout)
		}
	}
}

func TestConnectionEvent_ClearedBlocksUntilTimeout(t *testing.T) {
	var e ConnectionEvent
	e.Set()
	e.Clear()

	start := time.Now()
	if e.WaitForStatus(60*time.Millisecond, true) {
		t.Fatal("WaitForStatus() = true on cleared event")
	}
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Errorf("WaitForStatus() returned after %v, want >= 60ms", elapsed)
	}
}

func TestConnectionEvent_WakesOnEdge(t *testing.T) {
	var e ConnectionEvent

	go func() {
		time.Sleep(20 * time.Millisecond)
		e.Set()
	}()

	if !e.WaitForStatus(5*time.Second, true) {
		t.Fatal("WaitForStatus() = false after async Set")
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		e.Clear()
	}()

	if !e.WaitForStatus(5*time.Second, false) {
		t.Fatal("WaitForStatus(false) = false after async Clear")
	}
}

func TestConnectionEvent_Idempotent(t *testing.T) {
	var e ConnectionEvent
	e.Set()
	e.Set()
	if !e.IsSet() {
		t.Error("IsSet() = false after double Set")
	}
	e.Clear()
	e.Clear()
	if e.IsSet() {
		t.Error("IsSet() = true after double Clear")
	}
}

func TestConnectionEvent_Cancel(t *testing.T) {
	var e ConnectionEvent
	cancel := make(chan struct{})

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(cancel)
	}()

	start := time.Now()
	if e.WaitForStatusUntil(cancel, time.Hour, true) {
		t.Fatal("WaitForStatusUntil() = true on cancel")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("WaitForStatusUntil() took %v to observe cancel", elapsed)
	}
}
