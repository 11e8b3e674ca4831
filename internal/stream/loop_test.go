package stream

import (
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nerrad567/sensorstream/internal/infrastructure/config"
	"github.com/nerrad567/sensorstream/internal/lifecycle"
	"github.com/nerrad567/sensorstream/internal/pubstack"
)

func newTestLoop(r *fakeReader, out *fakeOutput, stop *lifecycle.StopSignal) *Loop {
	return &Loop{
		Name:          "co2",
		Reader:        r,
		Interval:      time.Millisecond,
		Publisher:     NewPublisher(out, nil),
		Policy:        RetryPolicy{Mode: config.PolicyOnce},
		Stop:          stop,
		SampleRetries: 2,
		SampleDelay:   time.Millisecond,
	}
}

// runAsync starts l and returns a channel delivering its result.
func runAsync(l *Loop) <-chan error {
	done := make(chan error, 1)
	go func() { done <- l.Run() }()
	return done
}

func TestLoop_PublishesReadings(t *testing.T) {
	stop := lifecycle.NewStopSignal()
	out := &fakeOutput{}
	done := runAsync(newTestLoop(&fakeReader{}, out, stop))

	if !waitFor(func() bool { return len(out.Writes()) >= 3 }) {
		t.Fatal("loop did not publish 3 readings")
	}
	stop.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil on stop", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after Stop")
	}

	var doc map[string]any
	if err := json.Unmarshal(out.Writes()[0], &doc); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if doc["sensor"] != "co2" || doc["now"] != "2026-10-16T09:00:00Z" || doc["co2"] != 401.0 {
		t.Errorf("payload = %v, want sensor/now/co2 fields", doc)
	}
}

func TestLoop_SamplingRetry(t *testing.T) {
	tests := []struct {
		name       string
		reader     *fakeReader
		wantWrites bool
	}{
		{"recovers within retries", &fakeReader{failOn: map[int]bool{1: true, 2: true}}, true},
		{"skips cycle after exhausting retries", &fakeReader{always: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stop := lifecycle.NewStopSignal()
			out := &fakeOutput{}
			done := runAsync(newTestLoop(tt.reader, out, stop))

			// Two full cycles: 3 attempts each when always failing.
			if !waitFor(func() bool { return tt.reader.Calls() >= 6 }) {
				t.Fatal("reader not sampled enough")
			}
			stop.Stop()
			if err := <-done; err != nil {
				t.Errorf("Run() error = %v", err)
			}

			if got := len(out.Writes()) > 0; got != tt.wantWrites {
				t.Errorf("published = %v, want %v", got, tt.wantWrites)
			}
		})
	}
}

func TestLoop_RecoverablePublishFailureDropsReading(t *testing.T) {
	stop := lifecycle.NewStopSignal()
	out := &fakeOutput{writeErrs: []error{errTransient, errTransient}}
	done := runAsync(newTestLoop(&fakeReader{}, out, stop))

	if !waitFor(func() bool { return len(out.Writes()) >= 1 }) {
		t.Fatal("loop stopped publishing after transient failures")
	}
	stop.Stop()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}

	// Readings 1 and 2 were dropped under the once policy.
	var doc map[string]any
	if err := json.Unmarshal(out.Writes()[0], &doc); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if doc["co2"] != 403.0 {
		t.Errorf("first delivered co2 = %v, want 403", doc["co2"])
	}
}

func TestLoop_FatalPublishErrorEndsLoop(t *testing.T) {
	stop := lifecycle.NewStopSignal()
	out := &fakeOutput{writeErrs: []error{errFatal}}

	select {
	case err := <-runAsync(newTestLoop(&fakeReader{}, out, stop)):
		if !errors.Is(err, errFatal) {
			t.Errorf("Run() error = %v, want the fatal publish error", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return on fatal error")
	}
}

func TestLoop_StopDuringRetryPolicy(t *testing.T) {
	stop := lifecycle.NewStopSignal()
	errs := make([]error, 1000)
	for i := range errs {
		errs[i] = errTransient
	}
	out := &fakeOutput{writeErrs: errs}
	l := newTestLoop(&fakeReader{}, out, stop)
	l.Policy = RetryPolicy{Mode: config.PolicyRetry, Delay: 5 * time.Millisecond}
	done := runAsync(l)

	if !waitFor(func() bool { return out.Attempts() >= 3 }) {
		t.Fatal("retry policy did not retry")
	}
	stop.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after Stop")
	}
}

type failingStage struct{ pubstack.Passthrough }

func (failingStage) Transform([]byte) ([]byte, error) {
	return nil, pubstack.ErrTransform
}

func TestLoop_TransformFailureSkipsCycle(t *testing.T) {
	stop := lifecycle.NewStopSignal()
	out := &fakeOutput{}
	r := &fakeReader{}
	l := newTestLoop(r, out, stop)
	l.Stage = &failingStage{}
	done := runAsync(l)

	if !waitFor(func() bool { return r.Calls() >= 3 }) {
		t.Fatal("loop stopped after transform failure")
	}
	stop.Stop()
	<-done

	if n := len(out.Writes()); n != 0 {
		t.Errorf("writes = %d, want 0", n)
	}
}

func TestLoop_Base64Stage(t *testing.T) {
	stage, err := pubstack.New(pubstack.StageBase64)
	if err != nil {
		t.Fatalf("pubstack.New() error = %v", err)
	}
	if err := stage.Init(nil); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	stop := lifecycle.NewStopSignal()
	out := &fakeOutput{}
	l := newTestLoop(&fakeReader{}, out, stop)
	l.Stage = stage
	done := runAsync(l)

	if !waitFor(func() bool { return len(out.Writes()) >= 1 }) {
		t.Fatal("nothing published")
	}
	stop.Stop()
	<-done

	if json.Valid(out.Writes()[0]) {
		t.Errorf("payload %q is still JSON, want base64", out.Writes()[0])
	}
}

type countingStage struct {
	pubstack.Passthrough
	pumps atomic.Int32
}

func (s *countingStage) Pump() { s.pumps.Add(1) }

func TestPump(t *testing.T) {
	stop := lifecycle.NewStopSignal()
	s := &countingStage{}
	done := make(chan struct{})
	go func() {
		Pump(s, time.Millisecond, stop)
		close(done)
	}()

	if !waitFor(func() bool { return s.pumps.Load() >= 3 }) {
		t.Fatal("Pump() did not tick")
	}
	stop.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Pump() did not return after Stop")
	}
}
