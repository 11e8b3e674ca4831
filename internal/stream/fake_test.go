package stream

import (
	"context"
	"sync"
	"time"

	"github.com/nerrad567/sensorstream/internal/fault"
	"github.com/nerrad567/sensorstream/internal/lifecycle"
	"github.com/nerrad567/sensorstream/internal/sensor"
)

// fakeReader returns readings, failing the calls listed in failOn (1-based).
type fakeReader struct {
	mu     sync.Mutex
	calls  int
	failOn map[int]bool
	always bool
}

func (r *fakeReader) Sample(ctx context.Context) (sensor.Reading, error) {
	r.mu.Lock()
	r.calls++
	n := r.calls
	r.mu.Unlock()

	if r.always || r.failOn[n] {
		return sensor.Reading{}, sensor.ErrSampleFailed.Withf("call %d", n)
	}
	return sensor.Reading{
		Sensor: "co2",
		Time:   time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC),
		Values: map[string]float64{"co2": float64(400 + n)},
	}, nil
}

func (r *fakeReader) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// fakeOutput records writes. writeErrs are returned in order, then nil.
type fakeOutput struct {
	mu        sync.Mutex
	openErr   error
	writeErrs []error
	writes    [][]byte
	attempts  int
	opened    bool
	closed    int
	stop      *lifecycle.StopSignal
	onFatal   func(error)
}

func (o *fakeOutput) Init(string) error { return nil }

func (o *fakeOutput) Open() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.openErr != nil {
		return o.openErr
	}
	o.opened = true
	return nil
}

func (o *fakeOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed++
	return nil
}

func (o *fakeOutput) Write(payload []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attempts++
	if len(o.writeErrs) > 0 {
		err := o.writeErrs[0]
		o.writeErrs = o.writeErrs[1:]
		if err != nil {
			return err
		}
	}
	o.writes = append(o.writes, append([]byte(nil), payload...))
	return nil
}

func (o *fakeOutput) AttachStopSignal(stop *lifecycle.StopSignal) {
	o.mu.Lock()
	o.stop = stop
	o.mu.Unlock()
}

func (o *fakeOutput) Writes() [][]byte {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([][]byte(nil), o.writes...)
}

func (o *fakeOutput) Attempts() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.attempts
}

// notifyingOutput also implements provider.FatalNotifier.
type notifyingOutput struct {
	fakeOutput
}

func (o *notifyingOutput) SetOnFatal(fn func(error)) {
	o.mu.Lock()
	o.onFatal = fn
	o.mu.Unlock()
}

func (o *notifyingOutput) fireFatal(err error) {
	o.mu.Lock()
	fn := o.onFatal
	o.mu.Unlock()
	fn(err)
}

var (
	errTransient = fault.New(fault.KindPublish, 200, "not connected")
	errFatal     = fault.MarkFatal(fault.New(fault.KindConnect, 104, "broker gone"))
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(2 * time.Millisecond)
	}
	return true
}
