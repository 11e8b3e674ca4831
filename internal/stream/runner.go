package stream

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/sensorstream/internal/fault"
	"github.com/nerrad567/sensorstream/internal/lifecycle"
	"github.com/nerrad567/sensorstream/internal/provider"
	"github.com/nerrad567/sensorstream/internal/pubstack"
)

// Runner owns the output provider and the goroutines feeding it.
type Runner struct {
	Output       provider.Output
	Loops        []*Loop
	Stage        pubstack.Stage
	PumpInterval time.Duration
	Stop         *lifecycle.StopSignal
	Log          Logger

	mu       sync.Mutex
	terminal error
}

// Run opens the output, runs every loop and the stage pump until the stop
// signal is set or a loop fails fatally, then closes the output.
//
// It returns the last terminal error, or nil after a clean stop. An Open
// cut short by the stop signal returns fault.ErrInterrupted.
func (r *Runner) Run() error {
	if r.Stop == nil {
		r.Stop = lifecycle.NewStopSignal()
	}
	if r.Log == nil {
		r.Log = noopLogger{}
	}
	if r.Stage == nil {
		r.Stage = &pubstack.Passthrough{}
	}

	r.Output.AttachStopSignal(r.Stop)
	if fn, ok := r.Output.(provider.FatalNotifier); ok {
		fn.SetOnFatal(func(err error) {
			r.Log.Error("output provider failed", "code", fault.CodeOf(err), "error", err)
			r.fail(err)
		})
	}

	if err := r.Output.Open(); err != nil {
		r.close()
		if errors.Is(err, fault.ErrInterrupted) {
			r.Log.Info("stopped while opening output provider")
		} else {
			r.Log.Error("cannot open output provider", "code", fault.CodeOf(err), "error", err)
		}
		return err
	}
	r.Log.Info("output provider open", "loops", len(r.Loops))

	var g errgroup.Group
	for _, loop := range r.Loops {
		if loop.Stop == nil {
			loop.Stop = r.Stop
		}
		g.Go(func() error {
			if err := loop.Run(); err != nil {
				r.fail(err)
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		Pump(r.Stage, r.PumpInterval, r.Stop)
		return nil
	})

	waitErr := g.Wait()
	r.close()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.terminal != nil {
		return r.terminal
	}
	return waitErr
}

// fail records err as terminal and stops everything.
func (r *Runner) fail(err error) {
	r.mu.Lock()
	r.terminal = err
	r.mu.Unlock()
	r.Stop.Stop()
}

func (r *Runner) close() {
	if err := r.Output.Close(); err != nil {
		r.Log.Warn("closing output provider", "error", err)
	}
}
