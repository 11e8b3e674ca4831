package stream

import (
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/sensorstream/internal/fault"
	"github.com/nerrad567/sensorstream/internal/infrastructure/config"
	"github.com/nerrad567/sensorstream/internal/lifecycle"
)

func TestRetryPolicy_Do(t *testing.T) {
	tests := []struct {
		name         string
		policy       RetryPolicy
		errs         []error
		wantErr      error
		wantAttempts int
	}{
		{
			name:         "once succeeds",
			policy:       RetryPolicy{Mode: config.PolicyOnce},
			wantAttempts: 1,
		},
		{
			name:         "once gives up after one failure",
			policy:       RetryPolicy{Mode: config.PolicyOnce},
			errs:         []error{errTransient},
			wantErr:      errTransient,
			wantAttempts: 1,
		},
		{
			name:         "retry until success",
			policy:       RetryPolicy{Mode: config.PolicyRetry, Delay: time.Millisecond},
			errs:         []error{errTransient, errTransient, errTransient},
			wantAttempts: 4,
		},
		{
			name:         "bounded exhausts",
			policy:       RetryPolicy{Mode: config.PolicyBounded, Delay: time.Millisecond, MaxAttempts: 3},
			errs:         []error{errTransient, errTransient, errTransient, errTransient},
			wantErr:      errTransient,
			wantAttempts: 3,
		},
		{
			name:         "bounded with zero attempts makes one",
			policy:       RetryPolicy{Mode: config.PolicyBounded},
			errs:         []error{errTransient},
			wantErr:      errTransient,
			wantAttempts: 1,
		},
		{
			name:         "fatal error is not retried",
			policy:       RetryPolicy{Mode: config.PolicyRetry, Delay: time.Millisecond},
			errs:         []error{errFatal},
			wantErr:      errFatal,
			wantAttempts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.errs
			attempts := 0
			err := tt.policy.Do(lifecycle.NewStopSignal(), func() error {
				attempts++
				if len(errs) == 0 {
					return nil
				}
				e := errs[0]
				errs = errs[1:]
				return e
			})

			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Errorf("Do() error = %v, want %v", err, tt.wantErr)
			}
			if attempts != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", attempts, tt.wantAttempts)
			}
		})
	}
}

func TestRetryPolicy_StopBetweenAttempts(t *testing.T) {
	stop := lifecycle.NewStopSignal()
	policy := RetryPolicy{Mode: config.PolicyRetry, Delay: time.Hour}

	go func() {
		time.Sleep(20 * time.Millisecond)
		stop.Stop()
	}()

	start := time.Now()
	err := policy.Do(stop, func() error { return errTransient })
	if !errors.Is(err, fault.ErrInterrupted) {
		t.Errorf("Do() error = %v, want ErrInterrupted", err)
	}
	if time.Since(start) > time.Second {
		t.Errorf("Do() took %v after stop", time.Since(start))
	}
}

func TestRetryPolicy_StoppedBeforeFirstAttempt(t *testing.T) {
	stop := lifecycle.NewStopSignal()
	stop.Stop()

	called := false
	err := RetryPolicy{Mode: config.PolicyOnce}.Do(stop, func() error { called = true; return nil })
	if !errors.Is(err, fault.ErrInterrupted) || called {
		t.Errorf("Do() = %v (called %v), want ErrInterrupted without a call", err, called)
	}
}

func TestPolicyFromConfig(t *testing.T) {
	got := PolicyFromConfig(config.PublishConfig{Policy: config.PolicyBounded, RetryDelay: 2, MaxAttempts: 4})
	want := RetryPolicy{Mode: config.PolicyBounded, Delay: 2 * time.Second, MaxAttempts: 4}
	if got != want {
		t.Errorf("PolicyFromConfig() = %+v, want %+v", got, want)
	}
}
