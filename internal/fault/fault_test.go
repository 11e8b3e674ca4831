package fault

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Message(t *testing.T) {
	err := New(KindConnect, 101, "cannot connect to broker: timeout expired")
	if got := err.Error(); got != "[101] cannot connect to broker: timeout expired" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := Wrap(KindPublish, 202, "publish exception", errors.New("broken pipe"))
	if got := wrapped.Error(); got != "[202] publish exception: broken pipe" {
		t.Errorf("Error() = %q", got)
	}
}

func TestMarkFatal(t *testing.T) {
	err := New(KindConnect, 101, "timeout")
	if !IsRecoverable(err) {
		t.Fatal("new error should be recoverable")
	}

	fatal := MarkFatal(err)
	if IsRecoverable(fatal) {
		t.Error("IsRecoverable() = true after MarkFatal, want false")
	}
	if !IsRecoverable(err) {
		t.Error("MarkFatal must not mutate the original error")
	}
	if CodeOf(fatal) != 101 {
		t.Errorf("CodeOf() = %d, want 101", CodeOf(fatal))
	}
	if !errors.Is(fatal, err) {
		t.Error("errors.Is(fatal, original) = false, want true")
	}
}

func TestMarkFatal_Foreign(t *testing.T) {
	base := errors.New("boom")
	fatal := MarkFatal(base)
	if IsRecoverable(fatal) {
		t.Error("foreign error should become fatal")
	}
	if !errors.Is(fatal, base) {
		t.Error("foreign cause should be preserved")
	}
	if MarkFatal(nil) != nil {
		t.Error("MarkFatal(nil) should be nil")
	}
}

func TestIsRecoverable_ThroughWrapping(t *testing.T) {
	fatal := MarkFatal(New(KindConnect, 101, "timeout"))
	wrapped := fmt.Errorf("opening provider: %w", fatal)
	if IsRecoverable(wrapped) {
		t.Error("IsRecoverable() should see through fmt.Errorf wrapping")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"interrupted", ErrInterrupted, 0},
		{"wrapped interrupted", fmt.Errorf("open: %w", ErrInterrupted), 0},
		{"coded", New(KindConfiguration, 101, "missing"), 101},
		{"foreign", errors.New("x"), 1},
		{"out of range", New(KindPublish, 999, "x"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if KindConnect.String() != "connect" {
		t.Errorf("KindConnect.String() = %q", KindConnect.String())
	}
	if Kind(42).String() != "unknown" {
		t.Errorf("Kind(42).String() = %q", Kind(42).String())
	}
}

func TestWithAndWithf(t *testing.T) {
	sentinel := New(KindConfiguration, 101, "configuration file does not exist")

	withCause := sentinel.With(errors.New("stat failed"))
	if !errors.Is(withCause, sentinel) {
		t.Error("With() copy should match the sentinel")
	}
	if sentinel.Err != nil {
		t.Error("With() must not mutate the sentinel")
	}

	detailed := sentinel.Withf("path %s", "/etc/x.yaml")
	if detailed.Msg != "configuration file does not exist: path /etc/x.yaml" {
		t.Errorf("Withf() msg = %q", detailed.Msg)
	}
	if !errors.Is(detailed, sentinel) {
		t.Error("Withf() copy should match the sentinel")
	}
}

func TestIs_DistinctSentinelsSameCode(t *testing.T) {
	productMalformed := New(KindConfiguration, 2, "product file malformed")
	notConfigured := New(KindConfiguration, 2, "publish client not configured")

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same sentinel", productMalformed, productMalformed, true},
		{"with copy", productMalformed.With(errors.New("eof")), productMalformed, true},
		{"withf copy", notConfigured.Withf("host"), notConfigured, true},
		{"fatal copy", MarkFatal(notConfigured), notConfigured, true},
		{"wrapped copy", fmt.Errorf("open: %w", notConfigured.Withf("port")), notConfigured, true},
		{"other sentinel same code", productMalformed, notConfigured, false},
		{"copy of other sentinel", notConfigured.With(errors.New("x")), productMalformed, false},
		{"wrap constructor", Wrap(KindConfiguration, 2, "x", nil), productMalformed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.want)
			}
		})
	}
}
