package fault

import (
	"errors"
	"fmt"
)

// Kind classifies an error by the layer that is expected to resolve it.
type Kind int

const (
	// KindUnknown is used for errors that were not produced by this package.
	KindUnknown Kind = iota

	// KindConfiguration marks missing or invalid configuration. Never retried.
	KindConfiguration

	// KindConnect marks a timeout or transport exception while connecting.
	// Retried by the publish client up to its retry budget.
	KindConnect

	// KindPublish marks a single failed write. Retried by the caller's policy.
	KindPublish

	// KindSampling marks a failed sensor read. Retried locally by the loop.
	KindSampling

	// KindInterrupted marks an operation abandoned because shutdown was requested.
	KindInterrupted
)

// String returns the lower-case kind name used in log attributes.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindConnect:
		return "connect"
	case KindPublish:
		return "publish"
	case KindSampling:
		return "sampling"
	case KindInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Error is a coded, optionally non-recoverable error.
type Error struct {
	Code int
	Msg  string
	Kind Kind

	// Err is the underlying cause, if any.
	Err error

	fatal bool

	// origin is the error New or Wrap returned; copies share it.
	origin *Error
}

// New creates a recoverable error.
func New(kind Kind, code int, msg string) *Error {
	e := &Error{Code: code, Msg: msg, Kind: kind}
	e.origin = e
	return e
}

// Wrap creates a recoverable error with an underlying cause.
func Wrap(kind Kind, code int, msg string, cause error) *Error {
	e := &Error{Code: code, Msg: msg, Kind: kind, Err: cause}
	e.origin = e
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches target when both derive from the same New or Wrap call, so a
// sentinel still matches its With, Withf and MarkFatal copies while
// sentinels of other packages sharing its code do not.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.root() == t.root()
}

func (e *Error) root() *Error {
	if e.origin == nil {
		return e
	}
	return e.origin
}

// Recoverable reports whether automatic retry may still succeed.
func (e *Error) Recoverable() bool {
	return !e.fatal
}

// MarkFatal flags err as non-recoverable and returns it.
// Errors not produced by this package are wrapped first.
func MarkFatal(err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		cp := *fe
		cp.fatal = true
		return &cp
	}
	return &Error{Code: 1, Msg: "unrecoverable error", Err: err, fatal: true}
}

// IsRecoverable reports whether err may be retried.
// nil and foreign errors are considered recoverable.
func IsRecoverable(err error) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Recoverable()
	}
	return true
}

// CodeOf returns the numeric code of err: 0 for nil, 1 for foreign errors.
func CodeOf(err error) int {
	if err == nil {
		return 0
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return 1
}

// KindOf returns the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// ExitCode maps err onto a process exit status.
// nil and interrupted errors exit 0; codes outside 1..255 collapse to 1.
func ExitCode(err error) int {
	if err == nil || KindOf(err) == KindInterrupted {
		return 0
	}
	code := CodeOf(err)
	if code < 1 || code > 255 {
		return 1
	}
	return code
}

// With returns a copy of e carrying cause as the underlying error.
// The copy still matches e under errors.Is.
func (e *Error) With(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// Withf returns a copy of e whose message is extended with detail.
func (e *Error) Withf(format string, args ...any) *Error {
	cp := *e
	cp.Msg = e.Msg + ": " + fmt.Sprintf(format, args...)
	return &cp
}
