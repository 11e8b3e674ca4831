package fault

// ErrInterrupted is returned by retry loops that observed a stop request
// before completing. Callers treat it as a clean exit.
var ErrInterrupted = New(KindInterrupted, 3, "operation interrupted by stop request")
