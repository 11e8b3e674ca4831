// Package fault defines the coded error type shared by every sensorstream
// component.
//
// Every terminal error carries a stable numeric code and a human-readable
// message. Errors are recoverable by default; a component that has given up
// (for example a publish client that exhausted its connect retries) marks the
// error fatal, and the orchestrator turns any fatal error into a global stop
// and a non-zero exit status.
//
// # Usage
//
//	err := fault.New(fault.KindConnect, 101, "cannot connect to broker: timeout expired")
//	if attempts > maxRetries {
//	    return fault.MarkFatal(err)
//	}
//
//	if !fault.IsRecoverable(err) {
//	    stop.Stop()
//	}
//	os.Exit(fault.ExitCode(err))
package fault
