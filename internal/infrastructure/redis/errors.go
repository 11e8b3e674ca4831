package redis

import "github.com/nerrad567/sensorstream/internal/fault"

// Redis provider errors.
var (
	// ErrOpenFailed indicates the server did not answer PING.
	ErrOpenFailed = fault.New(fault.KindConnect, 100, "redis: cannot connect to server")

	// ErrMissingOption indicates a mandatory connection-string option is absent.
	ErrMissingOption = fault.New(fault.KindConfiguration, 102, "redis: mandatory option missing")

	// ErrInvalidOption indicates an option value cannot be parsed.
	ErrInvalidOption = fault.New(fault.KindConfiguration, 104, "redis: invalid option")

	// ErrNotOpen indicates Write was called before a successful Open.
	ErrNotOpen = fault.New(fault.KindPublish, 105, "redis: publisher not opened")

	// ErrWriteFailed indicates the PUBLISH command failed.
	ErrWriteFailed = fault.New(fault.KindPublish, 106, "redis: write failed")
)
