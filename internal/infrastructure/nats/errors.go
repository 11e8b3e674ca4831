package nats

import "github.com/nerrad567/sensorstream/internal/fault"

// NATS provider errors.
var (
	// ErrOpenFailed indicates the server could not be reached.
	ErrOpenFailed = fault.New(fault.KindConnect, 100, "nats: cannot connect to server")

	// ErrMissingOption indicates a mandatory connection-string option is absent.
	ErrMissingOption = fault.New(fault.KindConfiguration, 102, "nats: mandatory option missing")

	// ErrInvalidOption indicates an option value cannot be parsed.
	ErrInvalidOption = fault.New(fault.KindConfiguration, 104, "nats: invalid option")

	// ErrNotOpen indicates Write was called before a successful Open.
	ErrNotOpen = fault.New(fault.KindPublish, 105, "nats: connection not opened")

	// ErrWriteFailed indicates the publish or flush failed.
	ErrWriteFailed = fault.New(fault.KindPublish, 106, "nats: write failed")
)

// ErrConnectionClosed is reported to the fatal callback when the client
// gives up reconnecting.
var ErrConnectionClosed = fault.New(fault.KindConnect, 103, "nats: connection closed after reconnect attempts")
