package kafka

import "github.com/nerrad567/sensorstream/internal/fault"

// Kafka provider errors.
var (
	// ErrOpenFailed indicates no broker could be reached.
	ErrOpenFailed = fault.New(fault.KindConnect, 100, "kafka: cannot connect to brokers")

	// ErrMissingOption indicates a mandatory connection-string option is absent.
	ErrMissingOption = fault.New(fault.KindConfiguration, 102, "kafka: mandatory option missing")

	// ErrInvalidOption indicates an option value cannot be parsed.
	ErrInvalidOption = fault.New(fault.KindConfiguration, 104, "kafka: invalid option")

	// ErrNotOpen indicates Write was called before a successful Open.
	ErrNotOpen = fault.New(fault.KindPublish, 105, "kafka: producer not opened")

	// ErrWriteFailed indicates the brokers did not acknowledge the message.
	ErrWriteFailed = fault.New(fault.KindPublish, 106, "kafka: write failed")
)
