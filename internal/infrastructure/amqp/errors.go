package amqp

import "github.com/nerrad567/sensorstream/internal/fault"

// RabbitMQ provider errors.
var (
	// ErrOpenFailed indicates the broker could not be reached or the queue declared.
	ErrOpenFailed = fault.New(fault.KindConnect, 100, "rabbitmq: cannot connect to broker")

	// ErrMissingOption indicates a mandatory connection-string option is absent.
	ErrMissingOption = fault.New(fault.KindConfiguration, 102, "rabbitmq: mandatory option missing")

	// ErrInvalidOption indicates an option value cannot be parsed.
	ErrInvalidOption = fault.New(fault.KindConfiguration, 104, "rabbitmq: invalid option")

	// ErrNotOpen indicates Write was called before a successful Open.
	ErrNotOpen = fault.New(fault.KindPublish, 105, "rabbitmq: channel not opened")

	// ErrWriteFailed indicates the publish was rejected.
	ErrWriteFailed = fault.New(fault.KindPublish, 106, "rabbitmq: write failed")
)

// ErrConnectionLost is reported to the fatal callback when the broker
// closes the connection and reconnecting fails.
var ErrConnectionLost = fault.New(fault.KindConnect, 103, "rabbitmq: connection lost")
