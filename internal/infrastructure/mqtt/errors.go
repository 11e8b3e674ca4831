package mqtt

import "github.com/nerrad567/sensorstream/internal/fault"

// Publish client errors. Use errors.Is() to check for these errors in calling
// code; fault.CodeOf() yields the stable numeric code.
var (
	// ErrMissingMandatory is returned by Init when host or topic is absent.
	ErrMissingMandatory = fault.New(fault.KindConfiguration, 1, "configuration missing mandatory parameter(s)")

	// ErrNotConfigured is returned by Open before a successful Init.
	ErrNotConfigured = fault.New(fault.KindConfiguration, 2, "provider cannot open: it is not yet configured")

	// ErrInvalidParameter is returned by Init for values that cannot be parsed.
	ErrInvalidParameter = fault.New(fault.KindConfiguration, 5, "configuration parameter is invalid")

	// ErrAlreadyOpen is returned by Init on a client that is connecting or connected.
	ErrAlreadyOpen = fault.New(fault.KindConfiguration, 6, "provider cannot be reconfigured while open")

	// ErrConnectException is returned when the transport fails a connect attempt.
	ErrConnectException = fault.New(fault.KindConnect, 99, "an exception occurred while connecting to the broker")

	// ErrConnectTimeout is returned when no connection is established within the open timeout.
	ErrConnectTimeout = fault.New(fault.KindConnect, 101, "cannot connect to broker: timeout expired")

	// ErrUnexpectedDisconnect is logged when the broker connection drops without Close.
	ErrUnexpectedDisconnect = fault.New(fault.KindConnect, 103, "unexpected disconnection")

	// ErrNotConnected is returned by Write when the connection is not usable.
	ErrNotConnected = fault.New(fault.KindPublish, 200, "client not connected")

	// ErrPublishTimeout is returned when the broker does not complete a publish in time.
	ErrPublishTimeout = fault.New(fault.KindPublish, 201, "an error occurred while publishing a message")

	// ErrPublishFailed is returned when the transport rejects a publish.
	ErrPublishFailed = fault.New(fault.KindPublish, 202, "an exception occurred while publishing a message")

	// ErrPayloadTooLarge is returned for payloads above maxPayloadSize.
	ErrPayloadTooLarge = fault.New(fault.KindPublish, 203, "payload exceeds maximum size")
)
