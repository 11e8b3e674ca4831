package influxdb

import "github.com/nerrad567/sensorstream/internal/fault"

// InfluxDB provider errors.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, influxdb.ErrNotOpen) {
//	    // Handle writes before Open
//	}
var (
	// ErrOpenFailed indicates the server could not be reached or is unhealthy.
	ErrOpenFailed = fault.New(fault.KindConnect, 100, "influxdb: cannot open connection")

	// ErrMissingOption indicates a mandatory connection-string option is absent.
	ErrMissingOption = fault.New(fault.KindConfiguration, 102, "influxdb: mandatory option missing")

	// ErrInvalidPayload indicates the payload is not a JSON reading.
	ErrInvalidPayload = fault.New(fault.KindPublish, 103, "influxdb: payload is not valid JSON")

	// ErrInvalidOption indicates an option value cannot be parsed.
	ErrInvalidOption = fault.New(fault.KindConfiguration, 104, "influxdb: invalid option")

	// ErrNotOpen indicates Write was called before a successful Open.
	ErrNotOpen = fault.New(fault.KindPublish, 105, "influxdb: provider not opened")

	// ErrWriteFailed indicates the server rejected a point.
	ErrWriteFailed = fault.New(fault.KindPublish, 106, "influxdb: write failed")
)
