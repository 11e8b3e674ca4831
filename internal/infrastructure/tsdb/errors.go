package tsdb

import "github.com/nerrad567/sensorstream/internal/fault"

// VictoriaMetrics provider errors.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, tsdb.ErrNotOpen) {
//	    // Handle writes before Open
//	}
var (
	// ErrOpenFailed indicates the /health endpoint was unreachable or unhealthy.
	ErrOpenFailed = fault.New(fault.KindConnect, 100, "victoriametrics: cannot open connection")

	// ErrMissingOption indicates a mandatory connection-string option is absent.
	ErrMissingOption = fault.New(fault.KindConfiguration, 102, "victoriametrics: mandatory option missing")

	// ErrInvalidPayload indicates the payload is not a JSON reading.
	ErrInvalidPayload = fault.New(fault.KindPublish, 103, "victoriametrics: payload is not valid JSON")

	// ErrInvalidOption indicates an option value cannot be parsed.
	ErrInvalidOption = fault.New(fault.KindConfiguration, 104, "victoriametrics: invalid option")

	// ErrNotOpen indicates Write was called before a successful Open.
	ErrNotOpen = fault.New(fault.KindPublish, 105, "victoriametrics: provider not opened")

	// ErrWriteFailed indicates a batch POST to /write failed.
	ErrWriteFailed = fault.New(fault.KindPublish, 106, "victoriametrics: write failed")
)
