package sensor

import "github.com/nerrad567/sensorstream/internal/fault"

// Sensor errors.
var (
	// ErrUnknownDriver is returned by Open for an unregistered driver name.
	ErrUnknownDriver = fault.New(fault.KindConfiguration, 12, "unknown sensor driver")

	// ErrDriverConfig is returned by Open when the driver configuration is invalid.
	ErrDriverConfig = fault.New(fault.KindConfiguration, 13, "invalid sensor driver configuration")

	// ErrSampleFailed is returned by Sample when the sensor gives no valid reading.
	ErrSampleFailed = fault.New(fault.KindSampling, 301, "sensor sampling failed")

	// ErrInvalidPayload is returned by DecodePayload for non-reading payloads.
	ErrInvalidPayload = fault.New(fault.KindPublish, 302, "payload is not a sensor reading")
)
