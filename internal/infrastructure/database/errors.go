package database

import "github.com/nerrad567/sensorstream/internal/fault"

// Journal provider errors.
var (
	// ErrOpenFailed indicates the database could not be opened or migrated.
	ErrOpenFailed = fault.New(fault.KindConnect, 100, "sqlite: cannot open journal")

	// ErrMissingOption indicates the path option is absent.
	ErrMissingOption = fault.New(fault.KindConfiguration, 102, "sqlite: mandatory option missing")

	// ErrInvalidOption indicates an option value cannot be parsed.
	ErrInvalidOption = fault.New(fault.KindConfiguration, 104, "sqlite: invalid option")

	// ErrNotOpen indicates Write was called before a successful Open.
	ErrNotOpen = fault.New(fault.KindPublish, 105, "sqlite: journal not opened")

	// ErrWriteFailed indicates the insert failed.
	ErrWriteFailed = fault.New(fault.KindPublish, 106, "sqlite: write failed")
)
