package config

import (
	"errors"

	"github.com/nerrad567/sensorstream/internal/fault"
)

// Configuration errors. Use errors.Is() to distinguish them.
var (
	// ErrConfigNotFound is returned when a configuration file does not exist.
	ErrConfigNotFound = fault.New(fault.KindConfiguration, 101, "configuration file does not exist")

	// ErrConfigMalformed is returned when a YAML configuration file cannot be parsed.
	ErrConfigMalformed = fault.New(fault.KindConfiguration, 103, "error in parsing configuration file")

	// ErrConfigInvalid is returned when a configuration file fails validation.
	ErrConfigInvalid = fault.New(fault.KindConfiguration, 10, "invalid configuration")

	// ErrProductMalformed is returned when the JSON product file cannot be parsed.
	ErrProductMalformed = fault.New(fault.KindConfiguration, 2, "error in loading JSON product file")

	// ErrProductIncomplete is returned when the product file lacks loop_interval.
	ErrProductIncomplete = fault.New(fault.KindConfiguration, 11, "missing product arg: loop_interval")

	// ErrMalformedConnString is returned for connection strings that cannot be parsed.
	ErrMalformedConnString = errors.New("config: malformed connection string")
)
