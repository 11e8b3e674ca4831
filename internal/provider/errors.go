package provider

import "github.com/nerrad567/sensorstream/internal/fault"

// Loader errors.
var (
	// ErrConfigurationMissing indicates the provider connection string is empty.
	ErrConfigurationMissing = fault.New(fault.KindConfiguration, 2, "missing output_provider configuration")

	// ErrProviderMissing indicates no provider name was configured.
	ErrProviderMissing = fault.New(fault.KindConfiguration, 3, "missing output_provider provider")

	// ErrProviderLoad indicates the factory failed or panicked.
	ErrProviderLoad = fault.New(fault.KindConfiguration, 4, "cannot load output provider")

	// ErrProviderNotFound indicates no factory is registered under the name.
	ErrProviderNotFound = fault.New(fault.KindConfiguration, 120, "output provider not found")
)
