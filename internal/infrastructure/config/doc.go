// Package config handles loading and validating sensorstream configuration.
//
// This package manages:
//   - Loading the program configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Loading the JSON product file for the transform stage
//   - Parsing provider and driver connection strings
//
// Security Considerations:
//   - Broker credentials travel inside connection strings; prefer
//     SENSORSTREAM_OUTPUT_CONFIGURATION over committing them to the file
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	conn, err := config.ParseConnString(cfg.OutputProvider.Configuration)
//	host := conn.String([]string{"host", "h"}, "")
package config
