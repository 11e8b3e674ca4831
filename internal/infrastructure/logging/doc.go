// Package logging provides structured logging for sensorstream.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the publisher, the sensor loops
// and the output providers.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("provider opened", "provider", "mqtt")
//	logger.Error("open failed", "code", fault.CodeOf(err), "error", err)
//
// # Security
//
// Never log broker passwords, tokens or hardware identifiers. The MQTT
// client id is a hash precisely so it can be logged.
package logging
