package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Publish policy names accepted in publish.policy.
const (
	PolicyRetry   = "retry"
	PolicyOnce    = "once"
	PolicyBounded = "bounded"
)

// Config is the root configuration structure for a sensorstream process.
// It is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Prog           ProgConfig     `yaml:"prog"`
	Logging        LoggingConfig  `yaml:"logging"`
	OutputProvider ProviderConfig `yaml:"output_provider"`
	Publish        PublishConfig  `yaml:"publish"`
	Sampling       SamplingConfig `yaml:"sampling"`
	Sensors        []SensorConfig `yaml:"sensors"`
	Metrics        MetricsConfig  `yaml:"metrics"`
}

// ProgConfig contains program-wide switches.
type ProgConfig struct {
	// Verbose logs every payload before and after the transform stage.
	Verbose bool `yaml:"verbose"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// ProviderConfig selects the output provider and carries its connection string.
type ProviderConfig struct {
	// Provider is the registry name (mqtt, influxdb, kafka, ...).
	Provider string `yaml:"provider"`

	// Configuration is the provider connection string, e.g.
	// "h=10.0.0.5;p=1883;t=sensors/room1;rc=10".
	Configuration string `yaml:"configuration"`
}

// PublishConfig selects how sensor loops react to a failed write.
type PublishConfig struct {
	// Policy is one of "retry" (forever), "once" (best effort) or "bounded".
	Policy string `yaml:"policy"`

	// RetryDelay is the pause between publish attempts (seconds).
	RetryDelay int `yaml:"retry_delay"`

	// MaxAttempts caps attempts under the bounded policy.
	MaxAttempts int `yaml:"max_attempts"`
}

// SamplingConfig bounds the per-cycle sensor read retries.
type SamplingConfig struct {
	MaxRetries   int `yaml:"max_retries"`
	RetryDelayMS int `yaml:"retry_delay_ms"`
}

// SensorConfig describes one sensor loop.
type SensorConfig struct {
	Name   string `yaml:"name"`
	Driver string `yaml:"driver"`
	Run    bool   `yaml:"run"`

	// Sleep is the sampling interval (seconds).
	Sleep int `yaml:"sleep"`

	// Configuration is the driver connection string.
	Configuration string `yaml:"configuration"`
}

// MetricsConfig controls the Prometheus listener.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SENSORSTREAM_SECTION_KEY
// For example: SENSORSTREAM_OUTPUT_CONFIGURATION, SENSORSTREAM_LOG_LEVEL
//
// A missing file yields ErrConfigNotFound and unparsable YAML yields
// ErrConfigMalformed, so callers can tell the two apart.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrConfigNotFound.Withf("%s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, ErrConfigMalformed.With(err)
	}

	applyEnvOverrides(cfg)
	cfg.applySensorDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Publish: PublishConfig{
			Policy:      PolicyRetry,
			RetryDelay:  2,
			MaxAttempts: 3,
		},
		Sampling: SamplingConfig{
			MaxRetries:   5,
			RetryDelayMS: 500,
		},
		Metrics: MetricsConfig{
			Listen: "127.0.0.1:9105",
		},
	}
}

// defaultSensorSleep is the sampling interval used when sleep is unset.
const defaultSensorSleep = 5

func (c *Config) applySensorDefaults() {
	for i := range c.Sensors {
		if c.Sensors[i].Sleep <= 0 {
			c.Sensors[i].Sleep = defaultSensorSleep
		}
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SENSORSTREAM_OUTPUT_PROVIDER"); v != "" {
		cfg.OutputProvider.Provider = v
	}
	if v := os.Getenv("SENSORSTREAM_OUTPUT_CONFIGURATION"); v != "" {
		cfg.OutputProvider.Configuration = v
	}
	if v := os.Getenv("SENSORSTREAM_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SENSORSTREAM_METRICS_LISTEN"); v != "" {
		cfg.Metrics.Listen = v
	}
}

// Validate checks the configuration for errors.
//
// Provider selection is not validated here: the provider registry reports
// missing keys and unknown names with their own codes.
func (c *Config) Validate() error {
	var errs []string

	switch c.Publish.Policy {
	case PolicyRetry, PolicyOnce, PolicyBounded:
	default:
		errs = append(errs, fmt.Sprintf("publish.policy %q must be retry, once or bounded", c.Publish.Policy))
	}
	if c.Publish.RetryDelay < 0 {
		errs = append(errs, "publish.retry_delay must not be negative")
	}
	if c.Publish.Policy == PolicyBounded && c.Publish.MaxAttempts < 1 {
		errs = append(errs, "publish.max_attempts must be at least 1 for the bounded policy")
	}

	if c.Sampling.MaxRetries < 0 {
		errs = append(errs, "sampling.max_retries must not be negative")
	}
	if c.Sampling.RetryDelayMS < 0 {
		errs = append(errs, "sampling.retry_delay_ms must not be negative")
	}

	seen := make(map[string]bool)
	for i, s := range c.Sensors {
		if s.Name == "" {
			errs = append(errs, fmt.Sprintf("sensors[%d].name is required", i))
		} else if seen[s.Name] {
			errs = append(errs, fmt.Sprintf("sensors[%d].name %q is duplicated", i, s.Name))
		}
		seen[s.Name] = true
		if s.Driver == "" {
			errs = append(errs, fmt.Sprintf("missing arg: sensors[%d].driver", i))
		}
	}

	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		errs = append(errs, "metrics.listen is required when metrics are enabled")
	}

	if len(errs) > 0 {
		return ErrConfigInvalid.Withf("%s", strings.Join(errs, "; "))
	}

	return nil
}

// RetryDelayDuration returns the publish retry delay as a Duration.
func (p PublishConfig) RetryDelayDuration() time.Duration {
	return time.Duration(p.RetryDelay) * time.Second
}

// RetryDelayDuration returns the sampling retry delay as a Duration.
func (s SamplingConfig) RetryDelayDuration() time.Duration {
	return time.Duration(s.RetryDelayMS) * time.Millisecond
}

// Interval returns the sensor sampling interval as a Duration.
func (s SensorConfig) Interval() time.Duration {
	return time.Duration(s.Sleep) * time.Second
}
