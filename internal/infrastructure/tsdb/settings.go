package tsdb

import (
	"strings"
	"time"

	"github.com/nerrad567/sensorstream/internal/infrastructure/config"
)

// Defaults for optional options.
const (
	defaultMeasurement   = "sensor"
	defaultBatchSize     = 1
	defaultFlushInterval = time.Second
	defaultTimeout       = 5 * time.Second
	defaultRetryCount    = 3
	defaultRetryDelay    = 2 * time.Second
)

var (
	keyURL           = []string{"url", "u"}
	keyMeasurement   = []string{"measurement", "m"}
	keyBatchSize     = []string{"batchsize", "bs"}
	keyFlushInterval = []string{"flushinterval", "fi"}
	keyTimeout       = []string{"timeout", "tout"}
	keyRetryCount    = []string{"retrycount", "rc"}
	keyRetryDelay    = []string{"retrydelay", "rd"}
)

// Config is the VictoriaMetrics provider configuration.
type Config struct {
	// URL is the server base URL without a trailing slash.
	URL         string
	Measurement string

	// BatchSize is the number of lines buffered before a synchronous flush.
	// With the default of 1 every Write is a blocking POST.
	BatchSize     int
	FlushInterval time.Duration

	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// parseConfig builds a Config from a connection string such as
//
//	url=http://127.0.0.1:8428;m=air;bs=50;fi=2
func parseConfig(connString string) (Config, error) {
	conn, err := config.ParseConnString(connString)
	if err != nil {
		return Config{}, ErrInvalidOption.With(err)
	}

	cfg := Config{
		URL:         strings.TrimRight(conn.String(keyURL, ""), "/"),
		Measurement: conn.String(keyMeasurement, defaultMeasurement),
	}
	if cfg.URL == "" {
		return Config{}, ErrMissingOption.Withf("url")
	}

	if cfg.BatchSize, err = conn.Int(keyBatchSize, defaultBatchSize); err != nil {
		return Config{}, ErrInvalidOption.With(err)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.FlushInterval, err = conn.Seconds(keyFlushInterval, defaultFlushInterval); err != nil {
		return Config{}, ErrInvalidOption.With(err)
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	if cfg.Timeout, err = conn.Seconds(keyTimeout, defaultTimeout); err != nil {
		return Config{}, ErrInvalidOption.With(err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RetryDelay, err = conn.Seconds(keyRetryDelay, defaultRetryDelay); err != nil {
		return Config{}, ErrInvalidOption.With(err)
	}
	if cfg.MaxRetries, err = conn.Int(keyRetryCount, defaultRetryCount); err != nil {
		return Config{}, ErrInvalidOption.With(err)
	}

	return cfg, nil
}
