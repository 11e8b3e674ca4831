package influxdb

import (
	"time"

	"github.com/nerrad567/sensorstream/internal/infrastructure/config"
)

// Defaults for optional options.
const (
	defaultMeasurement = "sensor"
	defaultTimeout     = 10 * time.Second
	defaultRetryCount  = 3
	defaultRetryDelay  = 2 * time.Second
)

var (
	keyURL         = []string{"url", "u"}
	keyToken       = []string{"token", "tk"}
	keyOrg         = []string{"org", "o"}
	keyBucket      = []string{"bucket", "b"}
	keyMeasurement = []string{"measurement", "m"}
	keyTimeout     = []string{"timeout", "tout"}
	keyRetryCount  = []string{"retrycount", "rc"}
	keyRetryDelay  = []string{"retrydelay", "rd"}
)

// Config is the InfluxDB provider configuration.
type Config struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string

	// Timeout bounds the ping and every write request.
	Timeout time.Duration

	// MaxRetries is the number of failed open attempts tolerated.
	MaxRetries int
	RetryDelay time.Duration
}

// parseConfig builds a Config from a connection string such as
//
//	url=http://127.0.0.1:8086;token=...;org=nen;bucket=sensors
func parseConfig(connString string) (Config, error) {
	conn, err := config.ParseConnString(connString)
	if err != nil {
		return Config{}, ErrInvalidOption.With(err)
	}

	cfg := Config{
		URL:         conn.String(keyURL, ""),
		Token:       conn.String(keyToken, ""),
		Org:         conn.String(keyOrg, ""),
		Bucket:      conn.String(keyBucket, ""),
		Measurement: conn.String(keyMeasurement, defaultMeasurement),
	}

	for _, opt := range []struct {
		name  string
		value string
	}{
		{"url", cfg.URL},
		{"token", cfg.Token},
		{"org", cfg.Org},
		{"bucket", cfg.Bucket},
	} {
		if opt.value == "" {
			return Config{}, ErrMissingOption.Withf("%s", opt.name)
		}
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
