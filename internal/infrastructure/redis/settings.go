package redis

import (
	"time"

	"github.com/nerrad567/sensorstream/internal/infrastructure/config"
)

// Defaults for optional options.
const (
	defaultAddr       = "localhost:6379"
	defaultTimeout    = 3 * time.Second
	defaultRetryCount = 3
	defaultRetryDelay = 2 * time.Second
)

var (
	keyAddr       = []string{"addr", "a"}
	keyChannel    = []string{"channel", "t"}
	keyDB         = []string{"db"}
	keyPassword   = []string{"password", "pw"}
	keyTimeout    = []string{"timeout", "tout"}
	keyRetryCount = []string{"retrycount", "rc"}
	keyRetryDelay = []string{"retrydelay", "rd"}
)

// Config is the Redis provider configuration.
type Config struct {
	Addr     string
	Channel  string
	DB       int
	Password string

	// Timeout bounds dialing and every command.
	Timeout time.Duration

	MaxRetries int
	RetryDelay time.Duration
}

// parseConfig builds a Config from a connection string such as
//
//	a=10.0.0.5:6379;t=sensors.room1;db=2
func parseConfig(connString string) (Config, error) {
	conn, err := config.ParseConnString(connString)
	if err != nil {
		return Config{}, ErrInvalidOption.With(err)
	}

	cfg := Config{
		Addr:     conn.String(keyAddr, defaultAddr),
		Channel:  conn.String(keyChannel, ""),
		Password: conn.String(keyPassword, ""),
	}
	if cfg.Channel == "" {
		return Config{}, ErrMissingOption.Withf("channel")
	}

	if cfg.DB, err = conn.Int(keyDB, 0); err != nil {
		return Config{}, ErrInvalidOption.With(err)
	}
	if cfg.DB < 0 {
		return Config{}, ErrInvalidOption.Withf("db must not be negative, got %d", cfg.DB)
	}
	if cfg.Timeout, err = conn.Seconds(keyTimeout, defaultTimeout); err != nil {
		return Config{}, ErrInvalidOption.With(err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries, err = conn.Int(keyRetryCount, defaultRetryCount); err != nil {
		return Config{}, ErrInvalidOption.With(err)
	}
	if cfg.RetryDelay, err = conn.Seconds(keyRetryDelay, defaultRetryDelay); err != nil {
		return Config{}, ErrInvalidOption.With(err)
	}

	return cfg, nil
}
