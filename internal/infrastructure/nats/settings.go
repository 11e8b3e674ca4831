package nats

import (
	"time"

	natsgo "github.com/nats-io/nats.go"

	"github.com/nerrad567/sensorstream/internal/infrastructure/config"
)

// Defaults for optional options.
const (
	defaultTimeout    = 5 * time.Second
	defaultRetryCount = 3
	defaultRetryDelay = 2 * time.Second
)

var (
	keyURL        = []string{"url", "u"}
	keySubject    = []string{"subject", "t"}
	keyTimeout    = []string{"timeout", "tout"}
	keyRetryCount = []string{"retrycount", "rc"}
	keyRetryDelay = []string{"retrydelay", "rd"}
	keyName       = []string{"name", "n"}
)

// Config is the NATS provider configuration.
type Config struct {
	URL     string
	Subject string

	// Name is the client name reported to the server.
	Name string

	// Timeout bounds connecting and each flush after a publish.
	Timeout time.Duration

	// MaxRetries caps both the initial connect attempts and the client's
	// reconnect attempts after a drop.
	MaxRetries int
	RetryDelay time.Duration
}

// parseConfig builds a Config from a connection string such as
//
//	u=nats://10.0.0.5:4222;t=sensors.room1
func parseConfig(connString string) (Config, error) {
	conn, err := config.ParseConnString(connString)
	if err != nil {
		return Config{}, ErrInvalidOption.With(err)
	}

	cfg := Config{
		URL:     conn.String(keyURL, natsgo.DefaultURL),
		Subject: conn.String(keySubject, ""),
		Name:    conn.String(keyName, "sensorstream"),
	}
	if cfg.Subject == "" {
		return Config{}, ErrMissingOption.Withf("subject")
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
