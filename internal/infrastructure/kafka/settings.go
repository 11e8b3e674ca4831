package kafka

import (
	"strings"
	"time"

	"github.com/nerrad567/sensorstream/internal/infrastructure/config"
)

// Defaults for optional options.
const (
	defaultTimeout    = 10 * time.Second
	defaultRetryCount = 3
	defaultRetryDelay = 2 * time.Second
	defaultAcks       = -1
)

var (
	keyBrokers    = []string{"brokers", "b"}
	keyTopic      = []string{"topic", "t"}
	keyTimeout    = []string{"timeout", "tout"}
	keyRetryCount = []string{"retrycount", "rc"}
	keyRetryDelay = []string{"retrydelay", "rd"}
	keyAcks       = []string{"acks", "a"}
	keyUser       = []string{"user", "u"}
	keyPassword   = []string{"password", "pw"}
)

// Config is the Kafka provider configuration.
type Config struct {
	Brokers []string
	Topic   string

	// Timeout bounds the broker probe and every write.
	Timeout time.Duration

	MaxRetries int
	RetryDelay time.Duration

	// Acks is the required acknowledgement level: -1 all, 0 none, 1 leader.
	Acks int

	// Username enables SASL/PLAIN when non-empty.
	Username string
	Password string
}

// parseConfig builds a Config from a connection string such as
//
//	b=10.0.0.5:9092,10.0.0.6:9092;t=sensors;a=1
func parseConfig(connString string) (Config, error) {
	conn, err := config.ParseConnString(connString)
	if err != nil {
		return Config{}, ErrInvalidOption.With(err)
	}

	cfg := Config{
		Topic:    conn.String(keyTopic, ""),
		Username: conn.String(keyUser, ""),
		Password: conn.String(keyPassword, ""),
	}
	for _, b := range strings.Split(conn.String(keyBrokers, ""), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.Brokers = append(cfg.Brokers, b)
		}
	}

	if len(cfg.Brokers) == 0 {
		return Config{}, ErrMissingOption.Withf("brokers")
	}
	if cfg.Topic == "" {
		return Config{}, ErrMissingOption.Withf("topic")
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
	if cfg.Acks, err = conn.Int(keyAcks, defaultAcks); err != nil {
		return Config{}, ErrInvalidOption.With(err)
	}
	switch cfg.Acks {
	case -1, 0, 1:
	default:
		return Config{}, ErrInvalidOption.Withf("acks must be -1, 0 or 1, got %d", cfg.Acks)
	}

	return cfg, nil
}
