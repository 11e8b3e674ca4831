package mqtt

import (
	"time"

	"github.com/nerrad567/sensorstream/internal/infrastructure/config"
)

// Configuration defaults and bounds.
const (
	defaultPort       = 1883
	defaultKeepAlive  = 60
	defaultQoS        = 1
	defaultTimeout    = 20
	defaultMaxRetries = 10

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2
)

// Accepted connection-string aliases, first entry is the canonical name.
var (
	keyHost        = []string{"host", "h"}
	keyPort        = []string{"port", "p"}
	keyTopic       = []string{"topic", "t"}
	keyBindAddress = []string{"bindaddress", "ba"}
	keyRetryCount  = []string{"retrycount", "rc"}
	keyKeepAlive   = []string{"keepalive", "ka"}
	keyQoS         = []string{"qos", "q"}
	keyTimeout     = []string{"timeout", "tout"}
	keyPrefix      = []string{"prefix", "prf"}
	keyUser        = []string{"user", "u"}
	keyPassword    = []string{"password", "pw"}
)

// Config is the immutable publish client configuration built by Init.
type Config struct {
	Host        string
	Port        int
	Topic       string
	BindAddress string

	// KeepAlive is in seconds.
	KeepAlive int

	QoS byte

	// Timeout bounds each connect attempt and the graceful disconnect (seconds).
	Timeout int

	// MaxRetries is the number of failed attempts tolerated before Open gives up.
	MaxRetries int

	Prefix string

	// Username and Password are passed through to the broker unchanged.
	Username string
	Password string
}

// timeout returns Timeout as a Duration, never shorter than one second.
func (c Config) timeout() time.Duration {
	if c.Timeout < 1 {
		return time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// parseConfig builds a Config from a parsed connection string.
//
// Out-of-range qos and negative timeout values are normalised rather than
// rejected; each normalisation is reported in warnings so Init can log it.
func parseConfig(conn config.ConnString) (Config, []string, error) {
	var warnings []string

	if !conn.Has(keyHost...) || !conn.Has(keyTopic...) {
		return Config{}, nil, ErrMissingMandatory
	}

	cfg := Config{
		Host:        conn.String(keyHost, ""),
		Topic:       conn.String(keyTopic, ""),
		BindAddress: conn.String(keyBindAddress, ""),
		Prefix:      conn.String(keyPrefix, ""),
		Username:    conn.String(keyUser, ""),
		Password:    conn.String(keyPassword, ""),
	}
	if cfg.Host == "" || cfg.Topic == "" {
		return Config{}, nil, ErrMissingMandatory
	}

	ints := []struct {
		keys []string
		def  int
		dst  *int
	}{
		{keyPort, defaultPort, &cfg.Port},
		{keyRetryCount, defaultMaxRetries, &cfg.MaxRetries},
		{keyKeepAlive, defaultKeepAlive, &cfg.KeepAlive},
		{keyTimeout, defaultTimeout, &cfg.Timeout},
	}
	for _, f := range ints {
		v, err := conn.Int(f.keys, f.def)
		if err != nil {
			return Config{}, nil, ErrInvalidParameter.With(err)
		}
		*f.dst = v
	}

	qos, err := conn.Int(keyQoS, defaultQoS)
	if err != nil {
		return Config{}, nil, ErrInvalidParameter.With(err)
	}
	if qos < 0 || qos > maxQoS {
		warnings = append(warnings, "invalid qos, using default")
		qos = defaultQoS
	}
	cfg.QoS = byte(qos)

	if cfg.Timeout < 0 {
		warnings = append(warnings, "invalid timeout, using default")
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 {
		warnings = append(warnings, "invalid retry count, using 0")
		cfg.MaxRetries = 0
	}

	return cfg, warnings, nil
}
