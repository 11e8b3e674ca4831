package mqtt

import (
	"fmt"
	"net"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Connection constants.
const (
	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 250 // milliseconds

	// defaultRetryDelay separates failed connect attempts.
	defaultRetryDelay = time.Second

	// maxPayloadSize bounds a single reading payload (1MB).
	maxPayloadSize = 1 << 20
)

// ClientFactory creates the underlying paho client. Tests replace it with a
// fake; production uses pahomqtt.NewClient.
type ClientFactory func(opts *pahomqtt.ClientOptions) pahomqtt.Client

// buildClientOptions creates paho MQTT options from the publish client config.
//
// This configures:
//   - Broker URL (tcp://host:port)
//   - Client ID derived by ClientID
//   - Credentials (if provided)
//   - Local bind address (if provided)
//   - Keepalive and connect timeout
//
// paho's own reconnect machinery is disabled: the PublishClient owns the
// retry policy and the reconnect loop.
func buildClientOptions(cfg Config, clientID string) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port))
	opts.SetClientID(clientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)

	opts.SetConnectTimeout(cfg.timeout())
	opts.SetKeepAlive(time.Duration(cfg.KeepAlive) * time.Second)
	opts.SetWriteTimeout(cfg.timeout())

	if cfg.BindAddress != "" {
		opts.SetDialer(&net.Dialer{
			Timeout:   cfg.timeout(),
			LocalAddr: &net.TCPAddr{IP: net.ParseIP(cfg.BindAddress)},
		})
	}

	return opts
}
