package mqtt

import (
	"time"
)

// Write publishes payload to the configured topic with the configured QoS.
//
// Write requires a usable connection and does not retry: a failed publish is
// reported to the caller, which owns the retry policy. A disconnect detected
// here is left to the supervisor, which reconnects in the background.
//
// Returns:
//   - ErrNotConnected when the client is not connected
//   - ErrPayloadTooLarge when payload exceeds 1MB
//   - ErrPublishTimeout when the broker does not acknowledge within the timeout
//   - ErrPublishFailed wrapping the transport error
func (p *PublishClient) Write(payload []byte) error {
	p.mu.RLock()
	client := p.client
	state := p.state
	topic := p.cfg.Topic
	qos := p.cfg.QoS
	timeout := p.cfg.timeout()
	p.mu.RUnlock()

	if client == nil || state != StateConnected || !p.conn.IsSet() {
		return ErrNotConnected
	}
	if len(payload) > maxPayloadSize {
		return ErrPayloadTooLarge
	}

	start := time.Now()
	token := client.Publish(topic, qos, false, payload)
	if !token.WaitTimeout(timeout) {
		return ErrPublishTimeout.Withf("no acknowledgement after %s", timeout)
	}
	if err := token.Error(); err != nil {
		return ErrPublishFailed.With(err)
	}

	p.log.Debug("message published",
		"topic", topic,
		"bytes", len(payload),
		"elapsed", time.Since(start),
	)
	return nil
}
