package mqtt

// ConnectionState is the lifecycle state of a PublishClient.
type ConnectionState int

const (
	StateUnconfigured ConnectionState = iota
	StateConfigured
	StateConnecting
	StateConnected
	StateDisconnected
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfigured:
		return "configured"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
