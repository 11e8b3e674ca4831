package pubstack

// Passthrough publishes payloads unchanged.
type Passthrough struct{}

// Init ignores its options.
func (*Passthrough) Init(map[string]any) error { return nil }

// Pump does nothing.
func (*Passthrough) Pump() {}

// Transform returns payload as is.
func (*Passthrough) Transform(payload []byte) ([]byte, error) {
	return payload, nil
}
