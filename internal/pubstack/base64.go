package pubstack

import (
	"encoding/base64"
	"fmt"
	"sync/atomic"
)

// Base64 encodes each payload. Options:
//
//	{"encoding": "std" | "url" | "rawurl"}
type Base64 struct {
	enc *base64.Encoding

	// encoded counts transformed payloads between pumps.
	encoded atomic.Uint64
	total   atomic.Uint64
}

// Init selects the alphabet.
func (b *Base64) Init(opts map[string]any) error {
	b.enc = base64.StdEncoding

	v, ok := opts["encoding"]
	if !ok {
		return nil
	}
	name, ok := v.(string)
	if !ok {
		return fmt.Errorf("base64: encoding must be a string, got %T", v)
	}

	switch name {
	case "std", "":
		b.enc = base64.StdEncoding
	case "url":
		b.enc = base64.URLEncoding
	case "rawurl":
		b.enc = base64.RawURLEncoding
	default:
		return fmt.Errorf("base64: unknown encoding %q", name)
	}
	return nil
}

// Pump folds the per-interval count into the running total.
func (b *Base64) Pump() {
	b.total.Add(b.encoded.Swap(0))
}

// Total returns the number of payloads encoded up to the last Pump.
func (b *Base64) Total() uint64 {
	return b.total.Load()
}

// Transform returns the encoded payload.
func (b *Base64) Transform(payload []byte) ([]byte, error) {
	enc := b.enc
	if enc == nil {
		return nil, ErrTransform.Withf("base64 stage used before Init")
	}
	out := make([]byte, enc.EncodedLen(len(payload)))
	enc.Encode(out, payload)
	b.encoded.Add(1)
	return out, nil
}
