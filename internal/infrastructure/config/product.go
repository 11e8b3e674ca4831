package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"
)

// Product is the transform-stage configuration read from the JSON product file.
type Product struct {
	// LoopInterval is the pump cadence in milliseconds.
	LoopInterval int `json:"loop_interval"`

	// Stage names the transform stage; empty selects passthrough.
	Stage string `json:"stage"`

	// Options are handed to the stage's Init unchanged.
	Options map[string]any `json:"options"`
}

// defaultLoopInterval is used when no product file is given.
const defaultLoopInterval = 100

// DefaultProduct returns the product used when no product file is supplied.
func DefaultProduct() *Product {
	return &Product{LoopInterval: defaultLoopInterval}
}

// LoadProduct reads the JSON product file.
func LoadProduct(path string) (*Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrConfigNotFound.Withf("%s", path)
		}
		return nil, ErrProductMalformed.With(err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ErrProductMalformed.With(err)
	}
	if _, ok := raw["loop_interval"]; !ok {
		return nil, ErrProductIncomplete
	}

	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, ErrProductMalformed.With(err)
	}
	if p.LoopInterval <= 0 {
		return nil, ErrProductIncomplete.Withf("loop_interval must be positive")
	}
	return &p, nil
}

// Interval returns the pump cadence as a Duration.
func (p *Product) Interval() time.Duration {
	return time.Duration(p.LoopInterval) * time.Millisecond
}
