// Package pubstack provides the transform stage that sits between sensor
// sampling and publishing.
//
// A Stage transforms each serialised reading before it is written to the
// output provider, and receives a periodic Pump tick on its own cadence
// (the product file's loop_interval) for housekeeping.
package pubstack

import (
	"sort"

	"github.com/nerrad567/sensorstream/internal/fault"
)

// Stage names accepted by New.
const (
	StagePassthrough = "passthrough"
	StageBase64      = "base64"
)

// ErrUnknownStage is returned by New for an unknown stage name.
var ErrUnknownStage = fault.New(fault.KindConfiguration, 14, "unknown transform stage")

// ErrTransform is returned by Transform when a payload cannot be processed.
var ErrTransform = fault.New(fault.KindPublish, 210, "payload transform failed")

// Stage transforms payloads on their way to the output provider.
//
// Transform is called concurrently by every sensor loop; Pump is called from
// a single goroutine. Implementations must be safe for that use.
type Stage interface {
	// Init configures the stage from the product file options.
	Init(opts map[string]any) error

	// Pump is the periodic housekeeping tick.
	Pump()

	// Transform returns the payload to publish. An error skips the cycle.
	Transform(payload []byte) ([]byte, error)
}

var stages = map[string]func() Stage{
	StagePassthrough: func() Stage { return &Passthrough{} },
	StageBase64:      func() Stage { return &Base64{} },
}

// New returns an uninitialised stage by name. An empty name selects
// passthrough.
func New(name string) (Stage, error) {
	if name == "" {
		name = StagePassthrough
	}
	f, ok := stages[name]
	if !ok {
		return nil, ErrUnknownStage.Withf("%q (known: %v)", name, Names())
	}
	return f(), nil
}

// Names returns the known stage names, sorted.
func Names() []string {
	names := make([]string, 0, len(stages))
	for n := range stages {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
