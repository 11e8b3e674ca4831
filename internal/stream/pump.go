package stream

import (
	"time"

	"github.com/nerrad567/sensorstream/internal/lifecycle"
	"github.com/nerrad567/sensorstream/internal/pubstack"
)

// DefaultPumpInterval is used when the product file gives none.
const DefaultPumpInterval = 100 * time.Millisecond

// Pump calls stage.Pump every interval until stop is set.
func Pump(stage pubstack.Stage, interval time.Duration, stop *lifecycle.StopSignal) {
	if interval <= 0 {
		interval = DefaultPumpInterval
	}
	for !stop.Sleep(interval) {
		stage.Pump()
	}
}
