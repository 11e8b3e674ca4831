package sensor

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/nerrad567/sensorstream/internal/infrastructure/config"
)

var (
	keySeed      = []string{"seed"}
	keyFailEvery = []string{"failevery", "fe"}
)

// channel is one simulated measurement: a bounded random walk.
type channel struct {
	field    string
	min, max float64
	step     float64
	value    float64
}

// simulated is a Reader backed by random walks. It stands in for hardware
// on hosts without the sensor attached.
type simulated struct {
	name      string
	failEvery int

	mu       sync.Mutex
	rng      *rand.Rand
	channels []channel
	count    int
}

func newSimulated(name string, conn config.ConnString, channels []channel) (*simulated, error) {
	seed, err := conn.Int(keySeed, 0)
	if err != nil {
		return nil, ErrDriverConfig.With(err)
	}
	failEvery, err := conn.Int(keyFailEvery, 0)
	if err != nil {
		return nil, ErrDriverConfig.With(err)
	}
	if seed == 0 {
		seed = int(time.Now().UnixNano())
	}

	s := &simulated{
		name:      name,
		failEvery: failEvery,
		rng:       rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1)), // #nosec G404 -- simulation only
		channels:  channels,
	}
	for i := range s.channels {
		c := &s.channels[i]
		c.value = c.min + (c.max-c.min)*s.rng.Float64()
	}
	return s, nil
}

// Sample advances every channel one step and returns the new values.
func (s *simulated) Sample(ctx context.Context) (Reading, error) {
	if err := ctx.Err(); err != nil {
		return Reading{}, ErrSampleFailed.With(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	if s.failEvery > 0 && s.count%s.failEvery == 0 {
		return Reading{}, ErrSampleFailed.Withf("%s: simulated fault on sample %d", s.name, s.count)
	}

	values := make(map[string]float64, len(s.channels))
	for i := range s.channels {
		c := &s.channels[i]
		c.value += (s.rng.Float64()*2 - 1) * c.step
		c.value = math.Min(c.max, math.Max(c.min, c.value))
		values[c.field] = math.Round(c.value*100) / 100
	}

	return Reading{
		Sensor: s.name,
		Time:   time.Now(),
		Values: values,
	}, nil
}

func newSimCO2(name string, conn config.ConnString) (Reader, error) {
	return newSimulated(name, conn, []channel{
		{field: "co2", min: 400, max: 2000, step: 15},
		{field: "temperature", min: 15, max: 30, step: 0.2},
	})
}

func newSimBME680(name string, conn config.ConnString) (Reader, error) {
	return newSimulated(name, conn, []channel{
		{field: "temp", min: 15, max: 30, step: 0.2},
		{field: "hum", min: 20, max: 80, step: 0.5},
		{field: "press", min: 980, max: 1040, step: 0.3},
		{field: "voc", min: 5, max: 500, step: 4},
	})
}

func newSimGas(name string, conn config.ConnString) (Reader, error) {
	return newSimulated(name, conn, []channel{
		{field: "gas", min: 1, max: 300, step: 3},
	})
}
