package sensor

import (
	"context"
	"sort"

	"github.com/nerrad567/sensorstream/internal/infrastructure/config"
)

// Reader samples a sensor.
type Reader interface {
	// Sample takes one reading. A failed sample returns an ErrSampleFailed
	// error; the caller decides whether to retry.
	Sample(ctx context.Context) (Reading, error)
}

// DriverFunc builds a Reader for the sensor name from a driver connection string.
type DriverFunc func(name string, conn config.ConnString) (Reader, error)

var drivers = map[string]DriverFunc{
	"sim-co2":    newSimCO2,
	"sim-bme680": newSimBME680,
	"sim-gas":    newSimGas,
	"sysfs":      newSysfs,
}

// Drivers returns the built-in driver names, sorted.
func Drivers() []string {
	names := make([]string, 0, len(drivers))
	for n := range drivers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Open creates the Reader for a configured sensor.
func Open(name, driver, connString string) (Reader, error) {
	fn, ok := drivers[driver]
	if !ok {
		return nil, ErrUnknownDriver.Withf("%q", driver)
	}

	conn, err := config.ParseConnString(connString)
	if err != nil {
		return nil, ErrDriverConfig.With(err)
	}
	return fn(name, conn)
}
