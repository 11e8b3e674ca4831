// Package sensor defines the sensor reading model and the drivers that
// produce readings.
//
// A Reader samples one physical (or simulated) sensor. Drivers are selected
// by name from the sensors section of the configuration:
//
//	r, err := sensor.Open("co2", "sim-co2", "seed=7")
//	reading, err := r.Sample(ctx)
//	payload, err := reading.Payload()
//
// Built-in drivers:
//   - sim-co2: CO2 concentration and temperature
//   - sim-bme680: temperature, humidity, pressure and VOC resistance
//   - sim-gas: gas resistance
//   - sysfs: a single numeric value read from a file such as
//     /sys/bus/iio/devices/iio:device0/in_temp_input
//
// The simulated drivers accept "seed" for a deterministic walk and
// "failevery" to fail every Nth sample, which exercises the bounded sampling
// retry in package stream.
package sensor
