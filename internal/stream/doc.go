// Package stream runs the sensor pipeline: one loop per sensor samples a
// reading, formats it as JSON, passes it through the transform stage and
// writes it to the output provider under a shared publish lock.
//
// Every blocking wait in this package selects on the process StopSignal, so
// Stop ends all loops within one wait interval:
//
//	stop := lifecycle.NewStopSignal()
//	r := &stream.Runner{Output: out, Loops: loops, Stage: stage, Stop: stop, Log: log}
//	err := r.Run() // returns after stop.Stop() or a fatal error
package stream
