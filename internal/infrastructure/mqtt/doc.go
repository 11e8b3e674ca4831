// Package mqtt provides the broker publish client used by sensorstream.
//
// PublishClient owns a single paho.mqtt.golang connection and runs its own
// connect/retry state machine on top of it:
//
//	p := mqtt.NewPublishClient(log)
//	if err := p.Init("h=127.0.0.1;t=sensors/room1;rc=10;q=1"); err != nil {
//	    return err
//	}
//	p.AttachStopSignal(stop)
//	if err := p.Open(); err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	err := p.Write(payload)
//
// Open retries a failing broker up to the configured retry count, observing
// the stop signal between and during attempts. Once open, an unexpected
// disconnect is handled in the background by re-running the same loop; if
// that loop gives up the error is delivered to the SetOnFatal callback.
//
// Write never retries. Retry policy belongs to the producer (see package
// stream).
//
// All errors are fault.Error values with stable numeric codes.
package mqtt
