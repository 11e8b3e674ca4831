// Package kafka provides the "kafka" output provider built on
// segmentio/kafka-go.
//
// Each payload becomes one message on the configured topic. Writes are
// synchronous with a batch size of one so that the sensor loop's publish
// policy sees every delivery failure.
package kafka
