// Package amqp provides the "rabbitmq" output provider built on amqp091-go.
//
// The provider declares the configured queue and publishes each payload to
// it through the default exchange. Delivery mode 2 makes both the queue and
// the messages persistent.
package amqp
