// Package nats provides the "nats" output provider built on nats.go.
//
// Payloads are published on a core NATS subject and flushed. The client
// reconnects on its own; once it exhausts its reconnect budget the
// connection is closed and the failure is reported as fatal.
package nats
