// Package redis provides the "redis" output provider built on go-redis.
//
// Payloads are sent with PUBLISH, so they reach whichever subscribers are
// listening on the channel at the time; nothing is stored server-side.
package redis
