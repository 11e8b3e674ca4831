// Package lifecycle provides the two synchronisation primitives the rest of
// sensorstream coordinates through.
//
//   - StopSignal is the set-once shutdown latch. It is created once in main,
//     passed by reference into every loop and provider, and observed by every
//     blocking wait so shutdown is bounded in time.
//   - ConnectionEvent is the boolean connected/disconnected condition that
//     asynchronous transport callbacks set and clear, and that synchronous
//     callers wait on.
//
// Both are safe for concurrent use. Neither polls: waits wake as soon as the
// state they are waiting for is reached.
package lifecycle
