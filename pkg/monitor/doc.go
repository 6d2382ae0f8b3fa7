// Package monitor watches a discovery transport for devices and raises a
// notification whenever a device's connection state changes.
//
// The package has two halves that only make sense together:
//
// # Multiplexer
//
// A Multiplexer merges the transport's discovery stream with a growing set
// of per-device change streams into one sequence of MergedEvent values.
// Streams are registered live, between two calls to Next, so the set can grow
// for as long as devices keep appearing. Each registered stream is drained by
// its own forwarding goroutine into a single merged channel; order is kept
// within one source, never across sources.
//
// # Monitor
//
// A Monitor runs the event loop. It is the only goroutine that touches the
// Multiplexer's stream set:
//
//	discovery "added"   -> resolve handle, register its change stream,
//	                       notify if already connected
//	change "Connected"  -> re-resolve handle, notify with the new value
//	everything else     -> recorded and ignored
//
// Per-event failures (unknown device, stream that cannot be opened, failed
// snapshot) are logged and recorded, never fatal. Only failing to open the
// discovery stream itself ends Run with an error.
//
// Transports live in sibling packages (bluez, discovery) and notification
// sinks in package notify; all of them plug in through the Transport,
// Handle and Notifier interfaces defined here.
package monitor
