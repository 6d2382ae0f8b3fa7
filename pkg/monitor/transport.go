package monitor

import "context"

// Transport is the discovery collaborator the monitor runs on.
type Transport interface {
	// AdapterName names the adapter or interface discovery runs on.
	AdapterName() string

	// Discover opens the discovery stream. The channel is closed when the
	// stream ends or ctx is cancelled. An error here means the transport
	// could not be initialized and is fatal for the monitor.
	Discover(ctx context.Context) (<-chan DiscoveryEvent, error)

	// Resolve returns a handle for id. It does not block on the transport.
	// Unknown identifiers fail with an error wrapping ErrNotFound.
	Resolve(id EntityID) (Handle, error)
}

// Handle is a cheap reference to one device. Handles may go stale when the
// device disappears; calls on a stale handle fail with ErrNotFound.
type Handle interface {
	// ID returns the device identifier the handle is bound to.
	ID() EntityID

	// Name returns the device's display name.
	Name(ctx context.Context) (string, error)

	// Connected reads the current connection state.
	Connected(ctx context.Context) (bool, error)

	// Changes opens the device's change stream. It reports only future
	// transitions. The channel is closed when the device is removed or ctx
	// is cancelled.
	Changes(ctx context.Context) (<-chan Change, error)
}

// Notifier raises a notification. Implementations return within a short,
// bounded time and handle their own failures.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify calls f(ctx, n).
func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}
