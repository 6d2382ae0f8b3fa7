package monitor

import "errors"

// EntityID uniquely names a discovered device for the lifetime of the
// process, e.g. a Bluetooth address or an mDNS instance name.
type EntityID string

// Property names an observable device attribute.
type Property string

// Well-known properties. Transports may report others; the monitor
// accepts and ignores them.
const (
	PropertyConnected Property = "Connected"
	PropertyName      Property = "Name"
	PropertyAlias     Property = "Alias"
	PropertyRSSI      Property = "RSSI"
	PropertyPaired    Property = "Paired"
	PropertyAddresses Property = "Addresses"
)

// Change is a single attribute change reported by a device's change stream.
type Change struct {
	Property Property
	Value    any
}

// Connected returns the new connection state if this is a change of the
// connected attribute carrying a boolean.
func (c Change) Connected() (connected, ok bool) {
	if c.Property != PropertyConnected {
		return false, false
	}
	connected, ok = c.Value.(bool)
	return connected, ok
}

// DiscoveryKind classifies discovery stream events.
type DiscoveryKind uint8

const (
	// DiscoveryOther is any event the monitor does not act upon.
	DiscoveryOther DiscoveryKind = iota
	// DiscoveryAdded announces a newly discovered device.
	DiscoveryAdded
	// DiscoveryRemoved announces that a device disappeared.
	DiscoveryRemoved
)

// String returns the kind name.
func (k DiscoveryKind) String() string {
	switch k {
	case DiscoveryAdded:
		return "added"
	case DiscoveryRemoved:
		return "removed"
	default:
		return "other"
	}
}

// DiscoveryEvent is a single event from the discovery stream.
type DiscoveryEvent struct {
	Kind DiscoveryKind
	ID   EntityID
}

// EventSource identifies where a MergedEvent came from.
type EventSource uint8

const (
	// SourceDiscovery marks an event from the discovery stream.
	SourceDiscovery EventSource = iota
	// SourceChange marks an attribute change from a device's stream.
	SourceChange
	// SourceClosed marks the end of a device's change stream. The stream has
	// already been evicted from the multiplexer when this is delivered.
	SourceClosed
)

// MergedEvent is the multiplexer's output unit.
type MergedEvent struct {
	Source EventSource

	// ID is the device the event concerns, for every source.
	ID EntityID

	// Discovery is set when Source is SourceDiscovery.
	Discovery DiscoveryEvent

	// Change is set when Source is SourceChange.
	Change Change
}

// Notification is what the monitor hands to a Notifier.
type Notification struct {
	ID        EntityID
	Name      string
	Connected bool
}

var (
	// ErrNotFound reports that an identifier no longer maps to a live device.
	ErrNotFound = errors.New("device not found")

	// ErrTransportInit reports that the transport could not be brought up
	// (no adapter, adapter cannot be powered, bus unavailable).
	ErrTransportInit = errors.New("transport initialization failed")

	// ErrExhausted is returned by Multiplexer.Next once the discovery stream
	// has ended and no change stream is left.
	ErrExhausted = errors.New("all event sources exhausted")

	// ErrAlreadyRegistered is returned when registering a second change
	// stream for a device that still has an active one.
	ErrAlreadyRegistered = errors.New("change stream already registered")
)
