package log

import "time"

// Event represents one monitor event captured by the event loop.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event was handled (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the monitor run (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Category classifies the event source.
	Category Category `cbor:"3,keyasint"`

	// Outcome records what the monitor did with the event.
	Outcome Outcome `cbor:"4,keyasint"`

	// DeviceID is the entity identifier (address or instance name).
	DeviceID string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (at most one of these is set).
	Discovery *DiscoveryEvent `cbor:"6,keyasint,omitempty"` // Discovery stream
	Change    *ChangeEvent    `cbor:"7,keyasint,omitempty"` // Per-device stream
	Lifecycle *LifecycleEvent `cbor:"8,keyasint,omitempty"` // Session start/stop

	// Notification is set when handling the event raised a notification.
	Notification *NotificationEvent `cbor:"9,keyasint,omitempty"`

	// Error is set when a step failed while handling the event.
	Error *ErrorEventData `cbor:"10,keyasint,omitempty"`
}

// Category classifies the event source.
type Category uint8

const (
	// CategoryDiscovery indicates an event from the discovery stream.
	CategoryDiscovery Category = 0
	// CategoryChange indicates an event from a per-device change stream.
	CategoryChange Category = 1
	// CategoryLifecycle indicates a session lifecycle event.
	CategoryLifecycle Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryDiscovery:
		return "DISCOVERY"
	case CategoryChange:
		return "CHANGE"
	case CategoryLifecycle:
		return "LIFECYCLE"
	default:
		return "UNKNOWN"
	}
}

// Outcome records how the monitor handled an event.
type Outcome uint8

const (
	// OutcomeNone is used for lifecycle records.
	OutcomeNone Outcome = 0
	// OutcomeIgnored indicates the event kind is not acted upon.
	OutcomeIgnored Outcome = 1
	// OutcomeRegistered indicates a change stream was attached for the device.
	OutcomeRegistered Outcome = 2
	// OutcomeDuplicate indicates the device already has an active change stream.
	OutcomeDuplicate Outcome = 3
	// OutcomeNotified indicates a connection change raised a notification.
	OutcomeNotified Outcome = 4
	// OutcomeResolveFailed indicates the device could not be resolved.
	OutcomeResolveFailed Outcome = 5
	// OutcomeSubscribeFailed indicates the change stream could not be opened.
	OutcomeSubscribeFailed Outcome = 6
	// OutcomeSourceClosed indicates the device's change stream ended.
	OutcomeSourceClosed Outcome = 7
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "NONE"
	case OutcomeIgnored:
		return "IGNORED"
	case OutcomeRegistered:
		return "REGISTERED"
	case OutcomeDuplicate:
		return "DUPLICATE"
	case OutcomeNotified:
		return "NOTIFIED"
	case OutcomeResolveFailed:
		return "RESOLVE_FAILED"
	case OutcomeSubscribeFailed:
		return "SUBSCRIBE_FAILED"
	case OutcomeSourceClosed:
		return "SOURCE_CLOSED"
	default:
		return "UNKNOWN"
	}
}

// DiscoveryEvent captures a discovery stream event.
type DiscoveryEvent struct {
	// Kind is the discovery kind ("added", "removed", "other").
	Kind string `cbor:"1,keyasint" json:"kind"`
}

// ChangeEvent captures a per-device attribute change.
type ChangeEvent struct {
	// Property is the attribute name (e.g. "Connected", "RSSI").
	Property string `cbor:"1,keyasint,omitempty" json:"property,omitempty"`

	// Value is the new attribute value (CBOR-compatible representation).
	Value any `cbor:"2,keyasint,omitempty" json:"value,omitempty"`
}

// NotificationEvent captures a notification raised for a device.
type NotificationEvent struct {
	// Name is the display name used in the notification.
	Name string `cbor:"1,keyasint" json:"name"`

	// Connected is the connection state that was announced.
	Connected bool `cbor:"2,keyasint" json:"connected"`
}

// LifecycleEvent captures session start and stop.
type LifecycleEvent struct {
	// State is the new session state ("started", "stopped").
	State string `cbor:"1,keyasint" json:"state"`

	// Transport names the discovery transport ("bluez", "mdns").
	Transport string `cbor:"2,keyasint,omitempty" json:"transport,omitempty"`

	// Adapter is the adapter or interface the transport runs on.
	Adapter string `cbor:"3,keyasint,omitempty" json:"adapter,omitempty"`
}

// ErrorEventData captures a failed step while handling an event.
type ErrorEventData struct {
	// Stage names the failed step ("resolve", "subscribe", "snapshot", "name").
	Stage string `cbor:"1,keyasint" json:"stage"`

	// Message is the error text.
	Message string `cbor:"2,keyasint" json:"message"`
}
