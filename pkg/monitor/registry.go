package monitor

import (
	"sort"
	"sync"
	"time"
)

// DeviceStatus is the monitor's view of one device.
type DeviceStatus struct {
	ID            EntityID
	Name          string
	Connected     bool
	Removed       bool
	Subscribed    bool
	FirstSeen     time.Time
	LastSeen      time.Time
	Notifications int
}

// Registry records every device the monitor has seen. The event loop
// writes to it; any goroutine may read it.
type Registry struct {
	mu      sync.RWMutex
	devices map[EntityID]*DeviceStatus
	now     func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		devices: make(map[EntityID]*DeviceStatus),
		now:     time.Now,
	}
}

// update applies fn to the status for id, creating it on first sight.
func (r *Registry) update(id EntityID, fn func(*DeviceStatus)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	st, ok := r.devices[id]
	if !ok {
		st = &DeviceStatus{ID: id, FirstSeen: now}
		r.devices[id] = st
	}
	st.LastSeen = now
	fn(st)
}

// Get returns a copy of the status for id.
func (r *Registry) Get(id EntityID) (DeviceStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.devices[id]
	if !ok {
		return DeviceStatus{}, false
	}
	return *st, true
}

// List returns copies of all statuses sorted by ID.
func (r *Registry) List() []DeviceStatus {
	r.mu.RLock()
	out := make([]DeviceStatus, 0, len(r.devices))
	for _, st := range r.devices {
		out = append(out, *st)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of devices seen.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// SubscribedCount returns the number of devices with an active change stream.
func (r *Registry) SubscribedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, st := range r.devices {
		if st.Subscribed {
			n++
		}
	}
	return n
}

// ConnectedCount returns the number of devices last known as connected.
func (r *Registry) ConnectedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, st := range r.devices {
		if st.Connected {
			n++
		}
	}
	return n
}
