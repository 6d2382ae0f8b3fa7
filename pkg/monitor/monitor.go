package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/connwatch/connwatch/pkg/log"
)

// Config configures a Monitor.
type Config struct {
	// Transport supplies discovery and device handles. Required.
	Transport Transport

	// Notifier receives connection transitions. Required.
	Notifier Notifier

	// TransportName is recorded in lifecycle capture records.
	TransportName string

	// Output receives one human-readable line per notified event.
	// Default: io.Discard.
	Output io.Writer

	// Logger receives operational diagnostics. Default: slog.Default().
	Logger *slog.Logger

	// EventLog receives one capture record per handled event.
	// Default: log.NoopLogger.
	EventLog log.Logger

	// Registry is updated as devices are seen. Default: a new Registry.
	Registry *Registry

	// SessionID tags capture records. Default: a random UUID.
	SessionID string
}

// Monitor is the event loop. A Monitor runs once; create a new one for
// every run.
type Monitor struct {
	transport     Transport
	notifier      Notifier
	transportName string
	out           io.Writer
	logger        *slog.Logger
	events        log.Logger
	registry      *Registry
	sessionID     string
	now           func() time.Time
}

// New creates a Monitor, filling in defaults for optional Config fields.
func New(cfg Config) *Monitor {
	m := &Monitor{
		transport:     cfg.Transport,
		notifier:      cfg.Notifier,
		transportName: cfg.TransportName,
		out:           cfg.Output,
		logger:        cfg.Logger,
		events:        cfg.EventLog,
		registry:      cfg.Registry,
		sessionID:     cfg.SessionID,
		now:           time.Now,
	}
	if m.out == nil {
		m.out = io.Discard
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.events == nil {
		m.events = log.NoopLogger{}
	}
	if m.registry == nil {
		m.registry = NewRegistry()
	}
	if m.sessionID == "" {
		m.sessionID = uuid.New().String()
	}
	return m
}

// Registry returns the registry the monitor updates.
func (m *Monitor) Registry() *Registry {
	return m.registry
}

// SessionID returns the ID tagging this run's capture records.
func (m *Monitor) SessionID() string {
	return m.sessionID
}

// Run opens the discovery stream and handles events until ctx is cancelled
// or every source is exhausted, in which case it returns nil. Failing to
// open the discovery stream is the only error returned.
func (m *Monitor) Run(ctx context.Context) error {
	source, err := m.transport.Discover(ctx)
	if err != nil {
		return fmt.Errorf("open discovery source: %w", err)
	}

	mux := NewMultiplexer(ctx, source)
	defer mux.Close()

	m.lifecycle("started")
	defer m.lifecycle("stopped")

	for {
		ev, err := mux.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrExhausted) {
				m.logger.Info("all event sources exhausted")
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		m.events.Log(m.dispatch(ctx, mux, ev))
	}
}

// dispatch handles one merged event and returns its capture record.
func (m *Monitor) dispatch(ctx context.Context, mux *Multiplexer, ev MergedEvent) log.Event {
	switch ev.Source {
	case SourceDiscovery:
		return m.handleDiscovery(ctx, mux, ev.Discovery)
	case SourceClosed:
		return m.handleClosed(ev.ID)
	default:
		return m.handleChange(ctx, ev.ID, ev.Change)
	}
}

func (m *Monitor) handleDiscovery(ctx context.Context, mux *Multiplexer, ev DiscoveryEvent) log.Event {
	rec := m.record(log.CategoryDiscovery, ev.ID)
	rec.Discovery = &log.DiscoveryEvent{Kind: ev.Kind.String()}

	switch ev.Kind {
	case DiscoveryAdded:
	case DiscoveryRemoved:
		// The old stream drains and ends on its own. Retiring it lets a
		// rediscovery register a fresh one before that happens.
		mux.Retire(ev.ID)
		m.registry.update(ev.ID, func(st *DeviceStatus) { st.Removed = true })
		m.logger.Debug("device removed", "device", ev.ID)
		rec.Outcome = log.OutcomeIgnored
		return rec
	default:
		rec.Outcome = log.OutcomeIgnored
		return rec
	}

	if mux.Active(ev.ID) {
		m.logger.Debug("device already tracked", "device", ev.ID)
		rec.Outcome = log.OutcomeDuplicate
		return rec
	}

	handle, err := m.transport.Resolve(ev.ID)
	if err != nil {
		m.logger.Warn("cannot resolve discovered device", "device", ev.ID, "error", err)
		rec.Outcome = log.OutcomeResolveFailed
		rec.Error = stageError("resolve", err)
		return rec
	}

	if err := mux.Register(ev.ID, handle.Changes); err != nil {
		m.logger.Warn("cannot subscribe to device changes", "device", ev.ID, "error", err)
		rec.Outcome = log.OutcomeSubscribeFailed
		rec.Error = stageError("subscribe", err)
		return rec
	}
	rec.Outcome = log.OutcomeRegistered

	name := m.displayName(ctx, handle)
	m.registry.update(ev.ID, func(st *DeviceStatus) {
		st.Name = name
		st.Removed = false
		st.Subscribed = true
	})
	m.logger.Debug("tracking device", "device", ev.ID, "name", name, "streams", mux.Len())

	// The change stream only reports transitions, so a device that is
	// already connected when discovered is caught here.
	connected, err := handle.Connected(ctx)
	if err != nil {
		m.logger.Warn("cannot read connection state", "device", ev.ID, "error", err)
		rec.Error = stageError("snapshot", err)
		return rec
	}
	m.registry.update(ev.ID, func(st *DeviceStatus) { st.Connected = connected })

	if connected {
		fmt.Fprintf(m.out, "Device added and connected: %s\n", ev.ID)
		rec.Notification = m.notify(ctx, ev.ID, name, true)
	}
	return rec
}

func (m *Monitor) handleChange(ctx context.Context, id EntityID, change Change) log.Event {
	rec := m.record(log.CategoryChange, id)
	rec.Change = &log.ChangeEvent{Property: string(change.Property), Value: change.Value}

	connected, ok := change.Connected()
	if !ok {
		m.registry.update(id, func(*DeviceStatus) {})
		rec.Outcome = log.OutcomeIgnored
		return rec
	}

	fmt.Fprintf(m.out, "Device %s changed connected property to %t\n", id, connected)

	// Handles are cheap; the one from discovery time may be stale.
	handle, err := m.transport.Resolve(id)
	if err != nil {
		m.logger.Warn("cannot resolve changed device", "device", id, "error", err)
		rec.Outcome = log.OutcomeResolveFailed
		rec.Error = stageError("resolve", err)
		return rec
	}

	name := m.displayName(ctx, handle)
	m.registry.update(id, func(st *DeviceStatus) {
		st.Name = name
		st.Connected = connected
	})

	rec.Outcome = log.OutcomeNotified
	rec.Notification = m.notify(ctx, id, name, connected)
	return rec
}

func (m *Monitor) handleClosed(id EntityID) log.Event {
	m.registry.update(id, func(st *DeviceStatus) { st.Subscribed = false })
	m.logger.Debug("device change stream ended", "device", id)

	rec := m.record(log.CategoryChange, id)
	rec.Outcome = log.OutcomeSourceClosed
	return rec
}

func (m *Monitor) notify(ctx context.Context, id EntityID, name string, connected bool) *log.NotificationEvent {
	m.notifier.Notify(ctx, Notification{ID: id, Name: name, Connected: connected})
	m.registry.update(id, func(st *DeviceStatus) { st.Notifications++ })
	return &log.NotificationEvent{Name: name, Connected: connected}
}

// displayName falls back to the identifier when the device has no name.
func (m *Monitor) displayName(ctx context.Context, h Handle) string {
	name, err := h.Name(ctx)
	if err != nil {
		m.logger.Debug("cannot read device name", "device", h.ID(), "error", err)
		return string(h.ID())
	}
	if name == "" {
		return string(h.ID())
	}
	return name
}

func (m *Monitor) record(category log.Category, id EntityID) log.Event {
	return log.Event{
		Timestamp: m.now(),
		SessionID: m.sessionID,
		Category:  category,
		DeviceID:  string(id),
	}
}

func (m *Monitor) lifecycle(state string) {
	rec := m.record(log.CategoryLifecycle, "")
	rec.Lifecycle = &log.LifecycleEvent{
		State:     state,
		Transport: m.transportName,
		Adapter:   m.transport.AdapterName(),
	}
	m.events.Log(rec)
}

func stageError(stage string, err error) *log.ErrorEventData {
	return &log.ErrorEventData{Stage: stage, Message: err.Error()}
}
