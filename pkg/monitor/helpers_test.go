package monitor_test

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/connwatch/connwatch/pkg/log"
	"github.com/connwatch/connwatch/pkg/monitor"
)

const waitTimeout = 2 * time.Second

// fakeTransport is a scripted transport. Tests push discovery events on
// discovery and attribute changes on each device's changes channel.
type fakeTransport struct {
	discovery   chan monitor.DiscoveryEvent
	discoverErr error

	mu      sync.Mutex
	devices map[monitor.EntityID]*fakeDevice
}

type fakeDevice struct {
	id         monitor.EntityID
	name       string
	connected  bool
	changes    chan monitor.Change
	changesErr error
	opens      int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		discovery: make(chan monitor.DiscoveryEvent),
		devices:   make(map[monitor.EntityID]*fakeDevice),
	}
}

func (f *fakeTransport) add(id monitor.EntityID, name string, connected bool) *fakeDevice {
	f.mu.Lock()
	defer f.mu.Unlock()

	d := &fakeDevice{id: id, name: name, connected: connected, changes: make(chan monitor.Change)}
	f.devices[id] = d
	return d
}

func (f *fakeTransport) opens(id monitor.EntityID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.devices[id].opens
}

func (f *fakeTransport) AdapterName() string { return "fake0" }

func (f *fakeTransport) Discover(ctx context.Context) (<-chan monitor.DiscoveryEvent, error) {
	if f.discoverErr != nil {
		return nil, f.discoverErr
	}
	return f.discovery, nil
}

func (f *fakeTransport) Resolve(id monitor.EntityID) (monitor.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.devices[id]
	if !ok {
		return nil, fmt.Errorf("device %s: %w", id, monitor.ErrNotFound)
	}
	return &fakeHandle{t: f, d: d}, nil
}

type fakeHandle struct {
	t *fakeTransport
	d *fakeDevice
}

func (h *fakeHandle) ID() monitor.EntityID { return h.d.id }

func (h *fakeHandle) Name(context.Context) (string, error) {
	h.t.mu.Lock()
	defer h.t.mu.Unlock()
	return h.d.name, nil
}

func (h *fakeHandle) Connected(context.Context) (bool, error) {
	h.t.mu.Lock()
	defer h.t.mu.Unlock()
	return h.d.connected, nil
}

func (h *fakeHandle) Changes(context.Context) (<-chan monitor.Change, error) {
	h.t.mu.Lock()
	defer h.t.mu.Unlock()
	if h.d.changesErr != nil {
		return nil, h.d.changesErr
	}
	h.d.opens++
	return h.d.changes, nil
}

// recordingNotifier keeps every notification in order.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []monitor.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n monitor.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, n)
}

func (r *recordingNotifier) all() []monitor.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]monitor.Notification(nil), r.calls...)
}

// eventRecorder forwards capture records so tests can wait for the loop to
// finish handling an event.
type eventRecorder struct {
	ch chan log.Event
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{ch: make(chan log.Event, 64)}
}

func (r *eventRecorder) Log(e log.Event) { r.ch <- e }

// next returns the next non-lifecycle record.
func (r *eventRecorder) next(t *testing.T) log.Event {
	t.Helper()
	for {
		select {
		case e := <-r.ch:
			if e.Category == log.CategoryLifecycle {
				continue
			}
			return e
		case <-time.After(waitTimeout):
			t.Fatal("timeout waiting for monitor to handle an event")
			return log.Event{}
		}
	}
}

// harness runs a Monitor in the background.
type harness struct {
	transport *fakeTransport
	notifier  *recordingNotifier
	events    *eventRecorder
	monitor   *monitor.Monitor
	out       bytes.Buffer
	cancel    context.CancelFunc
	done      chan error
}

func startHarness(t *testing.T, transport *fakeTransport) *harness {
	t.Helper()

	h := &harness{
		transport: transport,
		notifier:  &recordingNotifier{},
		events:    newEventRecorder(),
		done:      make(chan error, 1),
	}
	h.monitor = monitor.New(monitor.Config{
		Transport:     transport,
		Notifier:      h.notifier,
		TransportName: "fake",
		Output:        &h.out,
		EventLog:      log.LoggerFunc(h.events.Log),
		SessionID:     "test-session",
	})

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- h.monitor.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case <-h.done:
		case <-time.After(waitTimeout):
			t.Error("monitor did not stop")
		}
	})
	return h
}

func (h *harness) discover(t *testing.T, kind monitor.DiscoveryKind, id monitor.EntityID) log.Event {
	t.Helper()
	select {
	case h.transport.discovery <- monitor.DiscoveryEvent{Kind: kind, ID: id}:
	case <-time.After(waitTimeout):
		t.Fatal("timeout delivering discovery event")
	}
	return h.events.next(t)
}

func (h *harness) change(t *testing.T, d *fakeDevice, c monitor.Change) log.Event {
	t.Helper()
	select {
	case d.changes <- c:
	case <-time.After(waitTimeout):
		t.Fatal("timeout delivering change event")
	}
	return h.events.next(t)
}

func connectedChange(v bool) monitor.Change {
	return monitor.Change{Property: monitor.PropertyConnected, Value: v}
}
