package monitor_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/connwatch/connwatch/pkg/log"
	"github.com/connwatch/connwatch/pkg/monitor"
	"github.com/connwatch/connwatch/pkg/monitor/mocks"
)

func TestMonitorNotifiesOnlyAfterChange(t *testing.T) {
	tr := newFakeTransport()
	a := tr.add("A", "Headphones", false)
	tr.add("B", "Keyboard", true)
	h := startHarness(t, tr)

	rec := h.discover(t, monitor.DiscoveryAdded, "A")
	assert.Equal(t, log.OutcomeRegistered, rec.Outcome)
	assert.Nil(t, rec.Notification)
	assert.Empty(t, h.notifier.all(), "disconnected device must not be notified on discovery")

	rec = h.change(t, a, connectedChange(true))
	assert.Equal(t, log.OutcomeNotified, rec.Outcome)

	rec = h.discover(t, monitor.DiscoveryAdded, "B")
	assert.Equal(t, log.OutcomeRegistered, rec.Outcome)
	require.NotNil(t, rec.Notification)

	assert.Equal(t, []monitor.Notification{
		{ID: "A", Name: "Headphones", Connected: true},
		{ID: "B", Name: "Keyboard", Connected: true},
	}, h.notifier.all())

	assert.Equal(t,
		"Device A changed connected property to true\nDevice added and connected: B\n",
		h.out.String())
}

func TestMonitorConnectedAtDiscoveryNotifiesBeforeChanges(t *testing.T) {
	tr := newFakeTransport()
	a := tr.add("A", "Mouse", true)
	h := startHarness(t, tr)

	h.discover(t, monitor.DiscoveryAdded, "A")
	require.Equal(t, []monitor.Notification{{ID: "A", Name: "Mouse", Connected: true}}, h.notifier.all())

	h.change(t, a, connectedChange(false))
	assert.Equal(t, []monitor.Notification{
		{ID: "A", Name: "Mouse", Connected: true},
		{ID: "A", Name: "Mouse", Connected: false},
	}, h.notifier.all())

	st, ok := h.monitor.Registry().Get("A")
	require.True(t, ok)
	assert.False(t, st.Connected)
	assert.Equal(t, 2, st.Notifications)
}

func TestMonitorResolveFailureDoesNotStopLoop(t *testing.T) {
	tr := newFakeTransport()
	b := tr.add("B", "Speaker", false)
	h := startHarness(t, tr)

	// A is never known to the transport.
	rec := h.discover(t, monitor.DiscoveryAdded, "A")
	assert.Equal(t, log.OutcomeResolveFailed, rec.Outcome)
	require.NotNil(t, rec.Error)
	assert.Equal(t, "resolve", rec.Error.Stage)

	rec = h.discover(t, monitor.DiscoveryAdded, "B")
	assert.Equal(t, log.OutcomeRegistered, rec.Outcome)

	h.change(t, b, connectedChange(true))
	assert.Equal(t, []monitor.Notification{{ID: "B", Name: "Speaker", Connected: true}}, h.notifier.all())

	_, tracked := h.monitor.Registry().Get("A")
	assert.False(t, tracked)
}

func TestMonitorResolveFailureOnChange(t *testing.T) {
	tr := newFakeTransport()
	a := tr.add("A", "Watch", false)
	h := startHarness(t, tr)

	h.discover(t, monitor.DiscoveryAdded, "A")

	tr.mu.Lock()
	delete(tr.devices, "A")
	tr.mu.Unlock()

	rec := h.change(t, a, connectedChange(true))
	assert.Equal(t, log.OutcomeResolveFailed, rec.Outcome)
	assert.Empty(t, h.notifier.all())
}

func TestMonitorSubscribedCountIsMonotonic(t *testing.T) {
	tr := newFakeTransport()
	for _, id := range []monitor.EntityID{"A", "B", "C"} {
		tr.add(id, string(id), false)
	}
	h := startHarness(t, tr)

	events := []monitor.EntityID{"A", "B", "missing", "A", "C", "B", "C"}
	distinct := map[monitor.EntityID]bool{}
	prev := 0
	for _, id := range events {
		h.discover(t, monitor.DiscoveryAdded, id)
		distinct[id] = true

		n := h.monitor.Registry().SubscribedCount()
		assert.LessOrEqual(t, n, len(distinct))
		assert.GreaterOrEqual(t, n, prev)
		prev = n
	}
	assert.Equal(t, 3, prev)
	for _, id := range []monitor.EntityID{"A", "B", "C"} {
		assert.Equal(t, 1, tr.opens(id), "device %s subscribed more than once", id)
	}
}

func TestMonitorDuplicateAddedIsIgnored(t *testing.T) {
	tr := newFakeTransport()
	tr.add("A", "Phone", true)
	h := startHarness(t, tr)

	h.discover(t, monitor.DiscoveryAdded, "A")
	rec := h.discover(t, monitor.DiscoveryAdded, "A")

	assert.Equal(t, log.OutcomeDuplicate, rec.Outcome)
	assert.Len(t, h.notifier.all(), 1)
	assert.Equal(t, 1, tr.opens("A"))
}

func TestMonitorIgnoresOtherProperties(t *testing.T) {
	tr := newFakeTransport()
	a := tr.add("A", "Tag", false)
	h := startHarness(t, tr)

	h.discover(t, monitor.DiscoveryAdded, "A")

	changes := []monitor.Change{
		{Property: monitor.PropertyRSSI, Value: int16(-40)},
		{Property: monitor.PropertyName, Value: "Renamed"},
		{Property: monitor.PropertyConnected, Value: "yes"},
	}
	for _, c := range changes {
		rec := h.change(t, a, c)
		assert.Equal(t, log.OutcomeIgnored, rec.Outcome, "property %s", c.Property)
	}
	assert.Empty(t, h.notifier.all())
	assert.Empty(t, h.out.String())
}

func TestMonitorOtherDiscoveryEventsIgnored(t *testing.T) {
	tr := newFakeTransport()
	tr.add("A", "Adapter", true)
	h := startHarness(t, tr)

	rec := h.discover(t, monitor.DiscoveryOther, "A")
	assert.Equal(t, log.OutcomeIgnored, rec.Outcome)
	assert.Empty(t, h.notifier.all())
	assert.Equal(t, 0, tr.opens("A"))
}

func TestMonitorRemovedDeviceStreamEnds(t *testing.T) {
	tr := newFakeTransport()
	a := tr.add("A", "Earbuds", false)
	h := startHarness(t, tr)

	h.discover(t, monitor.DiscoveryAdded, "A")

	rec := h.discover(t, monitor.DiscoveryRemoved, "A")
	assert.Equal(t, log.OutcomeIgnored, rec.Outcome)
	st, _ := h.monitor.Registry().Get("A")
	assert.True(t, st.Removed)
	assert.True(t, st.Subscribed)

	close(a.changes)
	rec = h.events.next(t)
	assert.Equal(t, log.OutcomeSourceClosed, rec.Outcome)
	assert.Equal(t, "A", rec.DeviceID)
	st, _ = h.monitor.Registry().Get("A")
	assert.False(t, st.Subscribed)

	// Rediscovery subscribes again.
	tr.mu.Lock()
	a.changes = make(chan monitor.Change)
	a.connected = true
	tr.mu.Unlock()

	rec = h.discover(t, monitor.DiscoveryAdded, "A")
	assert.Equal(t, log.OutcomeRegistered, rec.Outcome)
	assert.Equal(t, 2, tr.opens("A"))
	assert.Equal(t, []monitor.Notification{{ID: "A", Name: "Earbuds", Connected: true}}, h.notifier.all())

	st, _ = h.monitor.Registry().Get("A")
	assert.False(t, st.Removed)
	assert.True(t, st.Subscribed)
}

func TestMonitorReplayIsDeterministic(t *testing.T) {
	type step struct {
		kind   string
		id     monitor.EntityID
		change monitor.Change
	}
	script := []step{
		{kind: "added", id: "A"},
		{kind: "added", id: "ghost"},
		{kind: "change", id: "A", change: connectedChange(true)},
		{kind: "added", id: "B"},
		{kind: "change", id: "B", change: monitor.Change{Property: monitor.PropertyRSSI, Value: -60}},
		{kind: "change", id: "A", change: connectedChange(false)},
		{kind: "change", id: "B", change: connectedChange(false)},
	}

	replay := func() []monitor.Notification {
		tr := newFakeTransport()
		devices := map[monitor.EntityID]*fakeDevice{
			"A": tr.add("A", "Alpha", false),
			"B": tr.add("B", "Beta", true),
		}
		h := startHarness(t, tr)
		for _, s := range script {
			if s.kind == "added" {
				h.discover(t, monitor.DiscoveryAdded, s.id)
			} else {
				h.change(t, devices[s.id], s.change)
			}
		}
		return h.notifier.all()
	}

	first := replay()
	second := replay()
	assert.Equal(t, first, second)
	assert.Equal(t, []monitor.Notification{
		{ID: "A", Name: "Alpha", Connected: true},
		{ID: "B", Name: "Beta", Connected: true},
		{ID: "A", Name: "Alpha", Connected: false},
		{ID: "B", Name: "Beta", Connected: false},
	}, first)
}

func TestMonitorDiscoverFailureIsFatal(t *testing.T) {
	tr := newFakeTransport()
	tr.discoverErr = fmt.Errorf("%w: no adapter", monitor.ErrTransportInit)

	m := monitor.New(monitor.Config{Transport: tr, Notifier: &recordingNotifier{}})
	err := m.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, monitor.ErrTransportInit)
	assert.Contains(t, err.Error(), "open discovery source")
}

func TestMonitorReturnsWhenSourcesExhausted(t *testing.T) {
	tr := newFakeTransport()
	a := tr.add("A", "Lamp", false)
	events := newEventRecorder()

	m := monitor.New(monitor.Config{Transport: tr, Notifier: &recordingNotifier{}, EventLog: events})
	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()

	tr.discovery <- monitor.DiscoveryEvent{Kind: monitor.DiscoveryAdded, ID: "A"}
	events.next(t)
	close(tr.discovery)
	close(a.changes)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(waitTimeout):
		t.Fatal("monitor did not return after all sources ended")
	}
}

func TestMonitorStopsOnCancel(t *testing.T) {
	tr := newFakeTransport()
	events := newEventRecorder()
	m := monitor.New(monitor.Config{Transport: tr, Notifier: &recordingNotifier{}, EventLog: events, TransportName: "fake"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	started := <-events.ch
	require.NotNil(t, started.Lifecycle)
	assert.Equal(t, "started", started.Lifecycle.State)
	assert.Equal(t, "fake", started.Lifecycle.Transport)
	assert.Equal(t, "fake0", started.Lifecycle.Adapter)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(waitTimeout):
		t.Fatal("monitor did not stop on cancel")
	}

	stopped := <-events.ch
	require.NotNil(t, stopped.Lifecycle)
	assert.Equal(t, "stopped", stopped.Lifecycle.State)
	assert.Equal(t, m.SessionID(), stopped.SessionID)
}

func TestMonitorSubscribeFailure(t *testing.T) {
	discovery := make(chan monitor.DiscoveryEvent, 1)
	discovery <- monitor.DiscoveryEvent{Kind: monitor.DiscoveryAdded, ID: "A"}
	close(discovery)

	handle := mocks.NewMockHandle(t)
	handle.EXPECT().Changes(mock.Anything).Return(nil, fmt.Errorf("device A: %w", monitor.ErrNotFound))

	tr := mocks.NewMockTransport(t)
	tr.EXPECT().AdapterName().Return("hci0").Maybe()
	tr.EXPECT().Discover(mock.Anything).Return(discovery, nil)
	tr.EXPECT().Resolve(monitor.EntityID("A")).Return(handle, nil)

	// No expectations: any call fails the test.
	notifier := mocks.NewMockNotifier(t)
	events := newEventRecorder()

	m := monitor.New(monitor.Config{Transport: tr, Notifier: notifier, EventLog: events})
	require.NoError(t, m.Run(context.Background()))

	rec := events.next(t)
	assert.Equal(t, log.OutcomeSubscribeFailed, rec.Outcome)
	require.NotNil(t, rec.Error)
	assert.Equal(t, "subscribe", rec.Error.Stage)
	assert.Contains(t, rec.Error.Message, monitor.ErrNotFound.Error())
}

func TestMonitorSnapshotFailureSkipsNotification(t *testing.T) {
	discovery := make(chan monitor.DiscoveryEvent, 1)
	discovery <- monitor.DiscoveryEvent{Kind: monitor.DiscoveryAdded, ID: "A"}
	close(discovery)

	changes := make(chan monitor.Change)
	close(changes)

	handle := mocks.NewMockHandle(t)
	handle.EXPECT().Changes(mock.Anything).Return(changes, nil)
	handle.EXPECT().Name(mock.Anything).Return("", nil)
	handle.EXPECT().ID().Return(monitor.EntityID("A")).Maybe()
	handle.EXPECT().Connected(mock.Anything).Return(false, errors.New("property not available"))

	tr := mocks.NewMockTransport(t)
	tr.EXPECT().AdapterName().Return("hci0").Maybe()
	tr.EXPECT().Discover(mock.Anything).Return(discovery, nil)
	tr.EXPECT().Resolve(monitor.EntityID("A")).Return(handle, nil)

	events := newEventRecorder()
	m := monitor.New(monitor.Config{Transport: tr, Notifier: mocks.NewMockNotifier(t), EventLog: events})
	require.NoError(t, m.Run(context.Background()))

	rec := events.next(t)
	assert.Equal(t, log.OutcomeRegistered, rec.Outcome)
	require.NotNil(t, rec.Error)
	assert.Equal(t, "snapshot", rec.Error.Stage)

	st, ok := m.Registry().Get("A")
	require.True(t, ok)
	assert.Equal(t, "A", st.Name, "empty name falls back to the id")

	rec = events.next(t)
	assert.Equal(t, log.OutcomeSourceClosed, rec.Outcome)
}

func TestMonitorRediscoveryBeforeStreamEndIsTracked(t *testing.T) {
	for i := 0; i < 25; i++ {
		tr := newFakeTransport()
		tr.discovery = make(chan monitor.DiscoveryEvent, 2)
		a := tr.add("A", "Earbuds", false)
		h := startHarness(t, tr)

		h.discover(t, monitor.DiscoveryAdded, "A")

		// The transport ends the old stream and reports the device gone and
		// back before the loop has seen the stream end.
		tr.mu.Lock()
		old := a.changes
		a.changes = make(chan monitor.Change)
		tr.mu.Unlock()
		close(old)
		tr.discovery <- monitor.DiscoveryEvent{Kind: monitor.DiscoveryRemoved, ID: "A"}
		tr.discovery <- monitor.DiscoveryEvent{Kind: monitor.DiscoveryAdded, ID: "A"}

		for {
			rec := h.events.next(t)
			require.NotEqual(t, log.OutcomeDuplicate, rec.Outcome, "run %d", i)
			if rec.Outcome == log.OutcomeRegistered {
				break
			}
		}
		assert.Equal(t, 2, tr.opens("A"))

		// A late marker for the old stream must not detach the new one.
		rec := h.change(t, a, connectedChange(true))
		assert.Equal(t, log.OutcomeNotified, rec.Outcome, "run %d", i)

		st, _ := h.monitor.Registry().Get("A")
		assert.True(t, st.Subscribed, "run %d", i)
		assert.True(t, st.Connected, "run %d", i)
	}
}
