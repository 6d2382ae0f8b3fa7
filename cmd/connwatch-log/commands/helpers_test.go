package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/connwatch/connwatch/pkg/log"
)

var baseTime = time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.clog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

// sampleSession is a short run: headset AA connects at discovery and
// later disconnects, BB fails to resolve.
func sampleSession() []log.Event {
	const session = "5f0c2a1e-8d3b-4c7e-9a41-2b6f0e9d7c11"
	at := func(sec int) time.Time { return baseTime.Add(time.Duration(sec) * time.Second) }

	return []log.Event{
		{
			Timestamp: at(0),
			SessionID: session,
			Category:  log.CategoryLifecycle,
			Lifecycle: &log.LifecycleEvent{State: "started", Transport: "bluez", Adapter: "hci0"},
		},
		{
			Timestamp:    at(1),
			SessionID:    session,
			Category:     log.CategoryDiscovery,
			Outcome:      log.OutcomeRegistered,
			DeviceID:     "AA:BB:CC:DD:EE:01",
			Discovery:    &log.DiscoveryEvent{Kind: "added"},
			Notification: &log.NotificationEvent{Name: "Headset", Connected: true},
		},
		{
			Timestamp: at(2),
			SessionID: session,
			Category:  log.CategoryDiscovery,
			Outcome:   log.OutcomeResolveFailed,
			DeviceID:  "AA:BB:CC:DD:EE:02",
			Discovery: &log.DiscoveryEvent{Kind: "added"},
			Error:     &log.ErrorEventData{Stage: "resolve", Message: "device not found"},
		},
		{
			Timestamp: at(3),
			SessionID: session,
			Category:  log.CategoryChange,
			Outcome:   log.OutcomeIgnored,
			DeviceID:  "AA:BB:CC:DD:EE:01",
			Change:    &log.ChangeEvent{Property: "RSSI", Value: "-60"},
		},
		{
			Timestamp:    at(4),
			SessionID:    session,
			Category:     log.CategoryChange,
			Outcome:      log.OutcomeNotified,
			DeviceID:     "AA:BB:CC:DD:EE:01",
			Change:       &log.ChangeEvent{Property: "Connected", Value: false},
			Notification: &log.NotificationEvent{Name: "Headset", Connected: false},
		},
		{
			Timestamp: at(65),
			SessionID: session,
			Category:  log.CategoryLifecycle,
			Lifecycle: &log.LifecycleEvent{State: "stopped", Transport: "bluez", Adapter: "hci0"},
		},
	}
}
