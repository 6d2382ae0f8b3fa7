package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/connwatch/connwatch/pkg/log"
)

func TestCollect(t *testing.T) {
	path := createTestLogFile(t, sampleSession())

	stats, err := Collect(path)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if stats.TotalEvents != 6 {
		t.Errorf("TotalEvents = %d, want 6", stats.TotalEvents)
	}
	if stats.Sessions != 1 {
		t.Errorf("Sessions = %d, want 1", stats.Sessions)
	}
	if stats.Notifications != 2 {
		t.Errorf("Notifications = %d, want 2", stats.Notifications)
	}
	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1", stats.Errors)
	}
	if got := stats.EventsByCategory[log.CategoryLifecycle]; got != 2 {
		t.Errorf("lifecycle events = %d, want 2", got)
	}
	if got := stats.EventsByOutcome[log.OutcomeNone]; got != 0 {
		t.Errorf("lifecycle records counted as outcomes: %d", got)
	}
	if got := stats.EventsByOutcome[log.OutcomeResolveFailed]; got != 1 {
		t.Errorf("resolve failures = %d, want 1", got)
	}

	dev, ok := stats.Devices["AA:BB:CC:DD:EE:01"]
	if !ok {
		t.Fatal("missing device stats for AA:BB:CC:DD:EE:01")
	}
	if dev.Events != 3 || dev.Connects != 1 || dev.Disconnects != 1 {
		t.Errorf("device stats = %+v", dev)
	}
	if dev.Name != "Headset" {
		t.Errorf("device name = %q, want Headset", dev.Name)
	}
	if len(stats.Devices) != 2 {
		t.Errorf("devices = %d, want 2", len(stats.Devices))
	}
}

func TestRunStatsOutput(t *testing.T) {
	path := createTestLogFile(t, sampleSession())

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Total Events:  6",
		"Duration:   1m5s",
		"DISCOVERY:",
		"RESOLVE_FAILED:",
		"Devices (2):",
		"AA:BB:CC:DD:EE:01 (Headset)",
		"connects: 1, disconnects: 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got:\n%s", want, output)
		}
	}
}

func TestRunStatsEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "Total Events:  0") {
		t.Errorf("expected zero events, got:\n%s", output)
	}
	if strings.Contains(output, "Time Range") {
		t.Errorf("empty file should not print a time range:\n%s", output)
	}
}
