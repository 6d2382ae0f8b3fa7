package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/connwatch/connwatch/pkg/log"
)

// Stats holds aggregate statistics about a capture file.
type Stats struct {
	TotalEvents      int
	Sessions         int
	EventsByCategory map[log.Category]int
	EventsByOutcome  map[log.Outcome]int
	Devices          map[string]*DeviceStats
	Notifications    int
	Errors           int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// DeviceStats holds statistics for a single device.
type DeviceStats struct {
	Name          string
	FirstSeen     time.Time
	LastSeen      time.Time
	Events        int
	Connects      int
	Disconnects   int
	Notifications int
}

// Collect reads the capture file and aggregates its events.
func Collect(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory: make(map[log.Category]int),
		EventsByOutcome:  make(map[log.Outcome]int),
		Devices:          make(map[string]*DeviceStats),
	}
	sessions := make(map[string]struct{})

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++
		if event.Category != log.CategoryLifecycle {
			stats.EventsByOutcome[event.Outcome]++
		}
		sessions[event.SessionID] = struct{}{}

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		if event.Error != nil {
			stats.Errors++
		}
		if event.Notification != nil {
			stats.Notifications++
		}

		if event.DeviceID == "" || event.Category == log.CategoryLifecycle {
			continue
		}
		dev, ok := stats.Devices[event.DeviceID]
		if !ok {
			dev = &DeviceStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
			stats.Devices[event.DeviceID] = dev
		}
		dev.Events++
		if event.Timestamp.After(dev.LastSeen) {
			dev.LastSeen = event.Timestamp
		}
		if n := event.Notification; n != nil {
			dev.Name = n.Name
			dev.Notifications++
			if n.Connected {
				dev.Connects++
			} else {
				dev.Disconnects++
			}
		}
	}
	stats.Sessions = len(sessions)

	return stats, nil
}

// RunStats analyzes the capture file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := Collect(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== connwatch Event Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events:  %d\n", stats.TotalEvents)
	fmt.Fprintf(w, "Sessions:      %d\n", stats.Sessions)
	fmt.Fprintf(w, "Notifications: %d\n", stats.Notifications)
	fmt.Fprintf(w, "Errors:        %d\n", stats.Errors)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryDiscovery, log.CategoryChange, log.CategoryLifecycle} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-18s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.EventsByOutcome) > 0 {
		fmt.Fprintln(w, "Events by Outcome:")
		for o := log.OutcomeNone; o <= log.OutcomeSourceClosed; o++ {
			if count := stats.EventsByOutcome[o]; count > 0 {
				fmt.Fprintf(w, "  %-18s %d\n", o.String()+":", count)
			}
		}
		fmt.Fprintln(w)
	}

	if len(stats.Devices) == 0 {
		return
	}

	ids := make([]string, 0, len(stats.Devices))
	for id := range stats.Devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Fprintf(w, "Devices (%d):\n", len(ids))
	for _, id := range ids {
		dev := stats.Devices[id]
		fmt.Fprintf(w, "  %s", id)
		if dev.Name != "" && dev.Name != id {
			fmt.Fprintf(w, " (%s)", dev.Name)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "    Events: %d, connects: %d, disconnects: %d\n", dev.Events, dev.Connects, dev.Disconnects)
		fmt.Fprintf(w, "    Seen: %s to %s\n", dev.FirstSeen.Format(time.RFC3339), dev.LastSeen.Format(time.RFC3339))
	}
}
