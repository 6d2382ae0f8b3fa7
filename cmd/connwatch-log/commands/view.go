// Package commands implements the connwatch-log CLI commands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/connwatch/connwatch/pkg/log"
)

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session:id] CATEGORY OUTCOME device
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [session:%s] %-9s %s", ts, shortenSessionID(event.SessionID),
		event.Category.String(), event.Outcome.String())
	if event.DeviceID != "" {
		fmt.Fprintf(w, " %s", event.DeviceID)
	}
	fmt.Fprintln(w)

	switch {
	case event.Discovery != nil:
		fmt.Fprintf(w, "  Kind: %s\n", event.Discovery.Kind)
	case event.Change != nil:
		fmt.Fprintf(w, "  Property: %s = %v\n", event.Change.Property, event.Change.Value)
	case event.Lifecycle != nil:
		formatLifecycleDetails(w, event.Lifecycle)
	}

	if n := event.Notification; n != nil {
		state := "disconnected"
		if n.Connected {
			state = "connected"
		}
		fmt.Fprintf(w, "  Notified: %s %s\n", n.Name, state)
	}
	if e := event.Error; e != nil {
		fmt.Fprintf(w, "  Error (%s): %s\n", e.Stage, e.Message)
	}

	fmt.Fprintln(w)
}

func formatLifecycleDetails(w io.Writer, lc *log.LifecycleEvent) {
	fmt.Fprintf(w, "  State: %s\n", lc.State)
	if lc.Transport != "" {
		fmt.Fprintf(w, "  Transport: %s", lc.Transport)
		if lc.Adapter != "" {
			fmt.Fprintf(w, " (%s)", lc.Adapter)
		}
		fmt.Fprintln(w)
	}
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "discovery":
		return log.CategoryDiscovery, nil
	case "change":
		return log.CategoryChange, nil
	case "lifecycle":
		return log.CategoryLifecycle, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be discovery, change, or lifecycle)", s)
	}
}

// ParseOutcomeFlag parses an outcome string from command-line flag.
// Dashes and underscores are interchangeable.
func ParseOutcomeFlag(s string) (log.Outcome, error) {
	name := strings.ToUpper(strings.ReplaceAll(s, "-", "_"))
	for o := log.OutcomeNone; o <= log.OutcomeSourceClosed; o++ {
		if o.String() == name {
			return o, nil
		}
	}
	return 0, fmt.Errorf("invalid outcome: %s", s)
}

// RunView writes every event matching filter to output.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
}
