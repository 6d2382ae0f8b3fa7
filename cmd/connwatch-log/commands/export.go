package commands

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/connwatch/connwatch/pkg/log"
)

// RunExport exports the log file to the specified format. An empty output
// writes to stdout.
func RunExport(path, format, output string) error {
	if format != "jsonl" && format != "csv" {
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "csv" {
		return exportCSV(reader, w)
	}
	return exportJSONL(reader, w)
}

// jsonEvent is the JSONL rendering of an event with readable enums.
type jsonEvent struct {
	Timestamp    string                 `json:"timestamp"`
	SessionID    string                 `json:"session_id"`
	Category     string                 `json:"category"`
	Outcome      string                 `json:"outcome"`
	DeviceID     string                 `json:"device_id,omitempty"`
	Discovery    *log.DiscoveryEvent    `json:"discovery,omitempty"`
	Change       *log.ChangeEvent       `json:"change,omitempty"`
	Lifecycle    *log.LifecycleEvent    `json:"lifecycle,omitempty"`
	Notification *log.NotificationEvent `json:"notification,omitempty"`
	Error        *log.ErrorEventData    `json:"error,omitempty"`
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		je := jsonEvent{
			Timestamp:    formatTimestamp(event),
			SessionID:    event.SessionID,
			Category:     event.Category.String(),
			Outcome:      event.Outcome.String(),
			DeviceID:     event.DeviceID,
			Discovery:    event.Discovery,
			Change:       event.Change,
			Lifecycle:    event.Lifecycle,
			Notification: event.Notification,
			Error:        event.Error,
		}
		if err := encoder.Encode(je); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "session_id", "category", "outcome", "device_id", "detail", "notified", "connected", "error"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		var detail string
		switch {
		case event.Discovery != nil:
			detail = event.Discovery.Kind
		case event.Change != nil:
			detail = fmt.Sprintf("%s=%v", event.Change.Property, event.Change.Value)
		case event.Lifecycle != nil:
			detail = event.Lifecycle.State
		}

		notified, connected := "false", ""
		if n := event.Notification; n != nil {
			notified = "true"
			connected = strconv.FormatBool(n.Connected)
		}

		var errText string
		if event.Error != nil {
			errText = event.Error.Stage + ": " + event.Error.Message
		}

		row := []string{
			formatTimestamp(event),
			event.SessionID,
			event.Category.String(),
			event.Outcome.String(),
			event.DeviceID,
			detail,
			notified,
			connected,
			errText,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatTimestamp(event log.Event) string {
	return event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
}
