// Package log provides structured event capture for connwatch.
//
// This package defines the Logger interface and Event types for recording
// what the monitor did with every event it consumed: discovery events,
// per-device attribute changes and session lifecycle. It is separate from
// operational logging (slog) - capture provides a complete machine-readable
// trace for debugging and offline analysis.
//
// # Basic Usage
//
// Applications configure capture by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.EventLog = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.EventLog, _ = log.NewFileLogger("/var/log/connwatch/session.clog")
//
//	// Both
//	cfg.EventLog = log.Tee(fileLogger, log.NewSlogAdapter(slog.Default()))
//
// # Event Types
//
// Every event consumed by the monitor produces exactly one record:
//   - Discovery: a device was added, removed, or the transport reported
//     something else (DiscoveryEvent)
//   - Change: a device attribute changed or its change stream ended
//     (ChangeEvent)
//
// The Outcome field says what the monitor did with it. Notifications raised
// while handling the event are attached as NotificationEvent. Session start
// and stop produce Lifecycle records.
//
// # File Format
//
// Capture files use CBOR encoding with the .clog extension. The
// connwatch-log CLI tool provides viewing, statistics and export.
package log
