package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes capture records to an slog.Logger at Debug level.
// Useful during development to see the monitor's decisions in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", shortID(event.SessionID)),
		slog.String("category", event.Category.String()),
	}
	if event.Outcome != OutcomeNone {
		attrs = append(attrs, slog.String("outcome", event.Outcome.String()))
	}
	if event.DeviceID != "" {
		attrs = append(attrs, slog.String("device", event.DeviceID))
	}

	switch {
	case event.Discovery != nil:
		attrs = append(attrs, slog.String("kind", event.Discovery.Kind))
	case event.Change != nil:
		attrs = append(attrs,
			slog.String("property", event.Change.Property),
			slog.Any("value", event.Change.Value),
		)
	case event.Lifecycle != nil:
		attrs = append(attrs, slog.String("state", event.Lifecycle.State))
		if event.Lifecycle.Transport != "" {
			attrs = append(attrs, slog.String("transport", event.Lifecycle.Transport))
		}
		if event.Lifecycle.Adapter != "" {
			attrs = append(attrs, slog.String("adapter", event.Lifecycle.Adapter))
		}
	}

	if event.Notification != nil {
		attrs = append(attrs,
			slog.String("name", event.Notification.Name),
			slog.Bool("connected", event.Notification.Connected),
		)
	}
	if event.Error != nil {
		attrs = append(attrs,
			slog.String("stage", event.Error.Stage),
			slog.String("error", event.Error.Message),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "monitor event", attrs...)
}

// shortID returns the first 8 characters of a session ID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

var _ Logger = (*SlogAdapter)(nil)
