package notify

import (
	"fmt"

	"github.com/connwatch/connwatch/pkg/monitor"
)

// Notification summaries.
const (
	SummaryConnected    = "Device connected"
	SummaryDisconnected = "Device disconnected"
)

// Message is the rendered text of a notification.
type Message struct {
	Summary string
	Body    string
}

// Format renders n as "Device connected" / "Device disconnected" with the
// body "<name> (<id>)".
func Format(n monitor.Notification) Message {
	summary := SummaryDisconnected
	if n.Connected {
		summary = SummaryConnected
	}
	name := n.Name
	if name == "" {
		name = string(n.ID)
	}
	return Message{
		Summary: summary,
		Body:    fmt.Sprintf("%s (%s)", name, n.ID),
	}
}
