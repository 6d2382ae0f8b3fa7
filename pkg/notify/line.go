package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/connwatch/connwatch/pkg/monitor"
)

// Line writes one text line per notification, e.g.
//
//	15:04:05 Device connected: Headset (AA:BB:CC:DD:EE:FF)
type Line struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewLine creates a Line notifier writing to w.
func NewLine(w io.Writer) *Line {
	return &Line{w: w, now: time.Now}
}

// Notify writes n.
func (l *Line) Notify(_ context.Context, n monitor.Notification) {
	msg := Format(n)

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s %s: %s\n", l.now().Format(time.TimeOnly), msg.Summary, msg.Body)
}

var _ monitor.Notifier = (*Line)(nil)
