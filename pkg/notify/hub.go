package notify

import (
	"context"
	"sync"

	"github.com/connwatch/connwatch/pkg/monitor"
)

// Hub forwards every notification to each registered notifier in
// registration order.
type Hub struct {
	mu        sync.RWMutex
	notifiers []monitor.Notifier
}

// NewHub creates a Hub. Nil notifiers are skipped.
func NewHub(notifiers ...monitor.Notifier) *Hub {
	h := &Hub{}
	for _, n := range notifiers {
		h.Add(n)
	}
	return h
}

// Add registers n. It is safe to call while notifications are delivered.
func (h *Hub) Add(n monitor.Notifier) {
	if n == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notifiers = append(h.notifiers, n)
}

// Len returns the number of registered notifiers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.notifiers)
}

// Notify forwards n to every notifier.
func (h *Hub) Notify(ctx context.Context, n monitor.Notification) {
	h.mu.RLock()
	notifiers := append([]monitor.Notifier(nil), h.notifiers...)
	h.mu.RUnlock()

	for _, target := range notifiers {
		target.Notify(ctx, n)
	}
}

var _ monitor.Notifier = (*Hub)(nil)
