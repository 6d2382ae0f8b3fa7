package discovery

import (
	"context"
	"fmt"

	"github.com/connwatch/connwatch/pkg/monitor"
)

// handle reads from the transport's service table; it never queries the
// network.
type handle struct {
	transport *Transport
	id        monitor.EntityID
}

func (h *handle) ID() monitor.EntityID {
	return h.id
}

func (h *handle) Name(context.Context) (string, error) {
	svc, err := h.service()
	if err != nil {
		return "", err
	}
	return svc.Name(), nil
}

func (h *handle) Connected(context.Context) (bool, error) {
	svc, err := h.service()
	if err != nil {
		return false, err
	}
	return svc.Online(), nil
}

func (h *handle) Changes(ctx context.Context) (<-chan monitor.Change, error) {
	return h.transport.subscribe(ctx, h.id)
}

func (h *handle) service() (Service, error) {
	svc, ok := h.transport.Lookup(h.id)
	if !ok {
		return Service{}, fmt.Errorf("service %s: %w", h.id, monitor.ErrNotFound)
	}
	return svc, nil
}
