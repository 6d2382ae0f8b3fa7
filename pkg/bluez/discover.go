package bluez

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/connwatch/connwatch/pkg/monitor"
)

// Discover powers the adapter on, starts device discovery and returns the
// discovery stream. Devices already known to BlueZ are reported as added
// ahead of any newly found device. The stream closes when ctx is cancelled
// or the session ends; discovery is stopped at that point.
func (s *Session) Discover(ctx context.Context) (<-chan monitor.DiscoveryEvent, error) {
	adapter := s.conn.Object(Service, s.adapterPath)

	call := adapter.CallWithContext(ctx, propertiesInterface+".Set", 0,
		adapterInterface, "Powered", dbus.MakeVariant(true))
	if call.Err != nil {
		return nil, fmt.Errorf("%w: power on %s: %w", monitor.ErrTransportInit, s.adapterName, call.Err)
	}

	w := &watcher{ctx: ctx, ch: make(chan monitor.DiscoveryEvent)}
	existing := s.addWatcher(w)

	if call := adapter.CallWithContext(ctx, adapterInterface+".StartDiscovery", 0); call.Err != nil {
		s.removeWatcher(w)
		return nil, fmt.Errorf("%w: start discovery on %s: %w", monitor.ErrTransportInit, s.adapterName, call.Err)
	}
	s.logger.Info("discovery started", "adapter", s.adapterName, "known", len(existing))

	out := make(chan monitor.DiscoveryEvent)
	go s.pump(ctx, w, existing, out)
	return out, nil
}

func (s *Session) pump(ctx context.Context, w *watcher, existing []monitor.EntityID, out chan<- monitor.DiscoveryEvent) {
	defer close(out)
	defer s.stopDiscovery()
	defer s.removeWatcher(w)

	send := func(ev monitor.DiscoveryEvent) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		case <-s.routerDone:
			return false
		}
	}

	for _, id := range existing {
		if !send(monitor.DiscoveryEvent{Kind: monitor.DiscoveryAdded, ID: id}) {
			return
		}
	}

	for {
		select {
		case ev := <-w.ch:
			if !send(ev) {
				return
			}
		case <-ctx.Done():
			return
		case <-s.routerDone:
			return
		}
	}
}

func (s *Session) stopDiscovery() {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.StopTimeout)
	defer cancel()

	call := s.conn.Object(Service, s.adapterPath).CallWithContext(ctx, adapterInterface+".StopDiscovery", 0)
	if call.Err != nil {
		s.logger.Debug("stop discovery", "adapter", s.adapterName, "error", call.Err)
		return
	}
	s.logger.Info("discovery stopped", "adapter", s.adapterName)
}
