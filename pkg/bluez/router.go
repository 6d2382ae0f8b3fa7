package bluez

import (
	"sort"

	"github.com/godbus/dbus/v5"

	"github.com/connwatch/connwatch/pkg/monitor"
)

// route dispatches bus signals until the session is closed or the
// connection drops. It is the only goroutine that sends on or closes
// subscription channels.
func (s *Session) route() {
	defer s.shutdown()

	for {
		select {
		case sig, ok := <-s.signals:
			if !ok {
				s.logger.Warn("bus connection closed", "adapter", s.adapterName)
				return
			}
			s.dispatch(sig)
		case <-s.done:
			return
		}
	}
}

// shutdown ends every open change stream.
func (s *Session) shutdown() {
	s.mu.Lock()
	var subs []*subscription
	for p, set := range s.subs {
		for sub := range set {
			subs = append(subs, sub)
		}
		delete(s.subs, p)
	}
	close(s.routerDone)
	s.mu.Unlock()

	for _, sub := range subs {
		close(sub.ch)
	}
}

func (s *Session) dispatch(sig *dbus.Signal) {
	switch sig.Name {
	case signalInterfacesAdded:
		s.interfacesAdded(sig)
	case signalInterfacesRemoved:
		s.interfacesRemoved(sig)
	case signalPropertiesChanged:
		s.propertiesChanged(sig)
	}
}

func (s *Session) interfacesAdded(sig *dbus.Signal) {
	if len(sig.Body) < 2 {
		return
	}
	p, ok := sig.Body[0].(dbus.ObjectPath)
	if !ok || !isChildOf(p, s.adapterPath) {
		return
	}
	ifaces, ok := sig.Body[1].(map[string]map[string]dbus.Variant)
	if !ok {
		return
	}
	props, ok := ifaces[deviceInterface]
	if !ok {
		return
	}

	id := s.index(p, props)
	s.logger.Debug("device added", "device", id, "path", p)
	s.broadcast(monitor.DiscoveryEvent{Kind: monitor.DiscoveryAdded, ID: id})
}

func (s *Session) interfacesRemoved(sig *dbus.Signal) {
	if len(sig.Body) < 2 {
		return
	}
	p, ok := sig.Body[0].(dbus.ObjectPath)
	if !ok {
		return
	}
	ifaces, ok := sig.Body[1].([]string)
	if !ok {
		return
	}

	for _, iface := range ifaces {
		switch {
		case iface == deviceInterface && isChildOf(p, s.adapterPath):
			id, subs, ok := s.unindex(p)
			if !ok {
				return
			}
			for _, sub := range subs {
				close(sub.ch)
			}
			s.logger.Debug("device removed", "device", id, "streams", len(subs))
			s.broadcast(monitor.DiscoveryEvent{Kind: monitor.DiscoveryRemoved, ID: id})
			return

		case iface == adapterInterface && p == s.adapterPath:
			s.logger.Warn("adapter removed", "adapter", s.adapterName)
			s.broadcast(monitor.DiscoveryEvent{Kind: monitor.DiscoveryOther, ID: monitor.EntityID(s.adapterName)})
			return
		}
	}
}

func (s *Session) propertiesChanged(sig *dbus.Signal) {
	if len(sig.Body) < 2 {
		return
	}
	iface, ok := sig.Body[0].(string)
	if !ok {
		return
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return
	}

	switch {
	case iface == deviceInterface && isChildOf(sig.Path, s.adapterPath):
		subs := s.subscribers(sig.Path)
		if len(subs) == 0 {
			return
		}
		for _, c := range toChanges(changed) {
			for _, sub := range subs {
				s.deliver(sub, c)
			}
		}

	case iface == adapterInterface && sig.Path == s.adapterPath:
		s.broadcast(monitor.DiscoveryEvent{Kind: monitor.DiscoveryOther, ID: monitor.EntityID(s.adapterName)})
	}
}

// toChanges converts a PropertiesChanged payload into changes ordered by
// property name.
func toChanges(changed map[string]dbus.Variant) []monitor.Change {
	names := make([]string, 0, len(changed))
	for name := range changed {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]monitor.Change, 0, len(names))
	for _, name := range names {
		out = append(out, monitor.Change{
			Property: monitor.Property(name),
			Value:    changed[name].Value(),
		})
	}
	return out
}

func (s *Session) deliver(sub *subscription, c monitor.Change) {
	select {
	case sub.ch <- c:
	case <-sub.ctx.Done():
	case <-s.done:
	}
}

func (s *Session) broadcast(ev monitor.DiscoveryEvent) {
	s.mu.Lock()
	watchers := make([]*watcher, 0, len(s.watchers))
	for w := range s.watchers {
		watchers = append(watchers, w)
	}
	s.mu.Unlock()

	for _, w := range watchers {
		select {
		case w.ch <- ev:
		case <-w.ctx.Done():
		case <-s.done:
		}
	}
}
