package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"sync"

	"github.com/enbility/zeroconf/v3"

	"github.com/connwatch/connwatch/pkg/monitor"
)

// Transport is a monitor.Transport over one DNS-SD service type.
type Transport struct {
	config Config
	logger *slog.Logger

	mu       sync.Mutex
	browsing bool
	services map[monitor.EntityID]*Service
	subs     map[monitor.EntityID]map[*subscription]struct{}
}

type subscription struct {
	ctx context.Context
	ch  chan monitor.Change
}

// New creates a Transport.
func New(config Config) *Transport {
	config.applyDefaults()
	return &Transport{
		config:   config,
		logger:   config.Logger,
		services: make(map[monitor.EntityID]*Service),
		subs:     make(map[monitor.EntityID]map[*subscription]struct{}),
	}
}

// AdapterName returns the network interface browsed on, or "mdns" when
// browsing all interfaces.
func (t *Transport) AdapterName() string {
	if t.config.Interface != "" {
		return t.config.Interface
	}
	return "mdns"
}

// Discover starts browsing and returns the discovery stream. The stream
// and every change stream close when ctx is cancelled or browsing stops.
func (t *Transport) Discover(ctx context.Context) (<-chan monitor.DiscoveryEvent, error) {
	opts, err := t.clientOptions()
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	if t.browsing {
		t.mu.Unlock()
		return nil, ErrAlreadyBrowsing
	}
	t.browsing = true
	t.mu.Unlock()

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)
	out := make(chan monitor.DiscoveryEvent)

	browseCtx, cancel := context.WithCancel(ctx)
	browseDone := make(chan struct{})

	go func() {
		defer close(browseDone)
		err := t.config.Browse(browseCtx, t.config.Service, t.config.Domain, entries, removed, opts...)
		if err != nil && browseCtx.Err() == nil {
			t.logger.Warn("mdns browse failed", "service", t.config.Service, "error", err)
		}
	}()

	go t.aggregate(browseCtx, cancel, browseDone, entries, removed, out)

	t.logger.Info("mdns browsing started", "service", t.config.Service, "domain", t.config.Domain)
	return out, nil
}

// aggregate folds browse results into the service table. It is the only
// goroutine that sends on or closes change streams.
func (t *Transport) aggregate(ctx context.Context, cancel context.CancelFunc, browseDone <-chan struct{},
	entries, removed <-chan *zeroconf.ServiceEntry, out chan<- monitor.DiscoveryEvent) {
	defer close(out)
	defer t.finish()
	defer cancel()

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return
			}
			if !t.announce(ctx, entry, out) {
				return
			}

		case entry, ok := <-removed:
			if !ok {
				removed = nil
				continue
			}
			t.withdraw(ctx, entry)

		case <-browseDone:
			return

		case <-ctx.Done():
			return
		}
	}
}

// announce records an announced entry. It reports false if ctx ended
// while emitting a discovery event.
func (t *Transport) announce(ctx context.Context, entry *zeroconf.ServiceEntry, out chan<- monitor.DiscoveryEvent) bool {
	if entry == nil || entry.Instance == "" {
		return true
	}
	id := monitor.EntityID(entry.Instance)
	addrs := entryAddresses(entry)

	t.mu.Lock()
	svc, found := t.services[id]
	if !found {
		t.services[id] = &Service{
			Instance:  entry.Instance,
			Host:      entry.HostName,
			Port:      entry.Port,
			Addresses: addrs,
			Text:      StringsToTXTRecords(entry.Text),
		}
		t.mu.Unlock()

		t.logger.Debug("service found", "instance", entry.Instance, "addresses", addrs)
		select {
		case out <- monitor.DiscoveryEvent{Kind: monitor.DiscoveryAdded, ID: id}:
			return true
		case <-ctx.Done():
			return false
		}
	}

	wasOnline := svc.Online()
	before := len(svc.Addresses)
	svc.Addresses = mergeAddresses(svc.Addresses, addrs)
	if entry.HostName != "" {
		svc.Host = entry.HostName
	}
	if entry.Port != 0 {
		svc.Port = entry.Port
	}

	var changes []monitor.Change
	if len(entry.Text) > 0 {
		name := svc.Name()
		svc.Text = StringsToTXTRecords(entry.Text)
		if svc.Name() != name {
			changes = append(changes, monitor.Change{Property: monitor.PropertyName, Value: svc.Name()})
		}
	}
	if len(svc.Addresses) != before {
		changes = append(changes, monitor.Change{Property: monitor.PropertyAddresses, Value: append([]string(nil), svc.Addresses...)})
	}
	if !wasOnline && svc.Online() {
		changes = append(changes, monitor.Change{Property: monitor.PropertyConnected, Value: true})
	}
	subs := t.subscribersLocked(id)
	t.mu.Unlock()

	t.deliver(ctx, subs, changes)
	return true
}

// withdraw removes the addresses of a goodbye entry.
func (t *Transport) withdraw(ctx context.Context, entry *zeroconf.ServiceEntry) {
	if entry == nil {
		return
	}
	id := monitor.EntityID(entry.Instance)

	t.mu.Lock()
	svc, found := t.services[id]
	if !found {
		t.mu.Unlock()
		return
	}

	wasOnline := svc.Online()
	before := len(svc.Addresses)
	svc.Addresses = removeAddresses(svc.Addresses, entry)
	// A goodbye without addresses withdraws the whole instance.
	if len(entry.AddrIPv4) == 0 && len(entry.AddrIPv6) == 0 {
		svc.Addresses = nil
	}

	var changes []monitor.Change
	if len(svc.Addresses) != before {
		changes = append(changes, monitor.Change{Property: monitor.PropertyAddresses, Value: append([]string(nil), svc.Addresses...)})
	}
	if wasOnline && !svc.Online() {
		changes = append(changes, monitor.Change{Property: monitor.PropertyConnected, Value: false})
		t.logger.Debug("service offline", "instance", entry.Instance)
	}
	subs := t.subscribersLocked(id)
	t.mu.Unlock()

	t.deliver(ctx, subs, changes)
}

func (t *Transport) deliver(ctx context.Context, subs []*subscription, changes []monitor.Change) {
	for _, c := range changes {
		for _, sub := range subs {
			select {
			case sub.ch <- c:
			case <-sub.ctx.Done():
			case <-ctx.Done():
				return
			}
		}
	}
}

// finish ends every change stream once browsing stops.
func (t *Transport) finish() {
	t.mu.Lock()
	var subs []*subscription
	for id, set := range t.subs {
		for sub := range set {
			subs = append(subs, sub)
		}
		delete(t.subs, id)
	}
	t.browsing = false
	t.mu.Unlock()

	for _, sub := range subs {
		close(sub.ch)
	}
	t.logger.Info("mdns browsing stopped", "service", t.config.Service)
}

func (t *Transport) subscribersLocked(id monitor.EntityID) []*subscription {
	subs := make([]*subscription, 0, len(t.subs[id]))
	for sub := range t.subs[id] {
		subs = append(subs, sub)
	}
	return subs
}

func (t *Transport) subscribe(ctx context.Context, id monitor.EntityID) (<-chan monitor.Change, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.browsing {
		return nil, ErrNotBrowsing
	}
	if _, ok := t.services[id]; !ok {
		return nil, fmt.Errorf("service %s: %w", id, monitor.ErrNotFound)
	}

	sub := &subscription{ctx: ctx, ch: make(chan monitor.Change)}
	if t.subs[id] == nil {
		t.subs[id] = make(map[*subscription]struct{})
	}
	t.subs[id][sub] = struct{}{}

	context.AfterFunc(ctx, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs[id], sub)
	})
	return sub.ch, nil
}

// Resolve returns a handle for a service instance seen while browsing.
func (t *Transport) Resolve(id monitor.EntityID) (monitor.Handle, error) {
	if _, ok := t.Lookup(id); !ok {
		return nil, fmt.Errorf("service %s: %w", id, monitor.ErrNotFound)
	}
	return &handle{transport: t, id: id}, nil
}

// Lookup returns a copy of the aggregated service for id.
func (t *Transport) Lookup(id monitor.EntityID) (Service, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	svc, ok := t.services[id]
	if !ok {
		return Service{}, false
	}
	return svc.clone(), true
}

// Services returns copies of all known services sorted by instance name.
func (t *Transport) Services() []Service {
	t.mu.Lock()
	out := make([]Service, 0, len(t.services))
	for _, svc := range t.services {
		out = append(out, svc.clone())
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Instance < out[j].Instance })
	return out
}

// clientOptions returns zeroconf client options based on config.
func (t *Transport) clientOptions() ([]zeroconf.ClientOption, error) {
	if t.config.Interface == "" {
		return nil, nil
	}
	iface, err := net.InterfaceByName(t.config.Interface)
	if err != nil {
		return nil, fmt.Errorf("%w: interface %s: %w", monitor.ErrTransportInit, t.config.Interface, err)
	}
	return []zeroconf.ClientOption{zeroconf.SelectIfaces([]net.Interface{*iface})}, nil
}

func entryAddresses(entry *zeroconf.ServiceEntry) []string {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return addrs
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, added []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}
	for _, addr := range added {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses removes the addresses of a zeroconf entry from the list.
func removeAddresses(addresses []string, entry *zeroconf.ServiceEntry) []string {
	toRemove := make(map[string]bool)
	for _, addr := range entryAddresses(entry) {
		toRemove[addr] = true
	}

	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}

var _ monitor.Transport = (*Transport)(nil)
