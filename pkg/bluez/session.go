package bluez

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/connwatch/connwatch/pkg/monitor"
)

// Default values.
const (
	DefaultSignalBuffer = 64
	DefaultStopTimeout  = 2 * time.Second
)

// Options configures a Session.
type Options struct {
	// Adapter selects an adapter by name, e.g. "hci0".
	// Default: the first adapter in object path order.
	Adapter string

	// Logger receives diagnostics. Default: slog.Default().
	Logger *slog.Logger

	// StopTimeout bounds the StopDiscovery call made after discovery ends.
	// Default: DefaultStopTimeout.
	StopTimeout time.Duration
}

func (o *Options) applyDefaults() {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.StopTimeout <= 0 {
		o.StopTimeout = DefaultStopTimeout
	}
}

// Session is a monitor.Transport bound to one BlueZ adapter.
type Session struct {
	conn   Conn
	closer io.Closer
	opts   Options
	logger *slog.Logger

	adapterPath dbus.ObjectPath
	adapterName string
	matches     [][]dbus.MatchOption

	signals    chan *dbus.Signal
	done       chan struct{}
	routerDone chan struct{}
	closeOnce  sync.Once

	mu       sync.Mutex
	devices  map[monitor.EntityID]dbus.ObjectPath
	byPath   map[dbus.ObjectPath]monitor.EntityID
	watchers map[*watcher]struct{}
	subs     map[dbus.ObjectPath]map[*subscription]struct{}
}

// watcher receives discovery events for one Discover call.
type watcher struct {
	ctx context.Context
	ch  chan monitor.DiscoveryEvent
}

// subscription receives property changes for one device.
type subscription struct {
	ctx context.Context
	ch  chan monitor.Change
}

// Dial connects to the system bus and opens a Session on it. Closing the
// Session closes the connection.
func Dial(ctx context.Context, opts Options) (*Session, error) {
	conn, err := dbus.ConnectSystemBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: connect system bus: %w", monitor.ErrTransportInit, err)
	}

	s, err := Open(ctx, conn, opts)
	if err != nil {
		conn.Close()
		return nil, err
	}
	s.closer = conn
	return s, nil
}

// Open selects an adapter on conn, indexes its devices and starts routing
// BlueZ signals. Errors wrap monitor.ErrTransportInit.
func Open(ctx context.Context, conn Conn, opts Options) (*Session, error) {
	opts.applyDefaults()

	s := &Session{
		conn:       conn,
		opts:       opts,
		logger:     opts.Logger,
		signals:    make(chan *dbus.Signal, DefaultSignalBuffer),
		done:       make(chan struct{}),
		routerDone: make(chan struct{}),
		devices:    make(map[monitor.EntityID]dbus.ObjectPath),
		byPath:     make(map[dbus.ObjectPath]monitor.EntityID),
		watchers:   make(map[*watcher]struct{}),
		subs:       make(map[dbus.ObjectPath]map[*subscription]struct{}),
	}

	// Subscribe before listing objects so nothing added in between is lost.
	s.matches = [][]dbus.MatchOption{
		{dbus.WithMatchSender(Service), dbus.WithMatchInterface(objectManagerInterface)},
		{dbus.WithMatchSender(Service), dbus.WithMatchInterface(propertiesInterface), dbus.WithMatchMember("PropertiesChanged")},
	}
	for i, match := range s.matches {
		if err := conn.AddMatchSignal(match...); err != nil {
			s.matches = s.matches[:i]
			s.removeMatches()
			return nil, fmt.Errorf("%w: add signal match: %w", monitor.ErrTransportInit, err)
		}
	}
	conn.Signal(s.signals)

	objects, err := s.managedObjects(ctx)
	if err != nil {
		s.detach()
		return nil, err
	}

	adapter, ok := selectAdapter(objects, opts.Adapter)
	if !ok {
		s.detach()
		if opts.Adapter != "" {
			return nil, fmt.Errorf("%w: adapter %s not found", monitor.ErrTransportInit, opts.Adapter)
		}
		return nil, fmt.Errorf("%w: no bluetooth adapter", monitor.ErrTransportInit)
	}
	s.adapterPath = adapter
	s.adapterName = adapterName(adapter)

	for p, ifaces := range objects {
		if props, ok := ifaces[deviceInterface]; ok && isChildOf(p, adapter) {
			s.index(p, props)
		}
	}
	s.logger.Debug("bluez session opened", "adapter", s.adapterName, "devices", len(s.devices))

	go s.route()
	return s, nil
}

func (s *Session) managedObjects(ctx context.Context) (managedObjects, error) {
	var objects managedObjects
	call := s.conn.Object(Service, "/").CallWithContext(ctx, objectManagerInterface+".GetManagedObjects", 0)
	if err := call.Store(&objects); err != nil {
		return nil, fmt.Errorf("%w: list bluez objects: %w", monitor.ErrTransportInit, err)
	}
	return objects, nil
}

// AdapterName returns the adapter name, e.g. "hci0".
func (s *Session) AdapterName() string {
	return s.adapterName
}

// AdapterPath returns the adapter's object path.
func (s *Session) AdapterPath() dbus.ObjectPath {
	return s.adapterPath
}

// Resolve returns a handle for a device known to the session. It does not
// touch the bus.
func (s *Session) Resolve(id monitor.EntityID) (monitor.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.devices[id]
	if !ok {
		return nil, fmt.Errorf("device %s: %w", id, monitor.ErrNotFound)
	}
	return &Device{session: s, id: id, path: p}, nil
}

// Devices returns the indexed device addresses, sorted.
func (s *Session) Devices() []monitor.EntityID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedDevices()
}

func (s *Session) sortedDevices() []monitor.EntityID {
	ids := make([]monitor.EntityID, 0, len(s.devices))
	for id := range s.devices {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Close stops signal routing, ends every open stream and, for sessions
// created by Dial, closes the bus connection.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		<-s.routerDone
		s.detach()
		if s.closer != nil {
			err = s.closer.Close()
		}
	})
	return err
}

func (s *Session) detach() {
	s.conn.RemoveSignal(s.signals)
	s.removeMatches()
}

func (s *Session) removeMatches() {
	for _, match := range s.matches {
		if err := s.conn.RemoveMatchSignal(match...); err != nil {
			s.logger.Debug("remove signal match", "error", err)
		}
	}
}

func (s *Session) index(p dbus.ObjectPath, props map[string]dbus.Variant) monitor.EntityID {
	id := deviceID(p, props)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[id] = p
	s.byPath[p] = id
	return id
}

// unindex forgets the device at p and detaches its subscriptions.
func (s *Session) unindex(p dbus.ObjectPath) (monitor.EntityID, []*subscription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byPath[p]
	if !ok {
		return "", nil, false
	}
	delete(s.byPath, p)
	delete(s.devices, id)

	subs := make([]*subscription, 0, len(s.subs[p]))
	for sub := range s.subs[p] {
		subs = append(subs, sub)
	}
	delete(s.subs, p)
	return id, subs, true
}

// subscribe opens a change stream for the device at p. The stream is
// closed by the router when the device disappears or the session closes.
func (s *Session) subscribe(ctx context.Context, id monitor.EntityID, p dbus.ObjectPath) (<-chan monitor.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.routerDone:
		return nil, fmt.Errorf("device %s: session closed", id)
	default:
	}
	if s.byPath[p] != id {
		return nil, fmt.Errorf("device %s: %w", id, monitor.ErrNotFound)
	}

	sub := &subscription{ctx: ctx, ch: make(chan monitor.Change)}
	if s.subs[p] == nil {
		s.subs[p] = make(map[*subscription]struct{})
	}
	s.subs[p][sub] = struct{}{}

	context.AfterFunc(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[p], sub)
	})
	return sub.ch, nil
}

func (s *Session) subscribers(p dbus.ObjectPath) []*subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := make([]*subscription, 0, len(s.subs[p]))
	for sub := range s.subs[p] {
		subs = append(subs, sub)
	}
	return subs
}

func (s *Session) addWatcher(w *watcher) []monitor.EntityID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers[w] = struct{}{}
	return s.sortedDevices()
}

func (s *Session) removeWatcher(w *watcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.watchers, w)
}
