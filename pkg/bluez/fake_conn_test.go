package bluez

import (
	"context"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/connwatch/connwatch/pkg/monitor"
)

const (
	testAdapter    = dbus.ObjectPath("/org/bluez/hci0")
	testAddrA      = "AA:BB:CC:DD:EE:01"
	testAddrB      = "AA:BB:CC:DD:EE:02"
	errInvalidArgs = "org.freedesktop.DBus.Error.InvalidArgs"
)

type fakeCall struct {
	path   dbus.ObjectPath
	method string
	args   []interface{}
}

// fakeConn is an in-memory BlueZ. Device properties live in props, keyed
// by object path.
type fakeConn struct {
	mu       sync.Mutex
	objects  managedObjects
	props    map[dbus.ObjectPath]map[string]dbus.Variant
	failures map[string]error
	calls    []fakeCall
	signal   chan<- *dbus.Signal
	matches  int
	removed  bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		objects: managedObjects{
			"/org/bluez": {"org.bluez.AgentManager1": {}},
			testAdapter: {adapterInterface: {
				"Address": dbus.MakeVariant("00:11:22:33:44:55"),
				"Powered": dbus.MakeVariant(false),
			}},
		},
		props:    make(map[dbus.ObjectPath]map[string]dbus.Variant),
		failures: make(map[string]error),
	}
}

func deviceProps(addr, name string, connected bool) map[string]dbus.Variant {
	props := map[string]dbus.Variant{
		"Address":   dbus.MakeVariant(addr),
		"Alias":     dbus.MakeVariant(addr),
		"Connected": dbus.MakeVariant(connected),
	}
	if name != "" {
		props["Name"] = dbus.MakeVariant(name)
		props["Alias"] = dbus.MakeVariant(name)
	}
	return props
}

// addDevice makes a device known before the session is opened.
func (c *fakeConn) addDevice(addr, name string, connected bool) dbus.ObjectPath {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := DevicePath(testAdapter, monitor.EntityID(addr))
	props := deviceProps(addr, name, connected)
	c.objects[p] = map[string]map[string]dbus.Variant{deviceInterface: props}
	c.props[p] = props
	return p
}

func (c *fakeConn) setProp(p dbus.ObjectPath, name string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.props[p][name] = dbus.MakeVariant(value)
}

func (c *fakeConn) deleteDevice(p dbus.ObjectPath) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, p)
	delete(c.props, p)
}

func (c *fakeConn) fail(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[method] = err
}

func (c *fakeConn) methods() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, len(c.calls))
	for _, call := range c.calls {
		out = append(out, call.method)
	}
	return out
}

func (c *fakeConn) callsTo(method string) []fakeCall {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []fakeCall
	for _, call := range c.calls {
		if call.method == method {
			out = append(out, call)
		}
	}
	return out
}

func (c *fakeConn) emit(sig *dbus.Signal) {
	c.mu.Lock()
	ch := c.signal
	c.mu.Unlock()
	ch <- sig
}

func (c *fakeConn) emitAdded(p dbus.ObjectPath, props map[string]dbus.Variant) {
	c.mu.Lock()
	c.objects[p] = map[string]map[string]dbus.Variant{deviceInterface: props}
	c.props[p] = props
	c.mu.Unlock()

	c.emit(&dbus.Signal{
		Sender: ":1.7",
		Path:   "/",
		Name:   signalInterfacesAdded,
		Body:   []interface{}{p, map[string]map[string]dbus.Variant{deviceInterface: props}},
	})
}

func (c *fakeConn) emitRemoved(p dbus.ObjectPath) {
	c.deleteDevice(p)
	c.emit(&dbus.Signal{
		Sender: ":1.7",
		Path:   "/",
		Name:   signalInterfacesRemoved,
		Body:   []interface{}{p, []string{propertiesInterface, deviceInterface}},
	})
}

func (c *fakeConn) emitChanged(p dbus.ObjectPath, iface string, changed map[string]dbus.Variant) {
	c.emit(&dbus.Signal{
		Sender: ":1.7",
		Path:   p,
		Name:   signalPropertiesChanged,
		Body:   []interface{}{iface, changed, []string{}},
	})
}

func (c *fakeConn) Object(dest string, p dbus.ObjectPath) dbus.BusObject {
	return &fakeObject{conn: c, path: p}
}

func (c *fakeConn) AddMatchSignal(...dbus.MatchOption) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failures["AddMatch"]; err != nil {
		return err
	}
	c.matches++
	return nil
}

func (c *fakeConn) RemoveMatchSignal(...dbus.MatchOption) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matches--
	return nil
}

func (c *fakeConn) Signal(ch chan<- *dbus.Signal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signal = ch
}

func (c *fakeConn) RemoveSignal(chan<- *dbus.Signal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removed = true
}

func (c *fakeConn) call(p dbus.ObjectPath, method string, args []interface{}) *dbus.Call {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, fakeCall{path: p, method: method, args: args})
	if err := c.failures[method]; err != nil {
		return &dbus.Call{Err: err}
	}

	switch method {
	case objectManagerInterface + ".GetManagedObjects":
		objects := make(managedObjects, len(c.objects))
		for k, v := range c.objects {
			objects[k] = v
		}
		return &dbus.Call{Body: []interface{}{objects}}

	case propertiesInterface + ".Get":
		props, ok := c.props[p]
		if !ok {
			return &dbus.Call{Err: dbus.Error{Name: errUnknownObject, Body: []interface{}{"no such object"}}}
		}
		v, ok := props[args[1].(string)]
		if !ok {
			return &dbus.Call{Err: dbus.Error{Name: errInvalidArgs, Body: []interface{}{"no such property"}}}
		}
		return &dbus.Call{Body: []interface{}{v}}
	}
	return &dbus.Call{}
}

// fakeObject only implements CallWithContext; other BusObject methods are
// not used by the session.
type fakeObject struct {
	dbus.BusObject
	conn *fakeConn
	path dbus.ObjectPath
}

func (o *fakeObject) CallWithContext(_ context.Context, method string, _ dbus.Flags, args ...interface{}) *dbus.Call {
	return o.conn.call(o.path, method, args)
}
