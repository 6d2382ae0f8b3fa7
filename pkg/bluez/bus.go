package bluez

import (
	"errors"
	"path"
	"sort"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/connwatch/connwatch/pkg/monitor"
)

// Service is the well-known bus name of the BlueZ daemon.
const Service = "org.bluez"

const (
	adapterInterface       = "org.bluez.Adapter1"
	deviceInterface        = "org.bluez.Device1"
	objectManagerInterface = "org.freedesktop.DBus.ObjectManager"
	propertiesInterface    = "org.freedesktop.DBus.Properties"

	signalInterfacesAdded   = objectManagerInterface + ".InterfacesAdded"
	signalInterfacesRemoved = objectManagerInterface + ".InterfacesRemoved"
	signalPropertiesChanged = propertiesInterface + ".PropertiesChanged"

	errUnknownObject = "org.freedesktop.DBus.Error.UnknownObject"
	errBluezNotFound = "org.bluez.Error.DoesNotExist"
)

// Conn is the part of *dbus.Conn a Session uses.
type Conn interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	AddMatchSignal(options ...dbus.MatchOption) error
	RemoveMatchSignal(options ...dbus.MatchOption) error
	Signal(ch chan<- *dbus.Signal)
	RemoveSignal(ch chan<- *dbus.Signal)
}

// managedObjects is the reply of ObjectManager.GetManagedObjects.
type managedObjects = map[dbus.ObjectPath]map[string]map[string]dbus.Variant

// selectAdapter returns the adapter called name, or the first adapter in
// path order when name is empty.
func selectAdapter(objects managedObjects, name string) (dbus.ObjectPath, bool) {
	var adapters []dbus.ObjectPath
	for p, ifaces := range objects {
		if _, ok := ifaces[adapterInterface]; ok {
			adapters = append(adapters, p)
		}
	}
	sort.Slice(adapters, func(i, j int) bool { return adapters[i] < adapters[j] })

	for _, p := range adapters {
		if name == "" || adapterName(p) == name {
			return p, true
		}
	}
	return "", false
}

func adapterName(p dbus.ObjectPath) string {
	return path.Base(string(p))
}

// isChildOf reports whether p lies below parent.
func isChildOf(p, parent dbus.ObjectPath) bool {
	return strings.HasPrefix(string(p), string(parent)+"/")
}

// deviceID returns the device address, taken from the Address property
// when present and from the object path otherwise.
func deviceID(p dbus.ObjectPath, props map[string]dbus.Variant) monitor.EntityID {
	if v, ok := props["Address"]; ok {
		if addr, ok := v.Value().(string); ok && addr != "" {
			return monitor.EntityID(addr)
		}
	}
	base := strings.TrimPrefix(path.Base(string(p)), "dev_")
	return monitor.EntityID(strings.ReplaceAll(base, "_", ":"))
}

// DevicePath returns the object path BlueZ uses for addr below adapter.
func DevicePath(adapter dbus.ObjectPath, addr monitor.EntityID) dbus.ObjectPath {
	return adapter + "/dev_" + dbus.ObjectPath(strings.ReplaceAll(string(addr), ":", "_"))
}

// isNotFound reports whether err is a D-Bus error for an object that no
// longer exists.
func isNotFound(err error) bool {
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) {
		return dbusErr.Name == errUnknownObject || dbusErr.Name == errBluezNotFound
	}
	var dbusErrPtr *dbus.Error
	if errors.As(err, &dbusErrPtr) {
		return dbusErrPtr.Name == errUnknownObject || dbusErrPtr.Name == errBluezNotFound
	}
	return false
}
