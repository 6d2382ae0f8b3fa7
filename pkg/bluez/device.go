package bluez

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/connwatch/connwatch/pkg/monitor"
)

// Device is a handle to one BlueZ device. Property reads go to the bus
// every time.
type Device struct {
	session *Session
	id      monitor.EntityID
	path    dbus.ObjectPath
}

// ID returns the device address.
func (d *Device) ID() monitor.EntityID {
	return d.id
}

// Path returns the device's object path.
func (d *Device) Path() dbus.ObjectPath {
	return d.path
}

// Name returns the device's Name property, falling back to its Alias.
func (d *Device) Name(ctx context.Context) (string, error) {
	var lastErr error
	for _, prop := range []string{"Name", "Alias"} {
		v, err := d.property(ctx, prop)
		if err != nil {
			lastErr = err
			continue
		}
		if name, ok := v.Value().(string); ok && name != "" {
			return name, nil
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("device %s has no name", d.id)
	}
	return "", lastErr
}

// Connected reads the device's Connected property.
func (d *Device) Connected(ctx context.Context) (bool, error) {
	v, err := d.property(ctx, "Connected")
	if err != nil {
		return false, err
	}
	connected, ok := v.Value().(bool)
	if !ok {
		return false, fmt.Errorf("device %s: Connected has signature %s", d.id, v.Signature())
	}
	return connected, nil
}

// Changes opens a stream of the device's property changes. It fails with
// monitor.ErrNotFound if the device has been removed.
func (d *Device) Changes(ctx context.Context) (<-chan monitor.Change, error) {
	return d.session.subscribe(ctx, d.id, d.path)
}

func (d *Device) property(ctx context.Context, name string) (dbus.Variant, error) {
	var v dbus.Variant
	call := d.session.conn.Object(Service, d.path).CallWithContext(ctx,
		propertiesInterface+".Get", 0, deviceInterface, name)
	if err := call.Store(&v); err != nil {
		if isNotFound(err) {
			return v, fmt.Errorf("device %s: %w", d.id, monitor.ErrNotFound)
		}
		return v, fmt.Errorf("device %s: read %s: %w", d.id, name, err)
	}
	return v, nil
}
