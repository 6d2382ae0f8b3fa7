// Package bluez implements the monitor transport on top of the BlueZ
// D-Bus API.
//
// A Session selects one adapter, indexes the devices below it and routes
// the bus signals BlueZ emits:
//
//   - ObjectManager.InterfacesAdded for org.bluez.Device1 becomes a
//     DiscoveryAdded event.
//   - ObjectManager.InterfacesRemoved ends the device's change streams and
//     becomes a DiscoveryRemoved event.
//   - Properties.PropertiesChanged on org.bluez.Device1 becomes one
//     monitor.Change per changed property.
//   - Properties.PropertiesChanged on the adapter becomes a DiscoveryOther
//     event.
//
// Example:
//
//	session, err := bluez.Dial(ctx, bluez.Options{Adapter: "hci0"})
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//
//	m := monitor.New(monitor.Config{Transport: session, Notifier: n})
//	err = m.Run(ctx)
package bluez
