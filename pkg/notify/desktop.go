package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/connwatch/connwatch/pkg/monitor"
)

const (
	notificationsService = "org.freedesktop.Notifications"
	notificationsPath    = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyMethod         = notificationsService + ".Notify"
)

// Defaults for DesktopConfig.
const (
	DefaultAppName     = "connwatch"
	DefaultIcon        = "bluetooth"
	DefaultTimeout     = 5 * time.Second
	DefaultCallTimeout = 2 * time.Second
)

// BusConn is the part of *dbus.Conn the desktop notifier uses.
type BusConn interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
}

// DesktopConfig configures a Desktop notifier.
type DesktopConfig struct {
	// AppName is reported to the notification server.
	// Default: DefaultAppName.
	AppName string

	// Icon is a freedesktop icon name or file path. Default: DefaultIcon.
	Icon string

	// Timeout is how long the notification stays visible.
	// Default: DefaultTimeout.
	Timeout time.Duration

	// CallTimeout bounds each D-Bus call. Default: DefaultCallTimeout.
	CallTimeout time.Duration

	// Logger receives failures. Default: slog.Default().
	Logger *slog.Logger
}

func (c *DesktopConfig) applyDefaults() {
	if c.AppName == "" {
		c.AppName = DefaultAppName
	}
	if c.Icon == "" {
		c.Icon = DefaultIcon
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Desktop shows notifications through org.freedesktop.Notifications.
type Desktop struct {
	obj    dbus.BusObject
	closer io.Closer
	config DesktopConfig
}

// NewDesktop creates a Desktop notifier on an existing session bus
// connection.
func NewDesktop(conn BusConn, config DesktopConfig) *Desktop {
	config.applyDefaults()
	return &Desktop{
		obj:    conn.Object(notificationsService, notificationsPath),
		config: config,
	}
}

// DialDesktop connects to the session bus. Closing the notifier closes the
// connection.
func DialDesktop(ctx context.Context, config DesktopConfig) (*Desktop, error) {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	d := NewDesktop(conn, config)
	d.closer = conn
	return d, nil
}

// Notify shows n. Failures are logged.
func (d *Desktop) Notify(ctx context.Context, n monitor.Notification) {
	msg := Format(n)

	ctx, cancel := context.WithTimeout(ctx, d.config.CallTimeout)
	defer cancel()

	call := d.obj.CallWithContext(ctx, notifyMethod, 0,
		d.config.AppName,
		uint32(0),
		d.config.Icon,
		msg.Summary,
		msg.Body,
		[]string{},
		map[string]dbus.Variant{},
		int32(d.config.Timeout/time.Millisecond),
	)

	var id uint32
	if err := call.Store(&id); err != nil {
		d.config.Logger.Warn("desktop notification failed",
			"device", n.ID, "summary", msg.Summary, "error", err)
		return
	}
	d.config.Logger.Debug("desktop notification shown", "device", n.ID, "id", id)
}

// Close releases the bus connection opened by DialDesktop.
func (d *Desktop) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

var _ monitor.Notifier = (*Desktop)(nil)
