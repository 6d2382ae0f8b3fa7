// Command connwatch watches for devices connecting and disconnecting and
// raises a desktop notification for every transition.
//
// Usage:
//
//	connwatch [flags]
//
// Flags:
//
//	-c, --config          Path to a YAML configuration file
//	    --transport       Discovery backend: bluez or mdns (default: bluez)
//	    --adapter         Bluetooth adapter name, e.g. hci0 (default: first adapter)
//	    --mdns-service    DNS-SD service type browsed by the mdns transport
//	    --mdns-interface  Network interface for the mdns transport
//	    --event-log       Write a capture of every handled event to this file
//	    --log-level       Log level: debug, info, warn, error (default: info)
//	    --no-notify       Do not raise desktop notifications
//	-i, --interactive     Start the command console
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/connwatch/connwatch/cmd/connwatch/interactive"
	"github.com/connwatch/connwatch/pkg/bluez"
	"github.com/connwatch/connwatch/pkg/config"
	"github.com/connwatch/connwatch/pkg/discovery"
	eventlog "github.com/connwatch/connwatch/pkg/log"
	"github.com/connwatch/connwatch/pkg/monitor"
	"github.com/connwatch/connwatch/pkg/notify"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := loadConfig(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "connwatch: %v\n", err)
		return 2
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, logger); err != nil {
		logger.Error("connwatch failed", "error", err)
		return 1
	}
	return 0
}

// loadConfig reads the configuration file, if any, and applies the flags
// the user set on top of it.
func loadConfig(args []string) (config.Config, error) {
	fs := pflag.NewFlagSet("connwatch", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "Path to a YAML configuration file")
	transport := fs.String("transport", config.TransportBlueZ, "Discovery backend: bluez or mdns")
	adapter := fs.String("adapter", "", "Bluetooth adapter name, e.g. hci0 (default: first adapter)")
	mdnsService := fs.String("mdns-service", discovery.DefaultService, "DNS-SD service type browsed by the mdns transport")
	mdnsInterface := fs.String("mdns-interface", "", "Network interface for the mdns transport (default: all)")
	eventLog := fs.String("event-log", "", "Write a capture of every handled event to this file")
	logLevel := fs.String("log-level", "info", "Log level: debug, info, warn, error")
	noNotify := fs.Bool("no-notify", false, "Do not raise desktop notifications")
	interactiveMode := fs.BoolP("interactive", "i", false, "Start the command console")

	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if fs.Changed("transport") {
		cfg.Transport = *transport
	}
	if fs.Changed("adapter") {
		cfg.Adapter = *adapter
	}
	if fs.Changed("mdns-service") {
		cfg.MDNS.Service = *mdnsService
	}
	if fs.Changed("mdns-interface") {
		cfg.MDNS.Interface = *mdnsInterface
	}
	if fs.Changed("event-log") {
		cfg.EventLog = *eventLog
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	if fs.Changed("no-notify") {
		cfg.Notification.Enabled = !*noNotify
	}
	if fs.Changed("interactive") {
		cfg.Interactive = *interactiveMode
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// closer is a transport that owns resources.
type closer interface {
	monitor.Transport
	io.Closer
}

func openTransport(ctx context.Context, cfg config.Config, logger *slog.Logger) (monitor.Transport, func(), error) {
	switch cfg.Transport {
	case config.TransportMDNS:
		t := discovery.New(discovery.Config{
			Service:   cfg.MDNS.Service,
			Domain:    cfg.MDNS.Domain,
			Interface: cfg.MDNS.Interface,
			Logger:    logger.With("transport", "mdns"),
		})
		return t, func() {}, nil
	default:
		session, err := bluez.Dial(ctx, bluez.Options{
			Adapter: cfg.Adapter,
			Logger:  logger.With("transport", "bluez"),
		})
		if err != nil {
			return nil, nil, err
		}
		var t closer = session
		return t, func() { _ = t.Close() }, nil
	}
}

func openNotifier(ctx context.Context, cfg config.Config, logger *slog.Logger) (monitor.Notifier, func()) {
	hub := notify.NewHub()
	cleanup := func() {}

	if cfg.Notification.Enabled {
		desktop, err := notify.DialDesktop(ctx, notify.DesktopConfig{
			AppName:     cfg.Notification.AppName,
			Icon:        cfg.Notification.Icon,
			Timeout:     cfg.Notification.Timeout(),
			CallTimeout: cfg.Notification.CallTimeout(),
			Logger:      logger.With("component", "notify"),
		})
		if err != nil {
			logger.Warn("desktop notifications unavailable", "error", err)
		} else {
			hub.Add(desktop)
			cleanup = func() { _ = desktop.Close() }
		}
	}

	if hub.Len() == 0 {
		hub.Add(notify.NewLine(os.Stderr))
	}
	return hub, cleanup
}

func openEventLog(path string, logger *slog.Logger) (eventlog.Logger, func(), error) {
	adapter := eventlog.NewSlogAdapter(logger.With("component", "events"))
	if path == "" {
		return adapter, func() {}, nil
	}

	file, err := eventlog.NewFileLogger(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open event log: %w", err)
	}
	cleanup := func() {
		if n := file.Dropped(); n > 0 {
			logger.Warn("event log dropped records", "count", n)
		}
		_ = file.Close()
	}
	return eventlog.Tee(file, adapter), cleanup, nil
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	transport, closeTransport, err := openTransport(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeTransport()

	notifier, closeNotifier := openNotifier(ctx, cfg, logger)
	defer closeNotifier()

	events, closeEvents, err := openEventLog(cfg.EventLog, logger)
	if err != nil {
		return err
	}
	defer closeEvents()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	registry := monitor.NewRegistry()
	sessionID := uuid.New().String()
	var out io.Writer = os.Stdout
	var console *interactive.Console
	if cfg.Interactive {
		console, err = interactive.New(registry, interactive.Info{
			Transport: cfg.Transport,
			Adapter:   transport.AdapterName(),
			SessionID: sessionID,
			Started:   time.Now(),
		})
		if err != nil {
			return err
		}
		out = console.Stdout()
	}

	if cfg.Transport == config.TransportMDNS {
		fmt.Fprintf(out, "Discovering devices using mDNS service %s on %s\n\n", cfg.MDNS.Service, transport.AdapterName())
	} else {
		fmt.Fprintf(out, "Discovering devices using Bluetooth adapter %s\n\n", transport.AdapterName())
	}

	m := monitor.New(monitor.Config{
		Transport:     transport,
		Notifier:      notifier,
		TransportName: cfg.Transport,
		Output:        out,
		Logger:        logger,
		EventLog:      events,
		Registry:      registry,
		SessionID:     sessionID,
	})
	logger.Debug("monitor session", "session", m.SessionID())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// The console has nothing left to show once the loop is done.
		defer cancel()
		return m.Run(gctx)
	})
	if console != nil {
		g.Go(func() error {
			console.Run(gctx, cancel)
			return nil
		})
	}
	return g.Wait()
}
