package discovery

import (
	"context"
	"errors"
	"log/slog"

	"github.com/enbility/zeroconf/v3"
)

// Defaults.
const (
	DefaultService = "_workstation._tcp"
	DefaultDomain  = "local."
)

// TXT record keys carrying a display name.
const (
	TXTKeyDeviceName   = "DN"
	TXTKeyFriendlyName = "fn"
	TXTKeyName         = "name"
)

// Errors.
var (
	ErrAlreadyBrowsing = errors.New("discovery: already browsing")
	ErrNotBrowsing     = errors.New("discovery: not browsing")
)

// BrowseFunc browses one service type until ctx is cancelled, sending
// announced entries on entries and withdrawn entries on removed.
type BrowseFunc func(ctx context.Context, service, domain string, entries, removed chan *zeroconf.ServiceEntry, opts ...zeroconf.ClientOption) error

// Config configures a Transport.
type Config struct {
	// Service is the DNS-SD service type to browse.
	// Default: DefaultService.
	Service string

	// Domain is the browse domain. Default: DefaultDomain.
	Domain string

	// Interface restricts browsing to one network interface.
	// Empty string means all interfaces.
	Interface string

	// Logger receives diagnostics. Default: slog.Default().
	Logger *slog.Logger

	// Browse runs the mDNS query. Default: zeroconf.Browse.
	// Set this in tests to inject entries.
	Browse BrowseFunc
}

// DefaultConfig returns the default transport configuration.
func DefaultConfig() Config {
	return Config{
		Service: DefaultService,
		Domain:  DefaultDomain,
	}
}

func (c *Config) applyDefaults() {
	if c.Service == "" {
		c.Service = DefaultService
	}
	if c.Domain == "" {
		c.Domain = DefaultDomain
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Browse == nil {
		c.Browse = func(ctx context.Context, service, domain string, entries, removed chan *zeroconf.ServiceEntry, opts ...zeroconf.ClientOption) error {
			return zeroconf.Browse(ctx, service, domain, entries, removed, opts...)
		}
	}
}

// Service is the aggregated view of one service instance.
type Service struct {
	// Instance is the service instance name; it is the device ID.
	Instance string

	// Host is the target host name.
	Host string

	// Port is the service port.
	Port int

	// Addresses lists the announced IP addresses.
	Addresses []string

	// Text holds the parsed TXT record.
	Text TXTRecordMap
}

// Online reports whether any address is announced.
func (s *Service) Online() bool {
	return len(s.Addresses) > 0
}

// Name returns the display name from the TXT record, or the instance name.
func (s *Service) Name() string {
	for _, key := range []string{TXTKeyDeviceName, TXTKeyFriendlyName, TXTKeyName} {
		if v := s.Text[key]; v != "" {
			return v
		}
	}
	return s.Instance
}

func (s *Service) clone() Service {
	out := *s
	out.Addresses = append([]string(nil), s.Addresses...)
	out.Text = make(TXTRecordMap, len(s.Text))
	for k, v := range s.Text {
		out.Text[k] = v
	}
	return out
}
