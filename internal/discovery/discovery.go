// Package discovery enumerates candidate printers per transport.
// Every scan is best-effort and advisory: results feed the setup flow, and a
// total failure degrades to "no devices found" rather than an error.
package discovery

import (
	"context"
	"time"

	"github.com/tillpoint/print-engine/internal/profile"
)

// Status of a discovered device; probes cannot always tell more than "seen"
const (
	StatusAvailable = "available"
	StatusUnknown   = "unknown"
)

// Device is a transient discovery hit. It is never persisted; a profile is
// only created when an operator confirms a selection.
type Device struct {
	Transport   profile.Transport `json:"transport"`
	Address     string            `json:"address"`
	DisplayName string            `json:"display_name"`
	Status      string            `json:"status"`
}

// Config bounds the network probe and the bluetooth scan window
type Config struct {
	Subnets      []string
	Ports        []int
	ProbeTimeout time.Duration
	BLEWindow    time.Duration
}

// Scanner performs per-transport discovery passes
type Scanner struct {
	cfg Config
}

// NewScanner creates a scanner; zero config fields get working defaults.
// The default subnets are a deliberate heuristic covering common home and
// small-office ranges. This is not a full network scanner and does not try
// to be one.
func NewScanner(cfg Config) *Scanner {
	if len(cfg.Subnets) == 0 {
		cfg.Subnets = []string{"192.168.1.0/24", "10.0.0.0/24"}
	}
	if len(cfg.Ports) == 0 {
		cfg.Ports = []int{9100, 515, 631}
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 300 * time.Millisecond
	}
	if cfg.BLEWindow <= 0 {
		cfg.BLEWindow = 5 * time.Second
	}
	return &Scanner{cfg: cfg}
}

// Scan runs one discovery pass for the given transport. It never returns an
// error; unsupported transports and failed scans yield an empty slice.
func (s *Scanner) Scan(ctx context.Context, t profile.Transport) []Device {
	switch t {
	case profile.TransportUSB:
		return s.scanUSB()
	case profile.TransportSerial:
		return s.scanSerial()
	case profile.TransportNetwork:
		return s.scanNetwork(ctx)
	case profile.TransportBluetooth:
		return s.scanBluetooth(ctx)
	default:
		return nil
	}
}
