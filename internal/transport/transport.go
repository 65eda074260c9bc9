// Package transport delivers encoded print streams to physical devices
package transport

import (
	"fmt"
	"time"

	"github.com/tillpoint/print-engine/internal/profile"
)

// Conn is a unified write channel to one printer, whatever the transport
type Conn interface {
	Write(data []byte) (int, error)
	Close() error
}

// Status is the caller-visible outcome of one delivery
type Status string

const (
	StatusDelivered Status = "delivered"
	StatusFallback  Status = "delivered_fallback"
	StatusFailed    Status = "failed"
)

// Result reports how a delivery ended. Reason carries the human-readable
// failure cause for anything other than a clean delivery.
type Result struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Dispatcher resolves a profile's transport and performs at most two
// attempts per delivery: one against the configured transport, then one
// against the fallback print document. Transport errors never escape it.
type Dispatcher struct {
	dataDir     string
	dialTimeout time.Duration

	connect func(p *profile.Profile, timeout time.Duration) (Conn, error)
	open    func(path string) error
}

// NewDispatcher creates a dispatcher writing fallback documents under dataDir
func NewDispatcher(dataDir string, dialTimeout time.Duration) *Dispatcher {
	if dialTimeout <= 0 {
		dialTimeout = 3 * time.Second
	}
	return &Dispatcher{
		dataDir:     dataDir,
		dialTimeout: dialTimeout,
		connect:     connectTransport,
		open:        openDocument,
	}
}

// Deliver sends payload to the profile's device. On any primary failure the
// same content is rendered as an HTML print document and handed to the
// operator; only a failing fallback reports StatusFailed.
func (d *Dispatcher) Deliver(payload []byte, doc Document, p *profile.Profile) Result {
	if p.Transport == profile.TransportFallback {
		if err := d.deliverFallback(doc); err != nil {
			return Result{Status: StatusFailed, Reason: err.Error()}
		}
		return Result{Status: StatusDelivered}
	}

	conn, err := d.connect(p, d.dialTimeout)
	if err == nil {
		_, werr := conn.Write(payload)
		conn.Close()
		if werr == nil {
			return Result{Status: StatusDelivered}
		}
		err = fmt.Errorf("write to %s printer failed: %w", p.Transport, werr)
	}

	if ferr := d.deliverFallback(doc); ferr != nil {
		return Result{
			Status: StatusFailed,
			Reason: fmt.Sprintf("%v; fallback failed: %v", err, ferr),
		}
	}

	return Result{Status: StatusFallback, Reason: err.Error()}
}

func (d *Dispatcher) deliverFallback(doc Document) error {
	path, err := WriteDocument(d.dataDir, doc)
	if err != nil {
		return err
	}
	return d.open(path)
}

// connectTransport opens a connection for the profile's configured transport
func connectTransport(p *profile.Profile, timeout time.Duration) (Conn, error) {
	switch p.Transport {
	case profile.TransportUSB:
		return connectUSB(p.VID, p.PID, p.ModelMatch)
	case profile.TransportNetwork:
		port := p.Port
		if port == 0 {
			port = profile.DefaultPort
		}
		return connectNetwork(p.Host, port, timeout)
	case profile.TransportBluetooth:
		return connectBluetooth(p.BLEAddress)
	case profile.TransportSerial:
		return connectSerial(p.Device, p.BaudRate)
	default:
		return nil, fmt.Errorf("unsupported transport: %s", p.Transport)
	}
}
