package transport

import (
	"fmt"
	"sync"

	"github.com/tarm/serial"
	"github.com/tillpoint/print-engine/internal/profile"
)

// serialConn is a serial printer connection at a configured baud rate
type serialConn struct {
	port *serial.Port
	mu   sync.Mutex
}

func connectSerial(device string, baud int) (*serialConn, error) {
	if device == "" {
		return nil, fmt.Errorf("serial device is not configured")
	}
	if baud == 0 {
		baud = profile.DefaultBaudRate
	}

	port, err := serial.OpenPort(&serial.Config{Name: device, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}

	return &serialConn{port: port}, nil
}

func (c *serialConn) Write(data []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.port.Write(data)
}

func (c *serialConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port != nil {
		return c.port.Close()
	}
	return nil
}
