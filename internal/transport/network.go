package transport

import (
	"fmt"
	"net"
	"sync"
	"time"
)

// networkConn is a raw-port network printer connection. The dial timeout is
// the only explicit timeout in the engine; an unreachable printer must not
// stall a delivery indefinitely.
type networkConn struct {
	conn net.Conn
	mu   sync.Mutex
}

func connectNetwork(host string, port int, timeout time.Duration) (*networkConn, error) {
	address := fmt.Sprintf("%s:%d", host, port)

	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to network printer: %w", err)
	}

	return &networkConn{conn: conn}, nil
}

func (c *networkConn) Write(data []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn.Write(data)
}

func (c *networkConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
