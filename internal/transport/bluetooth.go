//go:build !darwin

package transport

import (
	"fmt"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"
)

// gattChunkSize keeps each write inside the small GATT buffers of thermal
// printers; bulk writes silently truncate on most of them.
const gattChunkSize = 20

// gattChunkDelay gives the printer time to drain between chunks
const gattChunkDelay = 15 * time.Millisecond

// gattCandidate is one service/characteristic pair a printer may expose
type gattCandidate struct {
	service        bluetooth.UUID
	characteristic bluetooth.UUID
}

// gattCandidates are tried in order; devices expose only a subset, and the
// first resolvable pair wins.
var gattCandidates = []gattCandidate{
	{bluetooth.New16BitUUID(0x18F0), bluetooth.New16BitUUID(0x2AF1)},
	{mustUUID("e7810a71-73ae-499d-8c15-faa9aef0c3f2"), mustUUID("bef8d6c9-9c21-4c9e-b632-bd58c1009f9f")},
	{mustUUID("49535343-fe7d-4ae5-8fa9-9fafd205e455"), mustUUID("49535343-8841-43f4-a8d4-ecbe34729bb3")},
}

func mustUUID(s string) bluetooth.UUID {
	u, err := bluetooth.ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return u
}

// bleConn is a connected GATT write characteristic on a paired printer
type bleConn struct {
	device         bluetooth.Device
	characteristic bluetooth.DeviceCharacteristic
	mu             sync.Mutex
}

// connectBluetooth connects to an already-paired printer by address and
// resolves a writable characteristic from the candidate list. Each candidate
// yields a found/not-found answer; only exhausting the list is an error.
func connectBluetooth(address string) (*bleConn, error) {
	if address == "" {
		return nil, fmt.Errorf("bluetooth address is not configured")
	}

	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("failed to enable bluetooth adapter: %w", err)
	}

	mac, err := bluetooth.ParseMAC(address)
	if err != nil {
		return nil, fmt.Errorf("invalid bluetooth address '%s': %w", address, err)
	}

	device, err := adapter.Connect(bluetooth.Address{MACAddress: bluetooth.MACAddress{MAC: mac}}, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to bluetooth printer: %w", err)
	}

	char, ok := resolveCharacteristic(device)
	if !ok {
		device.Disconnect()
		return nil, fmt.Errorf("no known print service on bluetooth device %s", address)
	}

	return &bleConn{device: device, characteristic: char}, nil
}

func resolveCharacteristic(device bluetooth.Device) (bluetooth.DeviceCharacteristic, bool) {
	for _, cand := range gattCandidates {
		services, err := device.DiscoverServices([]bluetooth.UUID{cand.service})
		if err != nil || len(services) == 0 {
			continue
		}
		chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{cand.characteristic})
		if err != nil || len(chars) == 0 {
			continue
		}
		return chars[0], true
	}
	return bluetooth.DeviceCharacteristic{}, false
}

// Write sends data in small chunks with a short delay between writes
func (c *bleConn) Write(data []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	written := 0
	for written < len(data) {
		end := written + gattChunkSize
		if end > len(data) {
			end = len(data)
		}

		n, err := c.characteristic.WriteWithoutResponse(data[written:end])
		if err != nil {
			return written, fmt.Errorf("gatt write rejected at offset %d: %w", written, err)
		}
		written += n
		if n == 0 {
			return written, fmt.Errorf("gatt write stalled at offset %d", written)
		}

		time.Sleep(gattChunkDelay)
	}

	return written, nil
}

func (c *bleConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.device.Disconnect()
}
