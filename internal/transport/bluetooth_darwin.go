package transport

import "fmt"

// Profiles store printers by MAC address, which CoreBluetooth does not
// expose; it identifies peripherals by per-host UUIDs instead. Until profiles
// carry those, bluetooth deliveries on macOS degrade to the fallback
// document like any other connect failure.
func connectBluetooth(address string) (Conn, error) {
	return nil, fmt.Errorf("bluetooth printing is not supported on this platform")
}
