package discovery

import (
	"context"
	"strings"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/tillpoint/print-engine/internal/profile"
)

// knownNamePrefixes match the advertised names of common BLE receipt printers
var knownNamePrefixes = []string{
	"MTP-", "PT-", "RPP", "BlueTooth Printer", "Printer", "POS-", "GOOJPRT",
}

// printServiceUUID is the transparent UART style print service most BLE
// thermal printers advertise
var printServiceUUID = bluetooth.New16BitUUID(0x18F0)

// scanBluetooth runs one bounded scan window. It exists only behind a manual
// trigger: BLE scanning needs an explicit operator action, never a background
// sweep.
func (s *Scanner) scanBluetooth(ctx context.Context) []Device {
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil
	}

	var (
		mu      sync.Mutex
		seen    = make(map[string]bool)
		devices []Device
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Scan blocks until StopScan; errors degrade to an empty result
		_ = adapter.Scan(func(a *bluetooth.Adapter, result bluetooth.ScanResult) {
			name := result.LocalName()
			if !printerLikeName(name) && !result.HasServiceUUID(printServiceUUID) {
				return
			}

			address := result.Address.String()
			mu.Lock()
			if !seen[address] {
				seen[address] = true
				display := name
				if display == "" {
					display = address
				}
				devices = append(devices, Device{
					Transport:   profile.TransportBluetooth,
					Address:     address,
					DisplayName: display,
					Status:      StatusAvailable,
				})
			}
			mu.Unlock()
		})
	}()

	select {
	case <-time.After(s.cfg.BLEWindow):
	case <-ctx.Done():
	case <-done:
	}
	adapter.StopScan()
	<-done

	mu.Lock()
	defer mu.Unlock()
	return devices
}

func printerLikeName(name string) bool {
	for _, prefix := range knownNamePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
