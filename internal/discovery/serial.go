package discovery

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/tarm/serial"
	"github.com/tillpoint/print-engine/internal/profile"
)

func (s *Scanner) scanSerial() []Device {
	var devices []Device

	for _, portPath := range candidateSerialPorts() {
		// Open briefly to confirm the port exists and is not held
		port, err := serial.OpenPort(&serial.Config{Name: portPath, Baud: profile.DefaultBaudRate})
		if err != nil {
			continue
		}
		port.Close()

		devices = append(devices, Device{
			Transport:   profile.TransportSerial,
			Address:     portPath,
			DisplayName: fmt.Sprintf("Serial %s", filepath.Base(portPath)),
			Status:      StatusAvailable,
		})
	}

	return devices
}

func candidateSerialPorts() []string {
	var ports []string

	switch runtime.GOOS {
	case "darwin":
		skipPatterns := []string{"Bluetooth", "Modem", "SPP", "DialIn", "Callout", "KeySerial", "debug-console"}

		cuPorts, _ := filepath.Glob("/dev/cu.*")
		ttyPorts, _ := filepath.Glob("/dev/tty.*")

		for _, port := range append(cuPorts, ttyPorts...) {
			skip := false
			for _, pattern := range skipPatterns {
				if strings.Contains(port, pattern) {
					skip = true
					break
				}
			}
			if !skip {
				ports = append(ports, port)
			}
		}

	case "linux":
		usbPorts, _ := filepath.Glob("/dev/ttyUSB*")
		acmPorts, _ := filepath.Glob("/dev/ttyACM*")
		ports = append(ports, usbPorts...)
		ports = append(ports, acmPorts...)

	case "windows":
		for i := 1; i <= 64; i++ {
			ports = append(ports, fmt.Sprintf("COM%d", i))
		}
	}

	return ports
}
