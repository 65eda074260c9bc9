package discovery

import (
	"fmt"

	"github.com/google/gousb"
	"github.com/tillpoint/print-engine/internal/profile"
)

// knownVendors maps USB vendor IDs of common receipt printer makers. Devices
// from these vendors are accepted even when they don't report printer class.
var knownVendors = map[uint16]string{
	0x04B8: "Epson",
	0x0519: "Star Micronics",
	0x0419: "Bixolon",
	0x1D90: "Citizen",
	0x0DD4: "Custom Engineering",
	0x0FE6: "ICS Advent",
	0x6868: "Zjiang",
}

func (s *Scanner) scanUSB() []Device {
	ctx := gousb.NewContext()
	defer ctx.Close()

	var devices []Device

	opened, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return true
	})
	// OpenDevices can fail partway and still return devices; use what we got
	if err != nil && len(opened) == 0 {
		return nil
	}

	for _, dev := range opened {
		desc := dev.Desc
		vid := uint16(desc.Vendor)
		pid := uint16(desc.Product)

		_, knownVendor := knownVendors[vid]
		if !knownVendor && !isPrinterClass(desc) {
			dev.Close()
			continue
		}

		manufacturer, _ := dev.Manufacturer()
		product, _ := dev.Product()

		name := fmt.Sprintf("USB %04X:%04X", vid, pid)
		if manufacturer != "" || product != "" {
			name = fmt.Sprintf("%s %s (%04X:%04X)", manufacturer, product, vid, pid)
		}

		devices = append(devices, Device{
			Transport:   profile.TransportUSB,
			Address:     fmt.Sprintf("%04X:%04X", vid, pid),
			DisplayName: name,
			Status:      StatusAvailable,
		})
		dev.Close()
	}

	return devices
}

// isPrinterClass reports whether the device or any of its interfaces claims
// USB class 7 (printer)
func isPrinterClass(desc *gousb.DeviceDesc) bool {
	if desc.Class == gousb.ClassPrinter {
		return true
	}
	for _, cfg := range desc.Configs {
		for _, iface := range cfg.Interfaces {
			for _, alt := range iface.AltSettings {
				if alt.Class == gousb.ClassPrinter {
					return true
				}
			}
		}
	}
	return false
}
