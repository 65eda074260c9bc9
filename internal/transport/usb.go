package transport

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/gousb"
)

// usbConn is a claimed USB printer interface with a resolved OUT endpoint
type usbConn struct {
	ctx      *gousb.Context
	device   *gousb.Device
	iface    *gousb.Interface
	done     func()
	endpoint *gousb.OutEndpoint
	mu       sync.Mutex
}

// connectUSB opens a USB printer either by exact VID/PID or, when only a
// model substring is configured, by matching it against the product strings
// of attached printer-class devices.
func connectUSB(vid, pid uint16, modelMatch string) (*usbConn, error) {
	ctx := gousb.NewContext()

	var dev *gousb.Device
	var err error

	if vid != 0 && pid != 0 {
		dev, err = ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
		if err != nil {
			ctx.Close()
			return nil, fmt.Errorf("failed to open USB device: %w", err)
		}
		if dev == nil {
			ctx.Close()
			return nil, fmt.Errorf("device not found: %04X:%04X", vid, pid)
		}
	} else if modelMatch != "" {
		dev, err = openByModel(ctx, modelMatch)
		if err != nil {
			ctx.Close()
			return nil, err
		}
	} else {
		ctx.Close()
		return nil, fmt.Errorf("usb profile has neither VID/PID nor a model match")
	}

	conn, err := claimOutEndpoint(ctx, dev)
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, err
	}

	return conn, nil
}

// openByModel finds the first attached device whose product string contains
// the configured substring, case-insensitively.
func openByModel(ctx *gousb.Context, modelMatch string) (*gousb.Device, error) {
	devices, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return true
	})
	if err != nil && len(devices) == 0 {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}

	want := strings.ToLower(modelMatch)
	var match *gousb.Device

	for _, dev := range devices {
		if match != nil {
			dev.Close()
			continue
		}
		product, _ := dev.Product()
		if product != "" && strings.Contains(strings.ToLower(product), want) {
			match = dev
			continue
		}
		dev.Close()
	}

	if match == nil {
		return nil, fmt.Errorf("no USB device matching model '%s'", modelMatch)
	}
	return match, nil
}

// claimOutEndpoint claims an interface exposing an OUT endpoint. Most
// printers work with the default interface; the rest need a walk over their
// configurations.
func claimOutEndpoint(ctx *gousb.Context, dev *gousb.Device) (*usbConn, error) {
	iface, done, err := dev.DefaultInterface()
	if err != nil {
		dev.SetAutoDetach(true)
		iface, done, err = dev.DefaultInterface()
	}
	if err == nil {
		if ep := findOutEndpoint(iface); ep != nil {
			return &usbConn{ctx: ctx, device: dev, iface: iface, done: done, endpoint: ep}, nil
		}
		iface.Close()
	}

	// Default interface had no OUT endpoint; walk every configuration
	var lastErr error
	for _, cfgDesc := range dev.Desc.Configs {
		cfg, err := dev.Config(cfgDesc.Number)
		if err != nil {
			lastErr = fmt.Errorf("failed to set config %d: %w", cfgDesc.Number, err)
			continue
		}

		for _, ifaceDesc := range cfgDesc.Interfaces {
			iface, err := cfg.Interface(ifaceDesc.Number, 0)
			if err != nil {
				lastErr = fmt.Errorf("failed to claim interface %d: %w", ifaceDesc.Number, err)
				continue
			}
			if ep := findOutEndpoint(iface); ep != nil {
				return &usbConn{ctx: ctx, device: dev, iface: iface, endpoint: ep}, nil
			}
			iface.Close()
		}
		cfg.Close()
	}

	if lastErr != nil {
		return nil, fmt.Errorf("failed to claim USB printer interface: %w", lastErr)
	}
	return nil, fmt.Errorf("no OUT endpoint found on USB printer")
}

func findOutEndpoint(iface *gousb.Interface) *gousb.OutEndpoint {
	for _, epDesc := range iface.Setting.Endpoints {
		if epDesc.Direction == gousb.EndpointDirectionOut {
			if ep, err := iface.OutEndpoint(epDesc.Number); err == nil {
				return ep
			}
		}
	}
	return nil
}

func (c *usbConn) Write(data []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.endpoint.Write(data)
}

func (c *usbConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done != nil {
		c.done()
	} else if c.iface != nil {
		c.iface.Close()
	}
	if c.device != nil {
		c.device.Close()
	}
	if c.ctx != nil {
		c.ctx.Close()
	}
	return nil
}
