package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/tillpoint/print-engine/internal/profile"
)

// probeConcurrency bounds simultaneous dials so a /24 sweep doesn't exhaust
// file descriptors
const probeConcurrency = 64

// scanNetwork sweeps the configured subnets across the common printer ports
// with short-timeout dials. Every successful dial is a hit; the same address
// may surface once per responding port. Duplicates are expected and the scan
// makes no claim of completeness.
func (s *Scanner) scanNetwork(ctx context.Context) []Device {
	var hosts []string
	for _, subnet := range s.cfg.Subnets {
		hosts = append(hosts, expandSubnet(subnet)...)
	}

	return probeHosts(ctx, hosts, s.cfg.Ports, s.cfg.ProbeTimeout)
}

func probeHosts(ctx context.Context, hosts []string, ports []int, timeout time.Duration) []Device {
	var (
		mu      sync.Mutex
		devices []Device
		wg      sync.WaitGroup
	)
	sem := make(chan struct{}, probeConcurrency)

	for _, host := range hosts {
		for _, port := range ports {
			if ctx.Err() != nil {
				wg.Wait()
				return devices
			}

			wg.Add(1)
			sem <- struct{}{}
			go func(host string, port int) {
				defer wg.Done()
				defer func() { <-sem }()

				address := fmt.Sprintf("%s:%d", host, port)
				conn, err := net.DialTimeout("tcp", address, timeout)
				if err != nil {
					return
				}
				conn.Close()

				mu.Lock()
				devices = append(devices, Device{
					Transport:   profile.TransportNetwork,
					Address:     address,
					DisplayName: fmt.Sprintf("Network printer at %s", address),
					Status:      StatusUnknown,
				})
				mu.Unlock()
			}(host, port)
		}
	}

	wg.Wait()
	return devices
}

// expandSubnet lists host addresses of a CIDR range, skipping the network
// and broadcast addresses. Malformed ranges expand to nothing.
func expandSubnet(cidr string) []string {
	ip, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil
	}

	var hosts []string
	for addr := ip.Mask(ipNet.Mask); ipNet.Contains(addr); incrementIP(addr) {
		hosts = append(hosts, addr.String())
	}

	if len(hosts) > 2 {
		return hosts[1 : len(hosts)-1]
	}
	return hosts
}

func incrementIP(ip net.IP) {
	for i := len(ip) - 1; i >= 0; i-- {
		ip[i]++
		if ip[i] != 0 {
			break
		}
	}
}
