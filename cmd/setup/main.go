// Command setup is an interactive first-run wizard: pick a transport, scan
// for devices, and save the resulting printer profile.
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tillpoint/print-engine/internal/config"
	"github.com/tillpoint/print-engine/internal/discovery"
	"github.com/tillpoint/print-engine/internal/profile"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")).MarginBottom(1)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F8FAFC")).Background(lipgloss.Color("#334155")).Bold(true).PaddingLeft(2)
	itemStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#CBD5E1")).PaddingLeft(2)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

type step int

const (
	stepTransport step = iota
	stepScan
	stepDevice
	stepDialect
	stepName
	stepDone
)

type devicesMsg struct {
	devices []discovery.Device
}

var transports = []profile.Transport{
	profile.TransportUSB,
	profile.TransportNetwork,
	profile.TransportBluetooth,
	profile.TransportSerial,
	profile.TransportFallback,
}

var dialects = []profile.Dialect{
	profile.DialectThermalESCPOS,
	profile.DialectStandardPCL,
	profile.DialectDotMatrix,
}

type model struct {
	store   *profile.Store
	scanner *discovery.Scanner

	step    step
	cursor  int
	spinner spinner.Model
	name    textinput.Model

	transport profile.Transport
	devices   []discovery.Device
	device    *discovery.Device
	dialect   profile.Dialect

	saved *profile.Profile
	err   error
}

func newModel(store *profile.Store, scanner *discovery.Scanner) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))

	name := textinput.New()
	name.Placeholder = "Front Counter"
	name.CharLimit = 64

	return model{
		store:   store,
		scanner: scanner,
		spinner: s,
		name:    name,
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) scanCmd() tea.Cmd {
	t := m.transport
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return devicesMsg{devices: m.scanner.Scan(ctx, t)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case devicesMsg:
		m.devices = msg.devices
		m.cursor = 0
		m.step = stepDevice
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if msg.String() == "q" && m.step != stepName {
			return m, tea.Quit
		}
		return m.updateKey(msg)
	}

	return m, nil
}

func (m model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.step {
	case stepTransport:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(transports)-1 {
				m.cursor++
			}
		case "enter":
			m.transport = transports[m.cursor]
			m.cursor = 0
			if m.transport == profile.TransportFallback {
				m.step = stepDialect
				return m, nil
			}
			m.step = stepScan
			return m, m.scanCmd()
		}

	case stepDevice:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.devices)-1 {
				m.cursor++
			}
		case "r":
			m.step = stepScan
			return m, m.scanCmd()
		case "esc":
			m.step = stepTransport
			m.cursor = 0
		case "enter":
			if len(m.devices) == 0 {
				return m, nil
			}
			m.device = &m.devices[m.cursor]
			m.cursor = 0
			m.step = stepDialect
		}

	case stepDialect:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(dialects)-1 {
				m.cursor++
			}
		case "enter":
			m.dialect = dialects[m.cursor]
			m.step = stepName
			m.name.Focus()
			return m, textinput.Blink
		}

	case stepName:
		switch msg.String() {
		case "esc":
			m.step = stepDialect
			m.name.Blur()
		case "enter":
			if m.name.Value() == "" {
				return m, nil
			}
			m.saved, m.err = m.save()
			m.step = stepDone
		default:
			var cmd tea.Cmd
			m.name, cmd = m.name.Update(msg)
			return m, cmd
		}

	case stepDone:
		if msg.String() == "enter" {
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m model) save() (*profile.Profile, error) {
	p := profile.Profile{
		Name:      m.name.Value(),
		Transport: m.transport,
		Dialect:   m.dialect,
	}

	if m.device != nil {
		if err := applyDevice(&p, *m.device); err != nil {
			return nil, err
		}
	}

	return m.store.Create(p)
}

// applyDevice maps a discovery hit onto the profile's transport parameters
func applyDevice(p *profile.Profile, d discovery.Device) error {
	switch d.Transport {
	case profile.TransportUSB:
		var vid, pid uint16
		if _, err := fmt.Sscanf(d.Address, "%04X:%04X", &vid, &pid); err != nil {
			return fmt.Errorf("bad usb address %q: %w", d.Address, err)
		}
		p.VID, p.PID = vid, pid
	case profile.TransportNetwork:
		host, portStr, err := net.SplitHostPort(d.Address)
		if err != nil {
			return fmt.Errorf("bad network address %q: %w", d.Address, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("bad network port %q: %w", portStr, err)
		}
		p.Host, p.Port = host, port
	case profile.TransportBluetooth:
		p.BLEAddress = d.Address
	case profile.TransportSerial:
		p.Device = d.Address
		p.BaudRate = profile.DefaultBaudRate
	}
	return nil
}

func (m model) View() string {
	switch m.step {
	case stepTransport:
		s := titleStyle.Render("How is the printer connected?") + "\n"
		for i, t := range transports {
			label := string(t)
			if t == profile.TransportFallback {
				label = "fallback (print document, no device)"
			}
			if i == m.cursor {
				s += selectedStyle.Render(label) + "\n"
			} else {
				s += itemStyle.Render(label) + "\n"
			}
		}
		s += "\n" + mutedStyle.Render("up/down to move, enter to select, q to quit")
		return s

	case stepScan:
		return titleStyle.Render("Scanning...") + "\n" +
			fmt.Sprintf("%s looking for %s printers", m.spinner.View(), m.transport)

	case stepDevice:
		s := titleStyle.Render("Select a device") + "\n"
		if len(m.devices) == 0 {
			s += mutedStyle.Render("no devices found") + "\n"
			s += "\n" + mutedStyle.Render("r to rescan, esc to go back, q to quit")
			return s
		}
		for i, d := range m.devices {
			label := fmt.Sprintf("%s  %s", d.DisplayName, mutedStyle.Render(d.Address))
			if i == m.cursor {
				s += selectedStyle.Render(label) + "\n"
			} else {
				s += itemStyle.Render(label) + "\n"
			}
		}
		s += "\n" + mutedStyle.Render("enter to select, r to rescan, esc to go back")
		return s

	case stepDialect:
		s := titleStyle.Render("Which command set does the printer speak?") + "\n"
		for i, d := range dialects {
			if i == m.cursor {
				s += selectedStyle.Render(string(d)) + "\n"
			} else {
				s += itemStyle.Render(string(d)) + "\n"
			}
		}
		s += "\n" + mutedStyle.Render("thermal_escpos covers most receipt printers")
		return s

	case stepName:
		return titleStyle.Render("Name this printer") + "\n" +
			m.name.View() + "\n\n" +
			mutedStyle.Render("enter to save, esc to go back")

	case stepDone:
		if m.err != nil {
			return errorStyle.Render(fmt.Sprintf("failed to save profile: %v", m.err)) + "\n\n" +
				mutedStyle.Render("enter to exit")
		}
		s := successStyle.Render(fmt.Sprintf("Saved profile %q", m.saved.Name)) + "\n"
		if m.saved.Default {
			s += mutedStyle.Render("it is now the default printer") + "\n"
		}
		return s + "\n" + mutedStyle.Render("enter to exit")
	}

	return ""
}

func main() {
	cfg := config.Load()

	if err := os.MkdirAll(cfg.Server.DataDir, 0o755); err != nil {
		log.Fatalf("failed to create data dir %s: %v", cfg.Server.DataDir, err)
	}

	store, err := profile.NewStore(cfg.ProfilePath())
	if err != nil {
		log.Fatalf("failed to open profile store: %v", err)
	}

	scanner := discovery.NewScanner(discovery.Config{
		Subnets:      cfg.Discovery.Subnets,
		Ports:        cfg.Discovery.Ports,
		ProbeTimeout: cfg.Discovery.ProbeTimeout,
		BLEWindow:    cfg.Discovery.BLEWindow,
	})

	if _, err := tea.NewProgram(newModel(store, scanner)).Run(); err != nil {
		log.Fatalf("setup failed: %v", err)
	}
}
