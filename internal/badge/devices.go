package badge

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/muurk/ledbadge/internal/config"
	"github.com/muurk/ledbadge/internal/discovery"
	"github.com/muurk/ledbadge/internal/logging"
	"github.com/muurk/ledbadge/internal/sink"
	"go.uber.org/zap"
)

// Device is one display that a sink can be opened for.
type Device struct {
	Name    string
	Kind    sink.Kind
	Address string
	// Source names where the device was found: "config", "mdns" or "serial".
	Source string
	// Default is set for the registry's default_device.
	Default bool
	Details string
}

// Target converts the device into a sink target.
func (d Device) Target() sink.Target {
	return sink.Target{Name: d.Name, Kind: d.Kind, Address: d.Address}
}

func (d Device) String() string {
	if d.Address == "" {
		return fmt.Sprintf("%s (%s)", d.Name, d.Kind)
	}
	return fmt.Sprintf("%s (%s %s)", d.Name, d.Kind, d.Address)
}

// DeviceSource lists devices from one place.
type DeviceSource interface {
	Name() string
	Devices(ctx context.Context) ([]Device, error)
}

// ListDevices merges devices from every source, in source order.
// A device whose kind and address were already listed is skipped, so a
// configured serial badge is not repeated by the port scan. A failing
// source is logged and skipped unless every source fails.
func ListDevices(ctx context.Context, sources ...DeviceSource) ([]Device, error) {
	var (
		all     []Device
		lastErr error
		failed  int
	)
	seen := make(map[string]bool)

	for _, src := range sources {
		devices, err := src.Devices(ctx)
		if err != nil {
			logging.Warn("Device source failed",
				zap.String("source", src.Name()),
				zap.Error(err))
			lastErr = err
			failed++
			continue
		}
		for _, d := range devices {
			key := string(d.Kind) + "|" + d.Address
			if d.Address != "" && seen[key] {
				continue
			}
			seen[key] = true
			all = append(all, d)
		}
	}

	if len(sources) > 0 && failed == len(sources) {
		return nil, fmt.Errorf("listing devices: %w", lastErr)
	}
	return all, nil
}

// RegistrySource lists the profiles of a configuration registry.
type RegistrySource struct {
	Registry *config.Registry
}

// Name implements DeviceSource.
func (RegistrySource) Name() string { return "config" }

// Devices implements DeviceSource.
func (s RegistrySource) Devices(ctx context.Context) ([]Device, error) {
	if s.Registry == nil {
		return nil, nil
	}
	def := ""
	if s.Registry.Preferences != nil {
		def = s.Registry.Preferences.DefaultDevice
	}

	devices := make([]Device, 0, len(s.Registry.Devices))
	for _, name := range s.Registry.DeviceNames() {
		p := s.Registry.Devices[name]
		devices = append(devices, Device{
			Name:    name,
			Kind:    sink.Kind(p.Sink),
			Address: p.Address,
			Source:  "config",
			Default: name == def,
			Details: p.Description,
		})
	}
	return devices, nil
}

// Scanner is the part of discovery.Scanner that MDNSSource needs.
type Scanner interface {
	ScanForDevicesWithContext(ctx context.Context) ([]*discovery.Device, error)
}

// MDNSSource lists display bridges advertised on the local network.
type MDNSSource struct {
	Scanner Scanner
}

// Name implements DeviceSource.
func (MDNSSource) Name() string { return "mdns" }

// Devices implements DeviceSource.
func (s MDNSSource) Devices(ctx context.Context) ([]Device, error) {
	scanner := s.Scanner
	if scanner == nil {
		scanner = discovery.NewScanner()
	}
	found, err := scanner.ScanForDevicesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	devices := make([]Device, 0, len(found))
	for _, d := range found {
		details := d.Hostname
		if n := d.MaxTextLength(); n > 0 {
			details += ", max " + strconv.Itoa(n) + " chars"
		}
		if d.RequiresAuth() {
			details += ", auth"
		}
		devices = append(devices, Device{
			Name:    d.Instance,
			Kind:    sink.KindWebSocket,
			Address: d.WebSocketURL(),
			Source:  "mdns",
			Details: details,
		})
	}
	return devices, nil
}

// SerialSource lists local serial ports that may have a badge attached.
type SerialSource struct {
	// List overrides discovery.ListSerialPorts.
	List func() []string
}

// Name implements DeviceSource.
func (SerialSource) Name() string { return "serial" }

// Devices implements DeviceSource.
func (s SerialSource) Devices(ctx context.Context) ([]Device, error) {
	list := s.List
	if list == nil {
		list = discovery.ListSerialPorts
	}
	ports := list()
	devices := make([]Device, 0, len(ports))
	for _, port := range ports {
		devices = append(devices, Device{
			Name:    port,
			Kind:    sink.KindSerial,
			Address: port,
			Source:  "serial",
		})
	}
	return devices, nil
}

// TargetFromProfile converts a configured profile into a sink target.
func TargetFromProfile(name string, p *config.Profile) sink.Target {
	return sink.Target{
		Name:          name,
		Kind:          sink.Kind(p.Sink),
		Address:       p.Address,
		Baud:          p.Baud,
		MaxTextLength: p.MaxTextLength,
		Charset:       p.Charset,
		AuthToken:     p.AuthToken,
		Timeout:       time.Duration(p.Timeout),
	}
}

// ResolveTarget turns a device name into a sink target. The name may be a
// profile in reg, a serial device path or a ws:// URL. An empty name picks
// the default device, or the console preview when none is configured.
// The profile is returned when one was used.
func ResolveTarget(reg *config.Registry, device string) (sink.Target, *config.Profile, error) {
	if reg == nil {
		reg = config.NewRegistry()
	}

	if device == "" && (reg.Preferences == nil || reg.Preferences.DefaultDevice == "") {
		return sink.Target{Name: "console", Kind: sink.KindConsole}, nil, nil
	}

	name, p, err := reg.Resolve(device)
	if err == nil {
		return TargetFromProfile(name, p), p, nil
	}

	switch {
	case strings.HasPrefix(device, "ws://"), strings.HasPrefix(device, "wss://"):
		return sink.Target{Name: device, Kind: sink.KindWebSocket, Address: device}, nil, nil
	case strings.HasPrefix(device, "/dev/"), strings.HasPrefix(strings.ToUpper(device), "COM"):
		return sink.Target{Name: device, Kind: sink.KindSerial, Address: device}, nil, nil
	}
	return sink.Target{}, nil, err
}
