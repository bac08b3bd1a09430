package badge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/muurk/ledbadge/internal/config"
	"github.com/muurk/ledbadge/internal/discovery"
	"github.com/muurk/ledbadge/internal/sink"
)

type fakeScanner struct {
	devices []*discovery.Device
	err     error
}

func (f fakeScanner) ScanForDevicesWithContext(ctx context.Context) ([]*discovery.Device, error) {
	return f.devices, f.err
}

type failingSource struct{}

func (failingSource) Name() string { return "broken" }

func (failingSource) Devices(ctx context.Context) ([]Device, error) {
	return nil, errors.New("no multicast interface")
}

func testRegistry(t *testing.T) *config.Registry {
	t.Helper()
	reg := config.NewRegistry()
	if err := reg.SetDevice("desk", &config.Profile{Sink: "serial", Address: "/dev/ttyUSB0"}); err != nil {
		t.Fatal(err)
	}
	if err := reg.SetDevice("preview", &config.Profile{Sink: "console", Description: "terminal preview"}); err != nil {
		t.Fatal(err)
	}
	reg.Preferences.DefaultDevice = "desk"
	return reg
}

func TestListDevices(t *testing.T) {
	scanner := fakeScanner{devices: []*discovery.Device{{
		Instance: "shopfront",
		Hostname: "shopfront.local.",
		IP:       "192.168.1.40",
		Port:     8080,
		Metadata: map[string]string{"max_text": "64", "auth": "1"},
	}}}
	ports := func() []string { return []string{"/dev/ttyUSB0", "/dev/ttyACM0"} }

	devices, err := ListDevices(context.Background(),
		RegistrySource{Registry: testRegistry(t)},
		MDNSSource{Scanner: scanner},
		SerialSource{List: ports},
	)
	if err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}

	want := []struct {
		name   string
		kind   sink.Kind
		source string
	}{
		{"desk", sink.KindSerial, "config"},
		{"preview", sink.KindConsole, "config"},
		{"shopfront", sink.KindWebSocket, "mdns"},
		{"/dev/ttyACM0", sink.KindSerial, "serial"},
	}
	if len(devices) != len(want) {
		t.Fatalf("ListDevices() returned %d devices, want %d: %v", len(devices), len(want), devices)
	}
	for i, w := range want {
		d := devices[i]
		if d.Name != w.name || d.Kind != w.kind || d.Source != w.source {
			t.Errorf("device[%d] = %+v, want %s/%s/%s", i, d, w.name, w.kind, w.source)
		}
	}

	if !devices[0].Default || devices[1].Default {
		t.Error("only desk should be marked default")
	}
	if got := devices[2].Address; got != "ws://192.168.1.40:8080/bridge" {
		t.Errorf("mdns address = %q", got)
	}
	if got := devices[2].Details; got != "shopfront.local., max 64 chars, auth" {
		t.Errorf("mdns details = %q", got)
	}
}

func TestListDevicesSkipsFailingSource(t *testing.T) {
	devices, err := ListDevices(context.Background(),
		failingSource{},
		SerialSource{List: func() []string { return []string{"/dev/ttyUSB3"} }},
	)
	if err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}
	if len(devices) != 1 || devices[0].Address != "/dev/ttyUSB3" {
		t.Errorf("ListDevices() = %v", devices)
	}
}

func TestListDevicesAllSourcesFail(t *testing.T) {
	_, err := ListDevices(context.Background(),
		failingSource{},
		MDNSSource{Scanner: fakeScanner{err: errors.New("boom")}},
	)
	if err == nil {
		t.Fatal("ListDevices() error = nil, want error")
	}
}

func TestDeviceTarget(t *testing.T) {
	d := Device{Name: "desk", Kind: sink.KindSerial, Address: "/dev/ttyUSB0"}
	target := d.Target()
	if target.Name != "desk" || target.Kind != sink.KindSerial || target.Address != "/dev/ttyUSB0" {
		t.Errorf("Target() = %+v", target)
	}
	if got := d.String(); got != "desk (serial /dev/ttyUSB0)" {
		t.Errorf("String() = %q", got)
	}
}

func TestResolveTarget(t *testing.T) {
	reg := testRegistry(t)
	reg.Devices["bridge"] = &config.Profile{
		Sink:      "websocket",
		Address:   "ws://10.0.0.5:8080/bridge",
		AuthToken: "tok",
		Timeout:   config.Duration(3 * time.Second),
	}

	tests := []struct {
		name    string
		reg     *config.Registry
		device  string
		kind    sink.Kind
		address string
		profile bool
		wantErr bool
	}{
		{name: "default device", reg: reg, device: "", kind: sink.KindSerial, address: "/dev/ttyUSB0", profile: true},
		{name: "named profile", reg: reg, device: "bridge", kind: sink.KindWebSocket, address: "ws://10.0.0.5:8080/bridge", profile: true},
		{name: "serial path", reg: reg, device: "/dev/ttyACM1", kind: sink.KindSerial, address: "/dev/ttyACM1"},
		{name: "websocket url", reg: reg, device: "wss://badge.example/bridge", kind: sink.KindWebSocket, address: "wss://badge.example/bridge"},
		{name: "nothing configured", reg: config.NewRegistry(), device: "", kind: sink.KindConsole},
		{name: "nil registry", reg: nil, device: "", kind: sink.KindConsole},
		{name: "unknown name", reg: reg, device: "attic", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, p, err := ResolveTarget(tt.reg, tt.device)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveTarget() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if target.Kind != tt.kind || target.Address != tt.address {
				t.Errorf("target = %+v, want %s %q", target, tt.kind, tt.address)
			}
			if (p != nil) != tt.profile {
				t.Errorf("profile = %v, want profile %v", p, tt.profile)
			}
		})
	}

	target, _, _ := ResolveTarget(reg, "bridge")
	if target.AuthToken != "tok" || target.Timeout != 3*time.Second {
		t.Errorf("profile settings not carried: %+v", target)
	}
}
