package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// DefaultBridgePath is the WebSocket path used when a bridge does not
// advertise one.
const DefaultBridgePath = "/bridge"

// Device represents a display bridge discovered on the network
type Device struct {
	// Instance is the advertised service instance name (e.g., "hallway-sign")
	Instance string

	// Hostname is the mDNS hostname (e.g., "hallway-sign.local.")
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.4.16")
	IP string

	// Port is the bridge's HTTP port
	Port int

	// Metadata contains the mDNS TXT record data
	// Common fields: "path=/bridge", "max_text=255", "charset=latin1", "auth=jwt"
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("Display bridge %s (%s) at %s", d.Instance, d.Hostname, net.JoinHostPort(d.IP, strconv.Itoa(d.Port)))
}

// WebSocketURL returns the bridge endpoint for a WebSocket sink
func (d *Device) WebSocketURL() string {
	path := d.GetMetadata("path")
	if path == "" {
		path = DefaultBridgePath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("ws://%s%s", net.JoinHostPort(d.IP, strconv.Itoa(d.Port)), path)
}

// MaxTextLength returns the advertised text limit, or 0 when none is given
func (d *Device) MaxTextLength() int {
	n, err := strconv.Atoi(d.GetMetadata("max_text"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Charset returns the advertised charset name ("" for any UTF-8)
func (d *Device) Charset() string {
	return d.GetMetadata("charset")
}

// RequiresAuth reports whether the bridge expects a bearer token
func (d *Device) RequiresAuth() bool {
	return d.GetMetadata("auth") != ""
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
