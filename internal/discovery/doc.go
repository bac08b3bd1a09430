// Package discovery finds displays that ledbadge can write to.
//
// Network display bridges (a ledbadge server, or any service speaking the
// JSON bridge protocol) advertise themselves over multicast DNS with the
// "_ledbadge._tcp" service type. Locally attached badges show up as USB
// serial ports.
//
// # Discovery Process
//
// mDNS discovery works as follows:
//  1. Broadcasts mDNS queries for "_ledbadge._tcp" on the local network
//  2. Listens for service advertisements until the scan timeout
//  3. Collects each bridge's address, port and TXT metadata
//  4. Returns the distinct bridges seen, keyed by instance name
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	devices, err := scanner.ScanForDevicesWithContext(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, device := range devices {
//	    fmt.Printf("Found: %s -> %s\n", device.Instance, device.WebSocketURL())
//	}
//
//	for _, port := range discovery.ListSerialPorts() {
//	    fmt.Println("Serial:", port)
//	}
//
// # TXT Records
//
// Bridges describe themselves with TXT records:
//   - path: WebSocket path (default "/bridge")
//   - max_text: maximum characters per message
//   - charset: "latin1", "ascii" or absent for any UTF-8
//   - auth: present when the bridge requires a bearer token
//
// # Advertising
//
// Advertise registers a bridge so that other machines can find it; the
// server package uses it when started with --advertise.
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Devices must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// This package is safe for concurrent use. Multiple discovery sessions can run
// simultaneously without interference.
package discovery
