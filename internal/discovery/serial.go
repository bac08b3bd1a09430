package discovery

import (
	"path/filepath"
	"runtime"
	"sort"
)

// serialPatterns are the device nodes USB serial badges show up as
var serialPatterns = map[string][]string{
	"linux":  {"/dev/ttyUSB*", "/dev/ttyACM*"},
	"darwin": {"/dev/cu.usbserial*", "/dev/cu.usbmodem*", "/dev/cu.wchusbserial*"},
}

// ListSerialPorts returns candidate serial ports for a badge, sorted.
// Unsupported platforms return an empty list.
func ListSerialPorts() []string {
	return listSerialPorts(serialPatterns[runtime.GOOS])
}

func listSerialPorts(patterns []string) []string {
	var ports []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		ports = append(ports, matches...)
	}
	sort.Strings(ports)
	return ports
}
