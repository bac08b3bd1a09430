//go:build windows

package sink

import "errors"

// OpenSerial is not available on Windows; use a WebSocket bridge instead.
func OpenSerial(path string, baud int, limits Limits) (*Serial, error) {
	return nil, NewDeviceError(path, "serial ports are not supported on windows", errors.New("unsupported platform"))
}
