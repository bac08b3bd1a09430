//go:build !windows

package sink

import (
	"github.com/pkg/term"
	"go.uber.org/zap"

	"github.com/muurk/ledbadge/internal/logging"
)

// OpenSerial opens a serial port in raw mode at the given baud rate.
func OpenSerial(path string, baud int, limits Limits) (*Serial, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}

	t, err := term.Open(path, term.Speed(baud), term.RawMode)
	if err != nil {
		return nil, NewDeviceError(path, "failed to open serial port", err)
	}
	if err := t.SetReadTimeout(DefaultReadTimeout); err != nil {
		_ = t.Close()
		return nil, NewDeviceError(path, "failed to set read timeout", err)
	}
	// Drop anything the badge sent before we connected
	if err := t.Flush(); err != nil {
		logging.Warn("Failed to flush serial port", zap.String("device", path), zap.Error(err))
	}

	logging.Info("Serial port opened",
		zap.String("device", path),
		zap.Int("baud", baud),
	)
	return NewSerialWith(t, path, limits), nil
}
