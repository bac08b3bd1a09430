package display

import "math"

// Speed is a discrete device speed tier.
type Speed uint8

const (
	// MinSpeed is the slowest tier.
	MinSpeed Speed = 0
	// MaxSpeed is the fastest tier.
	MaxSpeed Speed = 7
)

// parseSpeed accepts only integral values in [MinSpeed, MaxSpeed].
func parseSpeed(raw float64) (Speed, bool) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, false
	}
	if raw != math.Trunc(raw) {
		return 0, false
	}
	if raw < float64(MinSpeed) || raw > float64(MaxSpeed) {
		return 0, false
	}
	return Speed(raw), true
}
