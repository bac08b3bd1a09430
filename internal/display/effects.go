package display

import "strings"

// Effects is a set of optional rendering effects applied to a message.
type Effects uint8

// Individual effects. The bit positions are used on the wire.
const (
	EffectFlashing Effects = 1 << iota
	EffectBorder
	EffectInverted
)

var effectNames = []struct {
	name   string
	effect Effects
}{
	{"flashing", EffectFlashing},
	{"border", EffectBorder},
	{"inverted", EffectInverted},
}

// ParseEffect maps an exact effect token to its flag.
func ParseEffect(token string) (Effects, bool) {
	for _, e := range effectNames {
		if e.name == token {
			return e.effect, true
		}
	}
	return 0, false
}

// EffectNames returns the accepted effect tokens.
func EffectNames() []string {
	names := make([]string, len(effectNames))
	for i, e := range effectNames {
		names[i] = e.name
	}
	return names
}

// Has reports whether every flag in other is set.
func (e Effects) Has(other Effects) bool {
	return e&other == other
}

// Names returns the set tokens in canonical order.
func (e Effects) Names() []string {
	var names []string
	for _, fx := range effectNames {
		if e.Has(fx.effect) {
			names = append(names, fx.name)
		}
	}
	return names
}

// String returns the effects joined by "+", or "none".
func (e Effects) String() string {
	names := e.Names()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "+")
}
