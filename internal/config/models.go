package config

import (
	"fmt"
	"sort"
	"time"
)

// Registry represents the entire user configuration file.
// This stores display profiles and application preferences.
type Registry struct {
	Version     int                 `yaml:"version"`
	Devices     map[string]*Profile `yaml:"devices,omitempty"` // Keyed by profile name
	Preferences *Preferences        `yaml:"preferences,omitempty"`

	// path is where the registry was loaded from and will be saved to
	path string
}

// Profile describes one display and how to reach it.
type Profile struct {
	Sink          string    `yaml:"sink"`                      // serial, websocket, console or memory
	Address       string    `yaml:"address,omitempty"`         // Serial device path or ws:// URL
	Baud          int       `yaml:"baud,omitempty"`            // Serial baud rate
	MaxTextLength int       `yaml:"max_text_length,omitempty"` // Characters; 0 uses the sink's own limit
	Charset       string    `yaml:"charset,omitempty"`         // latin1, ascii or empty for any UTF-8
	Timeout       Duration  `yaml:"timeout,omitempty"`         // Dispatch timeout
	AuthToken     string    `yaml:"auth_token,omitempty"`      // Bearer token for a websocket bridge
	Description   string    `yaml:"description,omitempty"`     // Free-form note shown by 'devices'
	LastUsed      time.Time `yaml:"last_used,omitempty"`
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultDevice   string `yaml:"default_device,omitempty"` // Profile used when --device is not given
	DiscoverTimeout int    `yaml:"discover_timeout"`         // mDNS discovery timeout in seconds
	LibraryPath     string `yaml:"library_path,omitempty"`   // Saved-message database; empty uses the config dir
}

// Sink kinds accepted in a profile
var SinkKinds = []string{"serial", "websocket", "console", "memory"}

// Duration is a time.Duration written as a Go duration string ("3s").
type Duration time.Duration

// MarshalYAML writes the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Devices:     make(map[string]*Profile),
		Preferences: defaultPreferences(),
	}
}

func defaultPreferences() *Preferences {
	return &Preferences{
		DiscoverTimeout: 5,
	}
}

// GetDevice retrieves a profile by name.
// Returns nil if the profile doesn't exist in the registry.
func (r *Registry) GetDevice(name string) *Profile {
	return r.Devices[name]
}

// SetDevice validates and stores a profile under name.
func (r *Registry) SetDevice(name string, p *Profile) error {
	if name == "" {
		return fmt.Errorf("profile name is required")
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("profile %q: %w", name, err)
	}
	if r.Devices == nil {
		r.Devices = make(map[string]*Profile)
	}
	r.Devices[name] = p
	return nil
}

// RemoveDevice deletes a profile. Clears the default if it pointed there.
func (r *Registry) RemoveDevice(name string) bool {
	if _, ok := r.Devices[name]; !ok {
		return false
	}
	delete(r.Devices, name)
	if r.Preferences != nil && r.Preferences.DefaultDevice == name {
		r.Preferences.DefaultDevice = ""
	}
	return true
}

// SetDefault makes name the device used when none is given.
func (r *Registry) SetDefault(name string) {
	if r.Preferences == nil {
		r.Preferences = defaultPreferences()
	}
	r.Preferences.DefaultDevice = name
}

// DeviceNames returns profile names in sorted order.
func (r *Registry) DeviceNames() []string {
	names := make([]string, 0, len(r.Devices))
	for name := range r.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve picks the profile to use: name when given, otherwise the
// default device. Returns the chosen name too.
func (r *Registry) Resolve(name string) (string, *Profile, error) {
	if name == "" && r.Preferences != nil {
		name = r.Preferences.DefaultDevice
	}
	if name == "" {
		return "", nil, fmt.Errorf("no device given and no default_device configured")
	}
	p := r.Devices[name]
	if p == nil {
		return "", nil, fmt.Errorf("unknown device %q (configured: %v)", name, r.DeviceNames())
	}
	return name, p, nil
}

// MarkUsed records that a profile was just written to.
func (r *Registry) MarkUsed(name string) {
	if p := r.Devices[name]; p != nil {
		p.LastUsed = time.Now()
	}
}

// Validate checks a profile's fields.
func (p *Profile) Validate() error {
	switch p.Sink {
	case "serial", "websocket":
		if p.Address == "" {
			return fmt.Errorf("%s sink requires an address", p.Sink)
		}
	case "console", "memory":
	default:
		return fmt.Errorf("unknown sink %q (want one of %v)", p.Sink, SinkKinds)
	}
	if p.Baud < 0 {
		return fmt.Errorf("baud must not be negative")
	}
	if p.MaxTextLength < 0 {
		return fmt.Errorf("max_text_length must not be negative")
	}
	switch p.Charset {
	case "", "latin1", "iso-8859-1", "ISO-8859-1", "ascii", "ASCII":
	default:
		return fmt.Errorf("unknown charset %q", p.Charset)
	}
	return nil
}
