package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// ConfigPathEnvVar overrides the configuration file location.
const ConfigPathEnvVar = "LEDBADGE_CONFIG"

// Env holds settings read from LEDBADGE_* environment variables.
// They take precedence over the config file and are overridden by flags.
type Env struct {
	LogLevel    string        `env:"LOG_LEVEL"`
	LogFile     string        `env:"LOG_FILE"`
	ConfigPath  string        `env:"CONFIG"`
	Device      string        `env:"DEVICE"`
	LibraryPath string        `env:"LIBRARY"`
	Timeout     time.Duration `env:"TIMEOUT"`
	AuthSecret  string        `env:"AUTH_SECRET"`
	ListenAddr  string        `env:"LISTEN_ADDR" envDefault:":8080"`
}

// LoadEnv reads the LEDBADGE_* environment variables.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.ParseWithOptions(&e, env.Options{Prefix: "LEDBADGE_"}); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// ResolveLibraryPath picks the saved-message database location: the
// environment first, then preferences, then the config directory.
func (r *Registry) ResolveLibraryPath(e Env) (string, error) {
	if e.LibraryPath != "" {
		return e.LibraryPath, nil
	}
	if r.Preferences != nil && r.Preferences.LibraryPath != "" {
		return r.Preferences.LibraryPath, nil
	}
	configPath, err := r.Path()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(configPath), "library.db"), nil
}

// ResolveTimeout picks the dispatch timeout for a profile.
// The environment wins over the profile; zero means no timeout.
func ResolveTimeout(e Env, p *Profile) time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	if p != nil {
		return time.Duration(p.Timeout)
	}
	return 0
}
