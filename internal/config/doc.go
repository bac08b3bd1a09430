// Package config provides user configuration management for ledbadge.
//
// This package manages a YAML-based configuration file holding display
// profiles (how to reach each badge or bridge) and application preferences.
// The configuration follows OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/ledbadge/config.yaml or $HOME/.config/ledbadge/config.yaml
//   - macOS: $HOME/.config/ledbadge/config.yaml
//   - Windows: %LOCALAPPDATA%\ledbadge\config.yaml
//
// LEDBADGE_CONFIG points to a different file.
//
// # File Format
//
//	version: 1
//	devices:
//	  desk:
//	    sink: serial
//	    address: /dev/ttyUSB0
//	    baud: 115200
//	    charset: latin1
//	    timeout: 3s
//	  hallway:
//	    sink: websocket
//	    address: ws://hallway-sign.local:8080/bridge
//	    max_text_length: 64
//	preferences:
//	  default_device: desk
//	  discover_timeout: 5
//
// # Environment
//
// LoadEnv reads LEDBADGE_* variables (LOG_LEVEL, LOG_FILE, CONFIG, DEVICE,
// LIBRARY, TIMEOUT, AUTH_SECRET, LISTEN_ADDR). Environment values take
// precedence over the file; command-line flags take precedence over both.
//
// # Security
//
// The API auth secret is never written to the configuration file.
//
// # Usage Example
//
//	path, err := config.GetConfigPath()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry, err := config.LoadRegistryFrom(path)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	name, profile, err := registry.Resolve(flagDevice)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.MarkUsed(name)
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// Save serializes file access with a package mutex and writes atomically
// through a temporary file. The Registry value itself is not safe for
// concurrent mutation.
package config
