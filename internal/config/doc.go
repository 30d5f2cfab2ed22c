// Package config provides user configuration management for appinstall.
//
// This package manages a YAML-based configuration file that records the
// applications installed through the widget and the preferences that tune
// the flow (simulated latencies, per-step timeout, gate policy, URL opener).
// The configuration follows OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/appinstall/config.yaml or $HOME/.config/appinstall/config.yaml
//   - macOS: $HOME/.config/appinstall/config.yaml
//   - Windows: %LOCALAPPDATA%\appinstall\config.yaml
//
// # Usage Example
//
//	registry, err := config.LoadDefault()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.RecordInstall("https://music.youtube.com/", "YouTube Music", "https://music.youtube.com")
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// Registry methods lock an internal mutex, so installers and launchers running
// on different goroutines can share one Registry. Saves write a temporary file
// and rename it into place.
package config
