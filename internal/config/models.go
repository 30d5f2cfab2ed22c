package config

import (
	"strings"
	"sync"
	"time"
)

// CurrentVersion is the registry file format version
const CurrentVersion = 1

// Registry represents the entire user configuration file.
// It records installed applications and application preferences.
// A Registry is safe for concurrent use.
type Registry struct {
	Version     int             `yaml:"version"`
	Apps        map[string]*App `yaml:"apps,omitempty"` // Keyed by manifest app id
	Preferences *Preferences    `yaml:"preferences,omitempty"`

	mu   sync.Mutex
	path string
}

// App records one installed application.
type App struct {
	Name         string    `yaml:"name"`
	StartURL     string    `yaml:"start_url"`
	InstalledAt  time.Time `yaml:"installed_at"`
	LastLaunched time.Time `yaml:"last_launched,omitempty"`
	Launches     int       `yaml:"launches,omitempty"`
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	ManifestDelayMS         int      `yaml:"manifest_delay_ms"`         // Simulated manifest fetch latency
	InstallDelayMS          int      `yaml:"install_delay_ms"`          // Simulated install latency
	OperationTimeoutSeconds int      `yaml:"operation_timeout_seconds"` // 0 disables the per-step timeout
	AllowInstall            bool     `yaml:"allow_install"`             // Platform gate master switch
	BlockedOrigins          []string `yaml:"blocked_origins,omitempty"` // Origins the gate refuses
	OpenCommand             string   `yaml:"open_command,omitempty"`    // Overrides the platform URL opener
	DiscoverTimeout         int      `yaml:"discover_timeout"`          // mDNS discovery timeout in seconds
}

// DefaultPreferences returns the preferences used when none are configured.
func DefaultPreferences() *Preferences {
	return &Preferences{
		ManifestDelayMS:         2000,
		InstallDelayMS:          3000,
		OperationTimeoutSeconds: 30,
		AllowInstall:            true,
		DiscoverTimeout:         5,
	}
}

// ManifestDelay returns the simulated manifest latency as a duration.
func (p *Preferences) ManifestDelay() time.Duration {
	return time.Duration(p.ManifestDelayMS) * time.Millisecond
}

// InstallDelay returns the simulated install latency as a duration.
func (p *Preferences) InstallDelay() time.Duration {
	return time.Duration(p.InstallDelayMS) * time.Millisecond
}

// OperationTimeout returns the per-step timeout (0 = none).
func (p *Preferences) OperationTimeout() time.Duration {
	return time.Duration(p.OperationTimeoutSeconds) * time.Second
}

// IsOriginBlocked reports whether origin matches a blocked entry.
// Entries match the exact host or any subdomain of it.
func (p *Preferences) IsOriginBlocked(origin string) bool {
	origin = strings.ToLower(origin)
	for _, blocked := range p.BlockedOrigins {
		blocked = strings.ToLower(strings.TrimSpace(blocked))
		if blocked == "" {
			continue
		}
		if origin == blocked || strings.HasSuffix(origin, "."+blocked) {
			return true
		}
	}
	return false
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     CurrentVersion,
		Apps:        make(map[string]*App),
		Preferences: DefaultPreferences(),
	}
}

// Path returns the file the registry is loaded from and saved to.
func (r *Registry) Path() string {
	return r.path
}

// GetApp returns a copy of the app entry, or nil if it is not installed.
func (r *Registry) GetApp(id string) *App {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.Apps[id]
	if !ok {
		return nil
	}
	cp := *app
	return &cp
}

// IsInstalled reports whether the app has been installed.
func (r *Registry) IsInstalled(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.Apps[id]
	return ok
}

// RecordInstall creates or refreshes the entry of an installed app.
func (r *Registry) RecordInstall(id, name, startURL string) *App {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Apps == nil {
		r.Apps = make(map[string]*App)
	}

	app, exists := r.Apps[id]
	if !exists {
		app = &App{}
		r.Apps[id] = app
	}
	app.Name = name
	app.StartURL = startURL
	app.InstalledAt = time.Now()

	cp := *app
	return &cp
}

// RecordLaunch updates the launch statistics of an app.
// Launching an app that was never recorded creates its entry.
func (r *Registry) RecordLaunch(id, startURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Apps == nil {
		r.Apps = make(map[string]*App)
	}

	app, exists := r.Apps[id]
	if !exists {
		app = &App{StartURL: startURL, InstalledAt: time.Now()}
		r.Apps[id] = app
	}
	app.LastLaunched = time.Now()
	app.Launches++
}

// FindByStartURL returns the id of the app launched at startURL.
// Trailing slashes are ignored.
func (r *Registry) FindByStartURL(startURL string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := strings.TrimRight(startURL, "/")
	for id, app := range r.Apps {
		if strings.TrimRight(app.StartURL, "/") == want {
			return id, true
		}
	}
	return "", false
}

// RemoveApp deletes an app entry. Returns false if it did not exist.
func (r *Registry) RemoveApp(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.Apps[id]; !ok {
		return false
	}
	delete(r.Apps, id)
	return true
}

// AppIDs returns the ids of all recorded apps.
func (r *Registry) AppIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.Apps))
	for id := range r.Apps {
		ids = append(ids, id)
	}
	return ids
}
