package manifest

import (
	"fmt"
	"net/url"
	"strings"
)

// Icon is a single entry of a manifest's icon list
type Icon struct {
	Src   string `json:"src" yaml:"src"`
	Sizes string `json:"sizes,omitempty" yaml:"sizes,omitempty"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
}

// Manifest describes an installable application
type Manifest struct {
	// ID uniquely identifies the application (defaults to StartURL)
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Name is the full application name (e.g., "YouTube Music")
	Name string `json:"name" yaml:"name"`

	// ShortName is used when Name is empty
	ShortName string `json:"short_name,omitempty" yaml:"short_name,omitempty"`

	// StartURL is the canonical URL opened when the application is launched
	StartURL string `json:"start_url" yaml:"start_url"`

	// Scope limits the navigation scope of the installed application
	Scope string `json:"scope,omitempty" yaml:"scope,omitempty"`

	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Icons       []Icon `json:"icons,omitempty" yaml:"icons,omitempty"`
}

// DisplayName returns the name shown to the user
func (m *Manifest) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.ShortName
}

// Origin returns the host of the start URL (e.g., "music.youtube.com").
// Returns an empty string if the start URL cannot be parsed.
func (m *Manifest) Origin() string {
	u, err := url.Parse(m.StartURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// AppID returns the explicit ID, falling back to the start URL
func (m *Manifest) AppID() string {
	if m.ID != "" {
		return m.ID
	}
	return m.StartURL
}

// Validate checks that the manifest can drive an installation
func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.DisplayName()) == "" {
		return fmt.Errorf("manifest has no name or short_name")
	}
	if m.StartURL == "" {
		return fmt.Errorf("manifest has no start_url")
	}
	u, err := url.Parse(m.StartURL)
	if err != nil {
		return fmt.Errorf("invalid start_url %q: %w", m.StartURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("start_url %q must be http or https", m.StartURL)
	}
	if u.Host == "" {
		return fmt.Errorf("start_url %q has no host", m.StartURL)
	}
	return nil
}

// Demo returns the sample application used when no descriptor is supplied
func Demo() *Manifest {
	return &Manifest{
		ID:        "https://music.youtube.com/",
		Name:      "YouTube Music",
		ShortName: "YT Music",
		StartURL:  "https://music.youtube.com",
		Icons: []Icon{
			{Src: "https://music.youtube.com/img/favicon_144.png", Sizes: "144x144", Type: "image/png"},
		},
	}
}
