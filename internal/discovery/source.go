package discovery

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Source is an application advertising an installable manifest on the network
type Source struct {
	// Instance is the mDNS service instance name (e.g., "Kitchen Notes")
	Instance string

	// Hostname is the mDNS hostname (e.g., "notes.local.")
	Hostname string

	// IP is the preferred address (IPv4 when available)
	IP string

	// Port is the HTTP port
	Port int

	// ManifestPath is the manifest location advertised in the TXT record.
	// It is either a path on the host or an absolute URL.
	ManifestPath string

	// Metadata contains all mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the source was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the source
func (s *Source) String() string {
	return fmt.Sprintf("%s (%s) at %s", s.Instance, s.Hostname, net.JoinHostPort(s.IP, strconv.Itoa(s.Port)))
}

// BaseURL returns the HTTP base URL of the advertising host
func (s *Source) BaseURL() string {
	scheme := "http"
	if s.GetMetadata("tls") == "1" || s.Port == 443 {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, net.JoinHostPort(s.IP, strconv.Itoa(s.Port)))
}

// ManifestURL returns the absolute URL of the advertised manifest
func (s *Source) ManifestURL() string {
	if u, err := url.Parse(s.ManifestPath); err == nil && u.IsAbs() {
		return s.ManifestPath
	}
	path := s.ManifestPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.BaseURL() + path
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (s *Source) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}
