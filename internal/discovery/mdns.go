package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/appinstall/internal/logging"
)

const (
	// ServiceType is the mDNS service type browsed for manifests
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// ManifestKey is the TXT record key that marks an installable app
	ManifestKey = "manifest"

	// DefaultScanTimeout is the default timeout for discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is used when an entry advertises no port
	DefaultPort = 80
)

// Scanner handles mDNS discovery of installable applications
type Scanner struct {
	// Timeout is the maximum time to wait for advertisements
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan discovers all advertised manifests on the local network
func (s *Scanner) Scan(ctx context.Context) ([]*Source, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	var (
		mu      sync.Mutex
		sources []*Source
		seen    = make(map[string]bool)
		drained = make(chan struct{})
	)
	go func() {
		defer close(drained)
		for entry := range entries {
			source := parseServiceEntry(entry)
			if source == nil {
				continue
			}
			key := source.ManifestURL()
			mu.Lock()
			if !seen[key] {
				seen[key] = true
				sources = append(sources, source)
				logging.Debug("Discovered manifest source",
					zap.String("instance", source.Instance),
					zap.String("manifest", key),
				)
			}
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()

	// The resolver closes entries once the browse context ends
	select {
	case <-drained:
	case <-time.After(time.Second):
	}

	mu.Lock()
	defer mu.Unlock()
	return append([]*Source(nil), sources...), nil
}

// WaitForSource waits for a source whose instance name matches name
func (s *Scanner) WaitForSource(ctx context.Context, name string) (*Source, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan *Source, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			source := parseServiceEntry(entry)
			if source != nil && strings.EqualFold(source.Instance, name) {
				select {
				case found <- source:
				default:
				}
				cancel()
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case source := <-found:
		return source, nil
	case <-ctx.Done():
		select {
		case source := <-found:
			return source, nil
		default:
		}
		return nil, fmt.Errorf("source %q not found within timeout", name)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Source.
// Returns nil if the entry does not advertise a manifest.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Source {
	metadata := parseTXT(entry.Text)
	manifestPath, ok := metadata[ManifestKey]
	if !ok || manifestPath == "" {
		return nil
	}

	// Prefer IPv4
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	return &Source{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		ManifestPath: manifestPath,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// parseTXT splits "key=value" TXT records; keys without a value map to ""
func parseTXT(records []string) map[string]string {
	metadata := make(map[string]string, len(records))
	for _, txt := range records {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}
	return metadata
}

// QuickScan performs a scan with the given timeout
func QuickScan(ctx context.Context, timeout time.Duration) ([]*Source, error) {
	scanner := NewScanner()
	if timeout > 0 {
		scanner.Timeout = timeout
	}
	return scanner.Scan(ctx)
}
