package manifest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"gopkg.in/yaml.v3"
)

// DefaultTimeout is the default HTTP request timeout for HTTPLoader
const DefaultTimeout = 10 * time.Second

// ErrInvalid is wrapped by every error caused by a manifest that was
// retrieved but failed validation
var ErrInvalid = errors.New("invalid manifest")

// Loader retrieves a manifest
type Loader interface {
	Load(ctx context.Context) (*Manifest, error)
}

// StaticLoader returns a fixed manifest
type StaticLoader struct {
	Manifest *Manifest
}

// Load implements Loader
func (l StaticLoader) Load(ctx context.Context) (*Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.Manifest == nil {
		return nil, fmt.Errorf("%w: no manifest configured", ErrInvalid)
	}
	if err := l.Manifest.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	m := *l.Manifest
	return &m, nil
}

// FileLoader reads a YAML or JSON descriptor from disk
type FileLoader struct {
	Path string
}

// Load implements Loader
func (l FileLoader) Load(ctx context.Context) (*Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	// YAML is a superset of JSON, so one decoder handles both formats
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalid, l.Path, err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return &m, nil
}

// HTTPLoader fetches a web app manifest over HTTP(S). The zero value with
// URL set uses DefaultTimeout.
type HTTPLoader struct {
	// URL is the manifest location
	URL string

	client *resty.Client
}

// NewHTTPLoader creates a loader with the default timeout
func NewHTTPLoader(manifestURL string) *HTTPLoader {
	l := &HTTPLoader{URL: manifestURL}
	l.httpClient()
	return l
}

func (l *HTTPLoader) httpClient() *resty.Client {
	if l.client == nil {
		l.client = resty.New().
			SetTimeout(DefaultTimeout).
			SetHeader("Accept", "application/manifest+json, application/json")
	}
	return l.client
}

// SetTimeout sets the HTTP request timeout
func (l *HTTPLoader) SetTimeout(timeout time.Duration) {
	l.httpClient().SetTimeout(timeout)
}

// Load implements Loader
func (l *HTTPLoader) Load(ctx context.Context) (*Manifest, error) {
	base, err := url.Parse(l.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest URL %q: %w", l.URL, err)
	}

	var m Manifest
	resp, err := l.httpClient().R().
		SetContext(ctx).
		SetResult(&m).
		ForceContentType("application/json").
		Get(l.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manifest: %w", err)
	}
	if resp.IsError() {
		return nil, &HTTPError{URL: l.URL, StatusCode: resp.StatusCode()}
	}

	// start_url and scope are relative to the manifest URL
	m.StartURL = resolve(base, m.StartURL)
	if m.Scope != "" {
		m.Scope = resolve(base, m.Scope)
	}
	for i := range m.Icons {
		m.Icons[i].Src = resolve(base, m.Icons[i].Src)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return &m, nil
}

// HTTPError is returned when the manifest server answers with a non-2xx status
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("manifest request to %s failed with HTTP %d", e.URL, e.StatusCode)
}

func resolve(base *url.URL, ref string) string {
	if ref == "" {
		// Missing start_url defaults to the manifest's own origin
		return (&url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/"}).String()
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
