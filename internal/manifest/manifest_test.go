package manifest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestManifest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		m       Manifest
		wantErr string
	}{
		{
			name: "valid manifest",
			m:    Manifest{Name: "Notes", StartURL: "https://notes.example.com/app"},
		},
		{
			name: "short name only",
			m:    Manifest{ShortName: "N", StartURL: "https://notes.example.com"},
		},
		{
			name:    "missing name",
			m:       Manifest{StartURL: "https://notes.example.com"},
			wantErr: "no name",
		},
		{
			name:    "missing start url",
			m:       Manifest{Name: "Notes"},
			wantErr: "no start_url",
		},
		{
			name:    "non-http scheme",
			m:       Manifest{Name: "Notes", StartURL: "file:///tmp/index.html"},
			wantErr: "must be http or https",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestManifest_OriginAndDisplayName(t *testing.T) {
	m := Demo()

	if m.Origin() != "music.youtube.com" {
		t.Errorf("Origin() = %s, want music.youtube.com", m.Origin())
	}
	if m.DisplayName() != "YouTube Music" {
		t.Errorf("DisplayName() = %s, want YouTube Music", m.DisplayName())
	}

	m.Name = ""
	if m.DisplayName() != "YT Music" {
		t.Errorf("DisplayName() without name = %s, want YT Music", m.DisplayName())
	}

	m.ID = ""
	if m.AppID() != m.StartURL {
		t.Errorf("AppID() = %s, want start url %s", m.AppID(), m.StartURL)
	}
}

func TestStaticLoader(t *testing.T) {
	l := StaticLoader{Manifest: Demo()}

	m, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m == l.Manifest {
		t.Error("Load() should return a copy")
	}

	_, err = StaticLoader{}.Load(context.Background())
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Load() with nil manifest error = %v, want ErrInvalid", err)
	}
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "app.yaml")
	yamlDoc := "name: Notes\nstart_url: https://notes.example.com/\nicons:\n  - src: https://notes.example.com/icon.png\n"
	if err := os.WriteFile(yamlPath, []byte(yamlDoc), 0600); err != nil {
		t.Fatal(err)
	}

	jsonPath := filepath.Join(dir, "app.webmanifest")
	jsonDoc := `{"name":"Notes","short_name":"N","start_url":"https://notes.example.com/"}`
	if err := os.WriteFile(jsonPath, []byte(jsonDoc), 0600); err != nil {
		t.Fatal(err)
	}

	badPath := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badPath, []byte("name: Notes\n"), 0600); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{yamlPath, jsonPath} {
		m, err := FileLoader{Path: path}.Load(context.Background())
		if err != nil {
			t.Fatalf("Load(%s) error = %v", path, err)
		}
		if m.Name != "Notes" || m.Origin() != "notes.example.com" {
			t.Errorf("Load(%s) = %+v, want Notes at notes.example.com", path, m)
		}
	}

	_, err := FileLoader{Path: badPath}.Load(context.Background())
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Load(bad) error = %v, want ErrInvalid", err)
	}

	_, err = FileLoader{Path: filepath.Join(dir, "missing.yaml")}.Load(context.Background())
	if err == nil || errors.Is(err, ErrInvalid) {
		t.Errorf("Load(missing) error = %v, want read error", err)
	}
}

func TestHTTPLoader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/app/manifest.webmanifest":
			w.Header().Set("Content-Type", "application/manifest+json")
			_, _ = w.Write([]byte(`{"name":"Notes","start_url":"./start","icons":[{"src":"icon.png"}]}`))
		case "/nostart.webmanifest":
			_, _ = w.Write([]byte(`{"name":"Notes"}`))
		case "/broken.webmanifest":
			_, _ = w.Write([]byte(`{"start_url":"/"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	m, err := NewHTTPLoader(srv.URL + "/app/manifest.webmanifest").Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.StartURL != srv.URL+"/app/start" {
		t.Errorf("StartURL = %s, want %s/app/start", m.StartURL, srv.URL)
	}
	if m.Icons[0].Src != srv.URL+"/app/icon.png" {
		t.Errorf("Icon src = %s, want %s/app/icon.png", m.Icons[0].Src, srv.URL)
	}

	m, err = NewHTTPLoader(srv.URL + "/nostart.webmanifest").Load(context.Background())
	if err != nil {
		t.Fatalf("Load(nostart) error = %v", err)
	}
	if m.StartURL != srv.URL+"/" {
		t.Errorf("StartURL = %s, want origin root %s/", m.StartURL, srv.URL)
	}

	_, err = NewHTTPLoader(srv.URL + "/broken.webmanifest").Load(context.Background())
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Load(broken) error = %v, want ErrInvalid", err)
	}

	_, err = NewHTTPLoader(srv.URL + "/missing").Load(context.Background())
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("Load(missing) error = %v, want HTTP 404", err)
	}
}

func TestHTTPLoader_ZeroValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Notes","start_url":"/"}`))
	}))
	defer srv.Close()

	l := &HTTPLoader{URL: srv.URL + "/manifest.webmanifest"}
	m, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.Name != "Notes" {
		t.Errorf("Name = %q, want Notes", m.Name)
	}

	var timed HTTPLoader
	timed.SetTimeout(time.Second)
	timed.URL = srv.URL
	if _, err := timed.Load(context.Background()); err != nil {
		t.Errorf("Load() after SetTimeout error = %v", err)
	}
}

func TestHTTPLoader_ContextCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewHTTPLoader(srv.URL).Load(ctx)
	if err == nil {
		t.Fatal("Load() should fail when the context expires")
	}
}
