package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "appinstall") {
		t.Errorf("GetConfigDir() = %v, should contain 'appinstall'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") && os.Getenv("XDG_CONFIG_HOME") == "" {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if configDir != "/tmp/xdg/appinstall" {
		t.Errorf("GetConfigDir() = %v, want /tmp/xdg/appinstall", configDir)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Apps == nil {
		t.Error("NewRegistry().Apps should not be nil")
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if !reg.Preferences.AllowInstall {
		t.Error("NewRegistry().Preferences.AllowInstall should be true by default")
	}
	if got := reg.Preferences.ManifestDelay(); got != 2*time.Second {
		t.Errorf("ManifestDelay() = %v, want 2s", got)
	}
	if got := reg.Preferences.InstallDelay(); got != 3*time.Second {
		t.Errorf("InstallDelay() = %v, want 3s", got)
	}
	if got := reg.Preferences.OperationTimeout(); got != 30*time.Second {
		t.Errorf("OperationTimeout() = %v, want 30s", got)
	}
}

func TestRegistryRecordInstall(t *testing.T) {
	reg := NewRegistry()
	id := "https://music.youtube.com/"

	if reg.IsInstalled(id) {
		t.Fatal("IsInstalled() = true before install")
	}

	before := time.Now()
	app := reg.RecordInstall(id, "YouTube Music", "https://music.youtube.com")

	if !reg.IsInstalled(id) {
		t.Error("IsInstalled() = false after RecordInstall")
	}
	if app.Name != "YouTube Music" {
		t.Errorf("Name = %v, want YouTube Music", app.Name)
	}
	if app.InstalledAt.Before(before) {
		t.Errorf("InstalledAt = %v, should be after %v", app.InstalledAt, before)
	}

	// The returned copy must not alias registry state
	app.Name = "changed"
	if got := reg.GetApp(id).Name; got != "YouTube Music" {
		t.Errorf("GetApp().Name = %v, want YouTube Music", got)
	}
}

func TestRegistryRecordLaunch(t *testing.T) {
	reg := NewRegistry()
	reg.RecordInstall("app", "App", "https://app.example.com")

	reg.RecordLaunch("app", "https://app.example.com")
	reg.RecordLaunch("app", "https://app.example.com")

	app := reg.GetApp("app")
	if app.Launches != 2 {
		t.Errorf("Launches = %v, want 2", app.Launches)
	}
	if app.LastLaunched.IsZero() {
		t.Error("LastLaunched should be set")
	}

	// Unknown apps get an entry on first launch
	reg.RecordLaunch("other", "https://other.example.com")
	if !reg.IsInstalled("other") {
		t.Error("RecordLaunch should create a missing entry")
	}
}

func TestRegistryRemoveApp(t *testing.T) {
	reg := NewRegistry()
	reg.RecordInstall("app", "App", "https://app.example.com")

	if !reg.RemoveApp("app") {
		t.Error("RemoveApp() = false for existing app")
	}
	if reg.RemoveApp("app") {
		t.Error("RemoveApp() = true for missing app")
	}
	if len(reg.AppIDs()) != 0 {
		t.Errorf("AppIDs() = %v, want empty", reg.AppIDs())
	}
}

func TestRegistryFindByStartURL(t *testing.T) {
	r := NewRegistry()
	r.RecordInstall("yt", "YouTube Music", "https://music.youtube.com")

	tests := []struct {
		url    string
		wantID string
		wantOK bool
	}{
		{"https://music.youtube.com", "yt", true},
		{"https://music.youtube.com/", "yt", true},
		{"https://www.youtube.com", "", false},
	}
	for _, tt := range tests {
		id, ok := r.FindByStartURL(tt.url)
		if id != tt.wantID || ok != tt.wantOK {
			t.Errorf("FindByStartURL(%q) = %q, %v; want %q, %v", tt.url, id, ok, tt.wantID, tt.wantOK)
		}
	}
}

func TestRegistryConcurrentUse(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.RecordLaunch("app", "https://app.example.com")
		}()
	}
	wg.Wait()

	if got := reg.GetApp("app").Launches; got != 20 {
		t.Errorf("Launches = %v, want 20", got)
	}
}

func TestIsOriginBlocked(t *testing.T) {
	prefs := &Preferences{BlockedOrigins: []string{"blocked.example.com", " Ads.Example.org ", ""}}

	tests := []struct {
		origin string
		want   bool
	}{
		{"blocked.example.com", true},
		{"sub.blocked.example.com", true},
		{"ads.example.org", true},
		{"notblocked.example.com", false},
		{"example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := prefs.IsOriginBlocked(tt.origin); got != tt.want {
			t.Errorf("IsOriginBlocked(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reg.Path() != path {
		t.Errorf("Path() = %v, want %v", reg.Path(), path)
	}
	if len(reg.Apps) != 0 {
		t.Errorf("Apps = %v, want empty", reg.Apps)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	reg.RecordInstall("https://music.youtube.com/", "YouTube Music", "https://music.youtube.com")
	reg.RecordLaunch("https://music.youtube.com/", "https://music.youtube.com")
	reg.Preferences.BlockedOrigins = []string{"evil.example.com"}
	reg.Preferences.OpenCommand = "firefox"

	if err := reg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// No temporary file left behind
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file should not exist after save")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	app := loaded.GetApp("https://music.youtube.com/")
	if app == nil {
		t.Fatal("app missing after reload")
	}
	if app.Name != "YouTube Music" || app.Launches != 1 {
		t.Errorf("app = %+v", app)
	}
	if loaded.Preferences.OpenCommand != "firefox" {
		t.Errorf("OpenCommand = %v, want firefox", loaded.Preferences.OpenCommand)
	}
	if !loaded.Preferences.IsOriginBlocked("evil.example.com") {
		t.Error("blocked origins should survive a reload")
	}
}

func TestSaveWithoutPath(t *testing.T) {
	if err := NewRegistry().Save(); err == nil {
		t.Error("Save() without a path should fail")
	}
}

func TestSaveAs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	reg := NewRegistry()

	if err := reg.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
	if reg.Path() != path {
		t.Errorf("Path() = %v, want %v", reg.Path(), path)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "version: [1"},
		{"wrong version", "version: 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() should fail")
			}
		})
	}
}

func TestLoad_FillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0600); err != nil {
		t.Fatal(err)
	}

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reg.Apps == nil || reg.Preferences == nil {
		t.Fatal("Load() should initialize Apps and Preferences")
	}
	if reg.Preferences.InstallDelayMS != 3000 {
		t.Errorf("InstallDelayMS = %v, want 3000", reg.Preferences.InstallDelayMS)
	}
}
