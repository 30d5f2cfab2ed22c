package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize_SilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")
	t.Setenv(LogFileEnvVar, "")

	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger should be silent when no level is configured")
	}
}

func TestInitializeWithOutput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appinstall.log")

	if err := InitializeWithOutput("debug", path); err != nil {
		t.Fatalf("InitializeWithOutput() error = %v", err)
	}
	defer SetLogger(nil)

	Info("hello", zap.String("k", "v"))
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log file = %q, want it to contain the message", string(data))
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogTransition(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := zap.New(core)

	LogTransition(l, "initial", "loading-manifest", "activate")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["from"] != "initial" || fields["to"] != "loading-manifest" || fields["event"] != "activate" {
		t.Errorf("fields = %v", fields)
	}
}

func TestGetLogger_ConcurrentUse(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	defer SetLogger(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			Debug("tick")
		}()
		go func() {
			defer wg.Done()
			SetLogger(zap.New(core))
		}()
	}
	wg.Wait()

	SetLogger(zap.New(core))
	Debug("after")
	if logs.FilterMessage("after").Len() != 1 {
		t.Error("logger set concurrently should receive later entries")
	}
}

func TestSetLogger_NilRestoresSilentMode(t *testing.T) {
	SetLogger(nil)
	if GetLogger() == nil {
		t.Fatal("GetLogger() = nil after SetLogger(nil)")
	}
	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger should be silent after SetLogger(nil)")
	}
	Sync()
}
