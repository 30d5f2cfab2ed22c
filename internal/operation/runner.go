package operation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/appinstall/internal/config"
	"github.com/muurk/appinstall/internal/flow"
	"github.com/muurk/appinstall/internal/logging"
	"github.com/muurk/appinstall/internal/manifest"
)

// Installer performs the installation of a loaded manifest
type Installer interface {
	Install(ctx context.Context, m *manifest.Manifest) error
}

// InstallerFunc adapts a function to Installer
type InstallerFunc func(ctx context.Context, m *manifest.Manifest) error

// Install implements Installer
func (f InstallerFunc) Install(ctx context.Context, m *manifest.Manifest) error {
	return f(ctx, m)
}

// Runner performs real I/O for both steps on background goroutines
type Runner struct {
	Post      Poster
	Loader    manifest.Loader
	Installer Installer
}

// LoadManifest implements flow.Operations
func (r *Runner) LoadManifest(ctx context.Context, done func(*manifest.Manifest, error)) flow.Pending {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		defer cancel()

		var (
			m   *manifest.Manifest
			err error
		)
		if r.Loader == nil {
			err = fmt.Errorf("no manifest source configured")
		} else {
			m, err = r.Loader.Load(ctx)
		}

		if !deliverable(ctx) {
			logging.Debug("Manifest load cancelled")
			return
		}
		if err == nil && ctx.Err() != nil {
			// The deadline passed while the loader was returning
			m, err = nil, ctx.Err()
		}
		r.Post.post(func() { done(m, err) })
	}()

	return cancelHandle(cancel)
}

// Install implements flow.Operations
func (r *Runner) Install(ctx context.Context, m *manifest.Manifest, done func(error)) flow.Pending {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		defer cancel()

		var err error
		if r.Installer != nil {
			err = r.Installer.Install(ctx, m)
		}

		if !deliverable(ctx) {
			logging.Debug("Install cancelled")
			return
		}
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
		r.Post.post(func() { done(err) })
	}()

	return cancelHandle(cancel)
}

// RegistryInstaller records installed apps in the config registry
type RegistryInstaller struct {
	Registry *config.Registry

	// Delay is waited before recording (optional)
	Delay time.Duration
}

// Install implements Installer
func (i *RegistryInstaller) Install(ctx context.Context, m *manifest.Manifest) error {
	if m == nil {
		return fmt.Errorf("%w: nothing to install", manifest.ErrInvalid)
	}
	if i.Registry == nil {
		return fmt.Errorf("no registry configured")
	}

	if i.Delay > 0 {
		timer := time.NewTimer(i.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	app := i.Registry.RecordInstall(m.AppID(), m.DisplayName(), m.StartURL)
	if i.Registry.Path() != "" {
		if err := i.Registry.Save(); err != nil {
			return fmt.Errorf("failed to record installation: %w", err)
		}
	}

	logging.Info("Application installed",
		zap.String("app", app.Name),
		zap.String("start_url", app.StartURL),
	)
	return nil
}
