package operation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/appinstall/internal/flow"
	"github.com/muurk/appinstall/internal/logging"
	"github.com/muurk/appinstall/internal/manifest"
)

const (
	// DefaultManifestDelay is the simulated manifest fetch latency
	DefaultManifestDelay = 2000 * time.Millisecond

	// DefaultInstallDelay is the simulated installation latency
	DefaultInstallDelay = 3000 * time.Millisecond
)

// ErrSimulated is the cause of every injected failure
var ErrSimulated = errors.New("simulated failure")

// Simulated resolves each step after a fixed delay
type Simulated struct {
	Post Poster

	// App is returned by LoadManifest (default: manifest.Demo())
	App *manifest.Manifest

	ManifestDelay time.Duration
	InstallDelay  time.Duration

	// Scale multiplies both delays (0 means 1)
	Scale float64

	// Fail makes the named step complete with ErrSimulated
	Fail flow.Op

	// OnInstalled runs on the owning goroutine before a successful install
	// completes (optional)
	OnInstalled func(m *manifest.Manifest)
}

// NewSimulated creates a Simulated with the default delays and demo app
func NewSimulated(post Poster) *Simulated {
	return &Simulated{
		Post:          post,
		App:           manifest.Demo(),
		ManifestDelay: DefaultManifestDelay,
		InstallDelay:  DefaultInstallDelay,
	}
}

// LoadManifest implements flow.Operations
func (s *Simulated) LoadManifest(ctx context.Context, done func(*manifest.Manifest, error)) flow.Pending {
	return s.after(ctx, s.ManifestDelay, func(err error) {
		if err == nil && s.Fail == flow.OpManifest {
			err = fmt.Errorf("%w: manifest fetch", ErrSimulated)
		}
		if err != nil {
			done(nil, err)
			return
		}

		app := s.App
		if app == nil {
			app = manifest.Demo()
		}
		m := *app
		done(&m, nil)
	})
}

// Install implements flow.Operations
func (s *Simulated) Install(ctx context.Context, m *manifest.Manifest, done func(error)) flow.Pending {
	return s.after(ctx, s.InstallDelay, func(err error) {
		if err == nil && s.Fail == flow.OpInstall {
			err = fmt.Errorf("%w: install", ErrSimulated)
		}
		if err == nil && s.OnInstalled != nil && m != nil {
			s.OnInstalled(m)
		}
		done(err)
	})
}

func (s *Simulated) scaled(d time.Duration) time.Duration {
	if s.Scale <= 0 {
		return d
	}
	return time.Duration(float64(d) * s.Scale)
}

// after calls fire with nil once the delay elapses, or with the deadline
// error if ctx expires first
func (s *Simulated) after(ctx context.Context, delay time.Duration, fire func(error)) flow.Pending {
	ctx, cancel := context.WithCancel(ctx)
	delay = s.scaled(delay)

	go func() {
		defer cancel()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
			s.Post.post(func() { fire(nil) })
		case <-ctx.Done():
			if !deliverable(ctx) {
				logging.Debug("Simulated operation cancelled")
				return
			}
			err := ctx.Err()
			logging.Debug("Simulated operation timed out", zap.Duration("delay", delay))
			s.Post.post(func() { fire(err) })
		}
	}()

	return cancelHandle(cancel)
}
