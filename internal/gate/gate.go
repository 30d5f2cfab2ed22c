// Package gate answers whether installation is currently permitted.
//
// A gate is consulted by the flow controller through RefreshGate; a refusal
// moves the widget into its terminal not-allowed state.
package gate

import (
	"context"

	"github.com/muurk/appinstall/internal/config"
)

// Static always gives the same answer
type Static bool

// QueryInstallAllowed implements flow.Gate
func (s Static) QueryInstallAllowed(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return bool(s), nil
}

// Policy applies the user's install preferences to one origin
type Policy struct {
	AllowInstall   bool
	BlockedOrigins []string
	Origin         string
}

// FromPreferences builds a Policy for origin
func FromPreferences(prefs *config.Preferences, origin string) *Policy {
	if prefs == nil {
		prefs = config.DefaultPreferences()
	}
	return &Policy{
		AllowInstall:   prefs.AllowInstall,
		BlockedOrigins: prefs.BlockedOrigins,
		Origin:         origin,
	}
}

// QueryInstallAllowed implements flow.Gate
func (p *Policy) QueryInstallAllowed(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !p.AllowInstall {
		return false, nil
	}
	prefs := config.Preferences{BlockedOrigins: p.BlockedOrigins}
	return !prefs.IsOriginBlocked(p.Origin), nil
}
