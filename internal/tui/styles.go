package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/appinstall/internal/ui"
	"github.com/muurk/appinstall/internal/version"
)

// Application branding constants
const (
	AppName = "APP INSTALL"
)

// AppVersion returns the application version from the centralized version package
func AppVersion() string {
	return version.Version
}

var (
	// HeaderStyle frames the application banner
	HeaderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.PrimaryColor).
			Padding(0, 2).
			Bold(true)

	// VersionStyle is for the version next to the banner
	VersionStyle = lipgloss.NewStyle().
			Foreground(ui.MutedColor)

	// StatusStyle is for the status line under the control
	StatusStyle = lipgloss.NewStyle().
			Foreground(ui.MutedColor).
			PaddingLeft(2)

	// FailureStyle is for the failure reason shown in StateFailed
	FailureStyle = lipgloss.NewStyle().
			Foreground(ui.ErrorColor).
			PaddingLeft(2)

	// BodyStyle indents the control and notice
	BodyStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	// HelpStyle wraps the help line
	HelpStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			PaddingTop(1)
)
