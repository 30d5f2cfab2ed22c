package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/muurk/appinstall/internal/flow"
)

// Color palette
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - installed, checkmarks
	ErrorColor   = lipgloss.Color("#FF5555") // Red - failures
	WarningColor = lipgloss.Color("#FFA500") // Orange - busy, notices
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info, disabled
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
	InstallColor = lipgloss.Color("#1A73E8") // Blue - install actions
)

// Layout constants
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
	ButtonWidth      = 36  // Width of the rendered control
)

// Shared styles
var (
	// HeaderTitleStyle is for the main command title (e.g., "INSTALL WIDGET")
	HeaderTitleStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Bold(true).
				PaddingLeft(2)

	// HeaderCommandStyle is for the command path (e.g., "appinstall run")
	HeaderCommandStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				PaddingLeft(2)

	// HeaderParamKeyStyle is for parameter keys (e.g., "Manifest:")
	HeaderParamKeyStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				PaddingLeft(2)

	// HeaderParamValueStyle is for parameter values
	HeaderParamValueStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	// StepCompleteStyle is for completed step text
	StepCompleteStyle = lipgloss.NewStyle().
				Foreground(SuccessColor)

	// StepRunningStyle is for currently running step text
	StepRunningStyle = lipgloss.NewStyle().
				Foreground(WarningColor)

	// StepPendingStyle is for pending step text
	StepPendingStyle = lipgloss.NewStyle().
				Foreground(MutedColor)

	// StepNoteStyle is for optional notes in parentheses
	StepNoteStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	// SuccessTitleStyle is for the success result title
	SuccessTitleStyle = lipgloss.NewStyle().
				Foreground(SuccessColor).
				Bold(true)

	// ErrorTitleStyle is for the error result title
	ErrorTitleStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// ErrorMessageStyle is for error message text
	ErrorMessageStyle = lipgloss.NewStyle().
				Foreground(ErrorColor)

	// NoticeStyle is for dismissible notices
	NoticeStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(WarningColor).
			Padding(0, 1)

	// ResultKeyStyle is for result detail keys
	ResultKeyStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(15)

	// ResultValueStyle is for result detail values
	ResultValueStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	// TroubleshootingTitleStyle is for "Troubleshooting:" headers
	TroubleshootingTitleStyle = lipgloss.NewStyle().
					Foreground(MutedColor).
					Bold(true)

	// TroubleshootingItemStyle is for troubleshooting bullet points
	TroubleshootingItemStyle = lipgloss.NewStyle().
					Foreground(MutedColor)

	// SubtitleStyle is for the second line of full buttons ("from ...")
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#DDDDDD"))
)

// Step status markers
const (
	StepMarkerComplete = "✓"
	StepMarkerRunning  = "●"
	StepMarkerPending  = "·"
	SuccessMarker      = "✓"
	FailureMarker      = "✗"
	BlockedMarker      = "⊘"
)

// ButtonStyle returns the box style of the control for a variant
func ButtonStyle(variant flow.Variant) lipgloss.Style {
	base := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(ButtonWidth).
		Align(lipgloss.Center).
		Padding(0, 1).
		Bold(true)

	switch variant {
	case flow.VariantInstall, flow.VariantInstallFull:
		return base.BorderForeground(InstallColor).Foreground(TextColor).Background(InstallColor)
	case flow.VariantInstallBusy, flow.VariantInstallFullBusy:
		return base.BorderForeground(WarningColor).Foreground(WarningColor)
	case flow.VariantInstalled:
		return base.BorderForeground(SuccessColor).Foreground(TextColor).Background(SuccessColor)
	case flow.VariantFailed:
		return base.BorderForeground(ErrorColor).Foreground(ErrorColor)
	case flow.VariantNotAllowed:
		return base.BorderForeground(MutedColor).Foreground(MutedColor).Bold(false)
	default:
		return base.BorderForeground(MutedColor)
	}
}

// FocusedBorder returns the border used when the control holds focus
func FocusedBorder() lipgloss.Border {
	return lipgloss.DoubleBorder()
}

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// IsTerminal reports whether stdout is attached to a terminal
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
