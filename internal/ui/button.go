package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/appinstall/internal/flow"
)

// RenderButton draws the install control for a payload.
// Full variants render the title above a dimmer subtitle; busy variants
// prefix the spinner frame when one is given.
func RenderButton(p flow.Payload, focused bool, spinner string) string {
	style := ButtonStyle(p.Variant)
	if focused && p.Enabled {
		style = style.Border(FocusedBorder())
	}

	text := p.Text()
	if p.Busy && spinner != "" {
		text = spinner + " " + text
	}

	content := text
	if p.Subtitle != "" {
		sub := SubtitleStyle.Render(p.Subtitle)
		if !p.Enabled {
			sub = StepPendingStyle.Render(p.Subtitle)
		}
		content = lipgloss.JoinVertical(lipgloss.Center, text, sub)
	}

	return style.Render(content)
}

// StateMarker returns the marker drawn next to a state in step output
func StateMarker(state flow.State) string {
	switch state {
	case flow.StateLoadingManifest, flow.StateInstalling:
		return StepRunningStyle.Render(StepMarkerRunning)
	case flow.StateReadyToInstall, flow.StateInstalled:
		return StepCompleteStyle.Render(StepMarkerComplete)
	case flow.StateFailed:
		return ErrorTitleStyle.Render(FailureMarker)
	case flow.StateNotAllowed:
		return StepPendingStyle.Render(BlockedMarker)
	default:
		return StepPendingStyle.Render(StepMarkerPending)
	}
}
