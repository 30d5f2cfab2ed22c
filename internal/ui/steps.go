package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/appinstall/internal/flow"
)

// StepStatus represents the current state of a step
type StepStatus int

const (
	StepPending  StepStatus = iota // Not yet started
	StepRunning                    // Currently executing
	StepComplete                   // Successfully completed
	StepFailed                     // Failed
	StepBlocked                    // Refused by the platform gate
)

// Step represents a single step of the install flow
type Step struct {
	Number  int        // Step number (1-based)
	Name    string     // Step description
	Status  StepStatus // Current status
	Message string     // Optional status message (e.g., "music.youtube.com")
}

// Flow step names in order
const (
	StepNameManifest = "Fetch app manifest"
	StepNameInstall  = "Install application"
	StepNameLaunch   = "Ready to launch"
)

// StepsFor derives the step list shown for a state.
// failedOp names the step that failed when state is StateFailed.
func StepsFor(state flow.State, failedOp flow.Op) []Step {
	steps := []Step{
		{Number: 1, Name: StepNameManifest},
		{Number: 2, Name: StepNameInstall},
		{Number: 3, Name: StepNameLaunch},
	}

	set := func(statuses ...StepStatus) {
		for i, s := range statuses {
			steps[i].Status = s
		}
	}

	switch state {
	case flow.StateLoadingManifest:
		set(StepRunning)
	case flow.StateReadyToInstall:
		set(StepComplete)
	case flow.StateInstalling:
		set(StepComplete, StepRunning)
	case flow.StateInstalled:
		set(StepComplete, StepComplete, StepComplete)
	case flow.StateFailed:
		if failedOp == flow.OpInstall {
			set(StepComplete, StepFailed)
		} else {
			set(StepFailed)
		}
	case flow.StateNotAllowed:
		set(StepBlocked, StepBlocked, StepBlocked)
	}
	return steps
}

// Percent returns the fraction of completed steps (0.0 - 1.0)
func Percent(steps []Step) float64 {
	if len(steps) == 0 {
		return 0
	}
	completed := 0
	for _, s := range steps {
		if s.Status == StepComplete {
			completed++
		}
	}
	return float64(completed) / float64(len(steps))
}

// RenderProgressBar renders a gradient bar for the completed share of steps
func RenderProgressBar(steps []Step, width int) string {
	barWidth := width - 20
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth), progress.WithoutPercentage())

	pct := Percent(steps)
	return lipgloss.NewStyle().
		PaddingLeft(2).
		Render(fmt.Sprintf("%s  %3.0f%%", bar.ViewAs(pct), pct*100))
}

// RenderSteps renders the step list, one line per step
func RenderSteps(steps []Step) string {
	lines := make([]string, 0, len(steps))
	for _, step := range steps {
		lines = append(lines, renderStepLine(step, len(steps)))
	}
	return strings.Join(lines, "\n")
}

func renderStepLine(step Step, total int) string {
	var (
		marker    string
		nameStyle lipgloss.Style
	)

	switch step.Status {
	case StepComplete:
		marker, nameStyle = StepMarkerComplete, StepCompleteStyle
	case StepRunning:
		marker, nameStyle = StepMarkerRunning, StepRunningStyle
	case StepFailed:
		marker, nameStyle = FailureMarker, ErrorTitleStyle
	case StepBlocked:
		marker, nameStyle = BlockedMarker, StepPendingStyle
	default:
		marker, nameStyle = StepMarkerPending, StepPendingStyle
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("  [%d/%d] ", step.Number, total))
	b.WriteString(nameStyle.Render(step.Name))

	// Align markers on one column
	padding := 30 - lipgloss.Width(step.Name)
	if padding < 1 {
		padding = 1
	}
	b.WriteString(strings.Repeat(" ", padding))
	b.WriteString(nameStyle.Render(marker))

	if step.Message != "" {
		b.WriteString("  ")
		b.WriteString(StepNoteStyle.Render("(" + step.Message + ")"))
	}

	return b.String()
}
