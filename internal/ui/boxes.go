package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/appinstall/internal/flow"
	"github.com/muurk/appinstall/internal/manifest"
)

// Param is one key/value line of a header or result box
type Param struct {
	Key   string
	Value string
}

// RenderHeader renders a command header box
func RenderHeader(title, command string, params []Param, width int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	titleLine := HeaderTitleStyle.Render(strings.ToUpper(title))
	commandLine := HeaderCommandStyle.Render(command)
	content := lipgloss.JoinVertical(lipgloss.Left, titleLine, commandLine)

	if len(params) > 0 {
		dividerWidth := width - 6 // Account for border and padding
		divider := lipgloss.NewStyle().
			Foreground(PrimaryColor).
			PaddingLeft(2).
			Render(strings.Repeat("─", dividerWidth-2))

		paramLines := make([]string, 0, len(params))
		for _, p := range params {
			paramLines = append(paramLines, HeaderParamKeyStyle.Render(p.Key+":")+" "+HeaderParamValueStyle.Render(p.Value))
		}
		content = lipgloss.JoinVertical(lipgloss.Left, content, divider, strings.Join(paramLines, "\n"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2). // Account for border characters
		Render(content)
}

// RenderSuccessBox renders a success result box
func RenderSuccessBox(title string, details []Param, width int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	lines := []string{"", SuccessTitleStyle.Render(fmt.Sprintf("   %s  SUCCESS  ─  %s", SuccessMarker, title)), ""}
	for _, d := range details {
		lines = append(lines, ResultKeyStyle.Render("   "+d.Key+":")+" "+ResultValueStyle.Render(d.Value))
	}
	lines = append(lines, "")

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(SuccessColor).
		Width(width - 2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))
}

// RenderErrorBox renders an error result box with troubleshooting tips
func RenderErrorBox(title string, err error, troubleshooting []string, width int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	lines := []string{"", ErrorTitleStyle.Render(fmt.Sprintf("   %s  FAILED  ─  %s", FailureMarker, title)), ""}

	if err != nil {
		lines = append(lines, ErrorMessageStyle.Render("   Error: "+err.Error()), "")
	}

	if len(troubleshooting) > 0 {
		tips := []string{TroubleshootingTitleStyle.Render("Troubleshooting:"), ""}
		for _, tip := range troubleshooting {
			tips = append(tips, TroubleshootingItemStyle.Render("  • "+tip))
		}

		innerWidth := width - 12 // Indent within outer box
		if innerWidth < 40 {
			innerWidth = 40
		}
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(MutedColor).
			Width(innerWidth).
			Padding(0, 1).
			MarginLeft(3).
			Render(strings.Join(tips, "\n"))
		lines = append(lines, box, "")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(ErrorColor).
		Width(width - 2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))
}

// RenderNotice renders a dismissible notice
func RenderNotice(message string) string {
	return NoticeStyle.Render("⚠  " + message)
}

// Troubleshooting returns tips for a flow failure
func Troubleshooting(err error) []string {
	var httpErr *manifest.HTTPError
	if errors.As(err, &httpErr) {
		return []string{
			fmt.Sprintf("The server answered HTTP %d for the manifest", httpErr.StatusCode),
			"Check the manifest URL passed with --url",
		}
	}

	var opErr *flow.OperationError
	if !errors.As(err, &opErr) {
		return nil
	}

	switch opErr.Type {
	case flow.ErrTypeTimeout:
		return []string{
			"The step did not finish within the operation timeout",
			"Raise operation_timeout_seconds in the config file or pass --timeout",
		}
	case flow.ErrTypeNetwork:
		return []string{
			"Check your network connection",
			"Verify the manifest host is reachable",
		}
	case flow.ErrTypeInvalidManifest:
		return []string{
			"The manifest needs a name and an http(s) start_url",
			"Validate the descriptor with: appinstall show",
		}
	case flow.ErrTypeManifest:
		return []string{"Verify the manifest file or URL exists"}
	case flow.ErrTypeInstall:
		return []string{"Check that the config directory is writable"}
	default:
		return nil
	}
}
