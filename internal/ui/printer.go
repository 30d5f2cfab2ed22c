package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/muurk/appinstall/internal/flow"
)

// Printer writes run-once output for non-interactive commands.
// It implements flow.Renderer and flow.Notifier so a controller can drive
// it directly.
type Printer struct {
	out   io.Writer
	width int

	// ShowButton also draws the control after each transition
	ShowButton bool
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// SetWidth overrides the detected terminal width
func (p *Printer) SetWidth(width int) *Printer {
	p.width = width
	return p
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params []Param) {
	p.Println(RenderHeader(title, command, params, p.width))
	p.Newline()
}

// PrintTransition prints one line for a newly entered state
func (p *Printer) PrintTransition(state flow.State, payload flow.Payload) {
	line := fmt.Sprintf("  %s %-17s %s", StateMarker(state), state, payload.Text())
	if payload.Subtitle != "" {
		line += "  " + StepNoteStyle.Render("("+payload.Subtitle+")")
	}
	p.Println(line)

	if p.ShowButton {
		p.Println(RenderButton(payload, false, ""))
	}
}

// PrintSteps prints the step list and progress bar for a state
func (p *Printer) PrintSteps(state flow.State, failedOp flow.Op) {
	steps := StepsFor(state, failedOp)
	p.Println(RenderProgressBar(steps, p.width))
	p.Newline()
	p.Println(RenderSteps(steps))
	p.Newline()
}

// PrintNotice prints a dismissible notice
func (p *Printer) PrintNotice(message string) {
	p.Println(RenderNotice(message))
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details []Param) {
	p.Println(RenderSuccessBox(title, details, p.width))
	p.Newline()
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	p.Println(RenderErrorBox(title, err, troubleshooting, p.width))
	p.Newline()
}

// Render implements flow.Renderer
func (p *Printer) Render(state flow.State, payload flow.Payload) {
	p.PrintTransition(state, payload)
}

// Notify implements flow.Notifier
func (p *Printer) Notify(n flow.Notice) {
	p.PrintNotice(n.Message)
}
