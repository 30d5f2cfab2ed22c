package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/muurk/appinstall/internal/flow"
	"github.com/muurk/appinstall/internal/logging"
	"github.com/muurk/appinstall/internal/manifest"
	"github.com/muurk/appinstall/internal/operation"
	"github.com/muurk/appinstall/internal/ui"
)

// noticeTimeout is how long a notice stays up unless dismissed
const noticeTimeout = 4 * time.Second

// Messages
type (
	// completionMsg carries an operation completion onto the event loop
	completionMsg struct{ fn func() }

	gateCheckMsg struct{}

	noticeExpiredMsg struct{ id int }
)

// Config describes the widget to host
type Config struct {
	// App is shown before the manifest is loaded (optional)
	App *manifest.Manifest

	// Operations builds the flow operations around the program's poster
	Operations func(post operation.Poster) flow.Operations

	Gate             flow.Gate
	Navigator        flow.Navigator
	OperationTimeout time.Duration

	// AutoLaunch quits the program after the first successful launch
	AutoLaunch bool
}

// view is the mutable presentation state the controller renders into.
// It is shared by pointer because bubbletea copies the Model on every update.
type view struct {
	state   flow.State
	payload flow.Payload
	focused bool

	notice   string
	noticeID int

	status   string
	launched bool

	navigator flow.Navigator
}

// Render implements flow.Renderer
func (v *view) Render(state flow.State, payload flow.Payload) {
	v.state = state
	v.payload = payload
	if !payload.Enabled {
		v.focused = false
	}
	if state != flow.StateInstalled {
		v.status = ""
	}
}

// Focus implements flow.Focuser
func (v *view) Focus() {
	v.focused = true
}

// Notify implements flow.Notifier
func (v *view) Notify(n flow.Notice) {
	v.notice = n.Message
	v.noticeID++
}

// Open implements flow.Navigator
func (v *view) Open(url string) error {
	v.launched = true
	if v.navigator == nil {
		v.status = "Launch " + url
		return nil
	}
	if err := v.navigator.Open(url); err != nil {
		v.status = fmt.Sprintf("Could not open %s: %v", url, err)
		return err
	}
	v.status = "Opened " + url
	return nil
}

// Model is the Bubble Tea model hosting one install widget
type Model struct {
	ctrl *flow.Controller
	view *view

	spinner spinner.Model
	help    help.Model
	keys    keyMap

	autoLaunch bool
	width      int

	// err is the fatal error that ended the program (unknown state)
	err error
}

// NewModel creates the widget model. post delivers operation completions
// into the running program.
func NewModel(cfg Config, post operation.Poster) Model {
	v := &view{navigator: cfg.Navigator}

	var ops flow.Operations
	if cfg.Operations != nil {
		ops = cfg.Operations(post)
	}

	ctrl := flow.New(flow.Options{
		App:              cfg.App,
		Renderer:         v,
		Notifier:         v,
		Navigator:        v,
		Gate:             cfg.Gate,
		Operations:       ops,
		OperationTimeout: cfg.OperationTimeout,
	})

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ui.StepRunningStyle

	return Model{
		ctrl:       ctrl,
		view:       v,
		spinner:    s,
		help:       help.New(),
		keys:       newKeyMap(),
		autoLaunch: cfg.AutoLaunch,
		width:      ui.GetTerminalWidth(),
	}
}

// Controller returns the hosted controller
func (m Model) Controller() *flow.Controller {
	return m.ctrl
}

// Err returns the fatal error that ended the program, if any
func (m Model) Err() error {
	return m.err
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg { return gateCheckMsg{} })
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case gateCheckMsg:
		if err := m.ctrl.RefreshGate(context.Background()); err != nil {
			m.view.status = "Could not check install policy: " + err.Error()
		}
		return m, nil

	case completionMsg:
		msg.fn()
		return m, nil

	case noticeExpiredMsg:
		if msg.id == m.view.noticeID {
			m.view.notice = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.view.notice != "" && key.Matches(msg, m.keys.Dismiss) {
		m.view.notice = ""
		return m, nil
	}

	switch {
	case msg.String() == "ctrl+c", key.Matches(msg, m.keys.Quit):
		m.ctrl.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Activate):
		noticeID := m.view.noticeID
		if err := m.ctrl.Activate(); err != nil {
			logging.Error("Widget failed", zap.Error(err))
			m.err = err
			m.ctrl.Close()
			return m, tea.Quit
		}
		if m.autoLaunch && m.view.launched {
			m.ctrl.Close()
			return m, tea.Quit
		}
		if m.view.noticeID != noticeID {
			id := m.view.noticeID
			return m, tea.Tick(noticeTimeout, func(time.Time) tea.Msg {
				return noticeExpiredMsg{id: id}
			})
		}
	}

	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	banner := HeaderStyle.Render(AppName) + " " + VersionStyle.Render(AppVersion())
	b.WriteString(banner)
	b.WriteString("\n\n")

	spin := ""
	if m.view.payload.Busy {
		spin = m.spinner.View()
	}
	button := ui.RenderButton(m.view.payload, m.view.focused, spin)
	b.WriteString(BodyStyle.Render(button))
	b.WriteString("\n")

	if m.view.state == flow.StateFailed {
		if err := m.ctrl.LastError(); err != nil {
			b.WriteString(FailureStyle.Render(flow.ShortMessage(err)))
			b.WriteString("\n")
		}
	}

	if m.view.status != "" {
		b.WriteString(StatusStyle.Render(m.view.status))
		b.WriteString("\n")
	}

	if m.view.notice != "" {
		b.WriteString("\n")
		b.WriteString(BodyStyle.Render(ui.RenderNotice(m.view.notice)))
		b.WriteString("\n")
	}

	keys := m.keys
	keys.Activate.SetEnabled(m.view.payload.Enabled)
	keys.Dismiss.SetEnabled(m.view.notice != "")
	b.WriteString(HelpStyle.Render(m.help.View(keys)))
	b.WriteString("\n")

	return lipgloss.NewStyle().MaxWidth(m.width).Render(b.String())
}
