package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/appinstall/internal/operation"
)

// programRef lets operations post into a program created after them
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) post(fn func()) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(completionMsg{fn: fn})
	}
}

// Run starts the widget and blocks until the user quits.
// It returns the controller's fatal error, if one ended the program.
func Run(ctx context.Context, cfg Config, opts ...tea.ProgramOption) error {
	ref := &programRef{}
	model := NewModel(cfg, operation.Poster(ref.post))
	defer model.ctrl.Close()

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(model, opts...)

	ref.mu.Lock()
	ref.p = p
	ref.mu.Unlock()

	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("widget error: %w", err)
	}
	if m, ok := final.(Model); ok && m.err != nil {
		return m.err
	}
	return nil
}
