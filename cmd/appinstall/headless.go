package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/muurk/appinstall/internal/flow"
	"github.com/muurk/appinstall/internal/loop"
	"github.com/muurk/appinstall/internal/operation"
	"github.com/muurk/appinstall/internal/ui"
)

// errNotAllowed ends a headless run that the gate refused
var errNotAllowed = errors.New("installation is not allowed")

// walker drives a controller without a user: it activates the control
// whenever the flow is ready for the next step and prints every transition.
// All methods run on the walker's loop.
type walker struct {
	printer *ui.Printer
	loop    *loop.Loop
	ctrl    *flow.Controller

	// launch also activates the installed app
	launch bool

	done     chan error
	finished bool
}

func newWalker(printer *ui.Printer, launch bool) *walker {
	return &walker{
		printer: printer,
		loop:    loop.New(),
		launch:  launch,
		done:    make(chan error, 1),
	}
}

// Render implements flow.Renderer
func (w *walker) Render(state flow.State, payload flow.Payload) {
	w.printer.Render(state, payload)

	switch state {
	case flow.StateReadyToInstall:
		w.loop.Post(w.activate)
	case flow.StateInstalled:
		if w.launch {
			w.loop.Post(func() {
				w.activate()
				w.finish(nil)
			})
		} else {
			w.finish(nil)
		}
	case flow.StateFailed:
		// Render runs after the failure is recorded
		w.finish(w.ctrl.LastError())
	case flow.StateNotAllowed:
		w.finish(errNotAllowed)
	}
}

// Notify implements flow.Notifier
func (w *walker) Notify(n flow.Notice) {
	w.printer.Notify(n)
}

func (w *walker) activate() {
	if err := w.ctrl.Activate(); err != nil {
		w.finish(err)
	}
}

func (w *walker) finish(err error) {
	if w.finished {
		return
	}
	w.finished = true
	w.done <- err
}

func (w *walker) post() operation.Poster {
	return func(fn func()) {
		w.loop.Post(fn)
	}
}

// walkResult is the final state of a headless run
type walkResult struct {
	state    flow.State
	err      error
	app      flow.AppInfo
	startURL string
}

// walk runs the flow to completion. It returns once the app is installed
// (and launched, if requested), the flow fails, or ctx is done.
func (w *walker) walk(ctx context.Context, env *environment, nav flow.Navigator) walkResult {
	go func() {
		_ = w.loop.Run(context.Background())
	}()
	defer func() {
		w.loop.Post(func() {
			if w.ctrl != nil {
				w.ctrl.Close()
			}
		})
		w.loop.Stop()
		<-w.loop.Done()
	}()

	err := w.loop.Do(ctx, func() {
		w.ctrl = flow.New(flow.Options{
			App:              env.app,
			Renderer:         w,
			Notifier:         w,
			Navigator:        nav,
			Gate:             env.gate,
			Operations:       env.operations(w.post()),
			OperationTimeout: env.timeout,
		})
		if err := w.ctrl.RefreshGate(ctx); err != nil {
			w.finish(fmt.Errorf("install permission unavailable: %w", err))
			return
		}
		if w.ctrl.State() == flow.StateInitial {
			w.activate()
		}
	})
	if err != nil {
		return walkResult{err: err}
	}

	select {
	case err = <-w.done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	res := walkResult{err: err}
	_ = w.loop.Do(context.Background(), func() {
		if w.ctrl == nil {
			return
		}
		res.state = w.ctrl.State()
		if m := w.ctrl.Manifest(); m != nil {
			res.app = flow.AppInfo{Name: m.DisplayName(), Origin: m.Origin()}
			res.startURL = m.StartURL
		}
	})
	return res
}
