package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/appinstall/internal/flow"
	"github.com/muurk/appinstall/internal/gate"
	"github.com/muurk/appinstall/internal/manifest"
	"github.com/muurk/appinstall/internal/operation"
)

// testOps completes operations only when the test feeds the queued message
type testOps struct {
	post operation.Poster
	fail flow.Op
}

func (o *testOps) LoadManifest(ctx context.Context, done func(*manifest.Manifest, error)) flow.Pending {
	o.post(func() {
		if o.fail == flow.OpManifest {
			done(nil, errors.New("unreachable"))
			return
		}
		done(manifest.Demo(), nil)
	})
	return noopPending{}
}

func (o *testOps) Install(ctx context.Context, m *manifest.Manifest, done func(error)) flow.Pending {
	o.post(func() { done(nil) })
	return noopPending{}
}

type noopPending struct{}

func (noopPending) Cancel() {}

type recordingNavigator struct {
	opened []string
}

func (n *recordingNavigator) Open(url string) error {
	n.opened = append(n.opened, url)
	return nil
}

type harness struct {
	m      Model
	queue  []func()
	nav    *recordingNavigator
	cfgOps *testOps
}

func newHarness(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()
	h := &harness{nav: &recordingNavigator{}}
	cfg := Config{
		Navigator: h.nav,
		Operations: func(post operation.Poster) flow.Operations {
			h.cfgOps = &testOps{post: post}
			return h.cfgOps
		},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	h.m = NewModel(cfg, func(fn func()) { h.queue = append(h.queue, fn) })
	t.Cleanup(h.m.ctrl.Close)
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	updated, cmd := h.m.Update(msg)
	h.m = updated.(Model)
	return cmd
}

func (h *harness) press(k string) tea.Cmd {
	switch k {
	case "enter":
		return h.send(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return h.send(tea.KeyMsg{Type: tea.KeyEsc})
	case "space":
		return h.send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	default:
		return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
}

// complete delivers the oldest queued completion through Update
func (h *harness) complete(t *testing.T) {
	t.Helper()
	require.NotEmpty(t, h.queue, "no pending completion")
	fn := h.queue[0]
	h.queue = h.queue[1:]
	h.send(completionMsg{fn: fn})
}

func TestModel_InitialView(t *testing.T) {
	h := newHarness(t, nil)

	out := h.m.View()
	assert.Contains(t, out, AppName)
	assert.Contains(t, out, "Install")
	assert.Equal(t, flow.StateInitial, h.m.Controller().State())
}

func TestModel_FocusFollowsFlow(t *testing.T) {
	h := newHarness(t, nil)
	assert.False(t, h.m.view.focused, "control is not focused before the manifest loads")

	h.press("enter")
	assert.False(t, h.m.view.focused)

	h.complete(t)
	assert.Equal(t, flow.StateReadyToInstall, h.m.Controller().State())
	assert.True(t, h.m.view.focused)
}

func TestModel_FullFlow(t *testing.T) {
	h := newHarness(t, nil)

	h.press("enter")
	assert.Equal(t, flow.StateLoadingManifest, h.m.Controller().State())
	assert.Contains(t, h.m.View(), "Loading…")

	h.complete(t)
	assert.Equal(t, flow.StateReadyToInstall, h.m.Controller().State())
	assert.True(t, h.m.view.focused)
	assert.Contains(t, h.m.View(), "Install YouTube Music")

	h.press("space")
	assert.Equal(t, flow.StateInstalling, h.m.Controller().State())
	assert.False(t, h.m.view.focused, "busy control cannot hold focus")

	h.complete(t)
	assert.Equal(t, flow.StateInstalled, h.m.Controller().State())
	assert.Contains(t, h.m.View(), "Launch YouTube Music")

	h.press("enter")
	assert.Equal(t, []string{"https://music.youtube.com"}, h.nav.opened)
	assert.Contains(t, h.m.View(), "Opened https://music.youtube.com")
}

func TestModel_BusyActivationShowsNotice(t *testing.T) {
	h := newHarness(t, nil)

	h.press("enter")
	cmd := h.press("enter")

	assert.NotNil(t, cmd, "notice expiry should be scheduled")
	assert.Contains(t, h.m.View(), "invalid installation state: loading-manifest")

	// esc dismisses the notice without quitting
	cmd = h.press("esc")
	assert.Nil(t, cmd)
	assert.Empty(t, h.m.view.notice)
}

func TestModel_NoticeExpiry(t *testing.T) {
	h := newHarness(t, nil)

	h.press("enter")
	h.press("enter")
	id := h.m.view.noticeID

	h.send(noticeExpiredMsg{id: id - 1})
	assert.NotEmpty(t, h.m.view.notice, "stale expiry must not clear a newer notice")

	h.send(noticeExpiredMsg{id: id})
	assert.Empty(t, h.m.view.notice)
}

func TestModel_FailureShowsReason(t *testing.T) {
	h := newHarness(t, nil)
	h.cfgOps.fail = flow.OpManifest

	h.press("enter")
	h.complete(t)

	assert.Equal(t, flow.StateFailed, h.m.Controller().State())
	out := h.m.View()
	assert.Contains(t, out, "Install failed. Retry")
	assert.Contains(t, out, "Could not load the app manifest")

	// Retry succeeds once the source recovers
	h.cfgOps.fail = ""
	h.press("enter")
	h.complete(t)
	assert.Equal(t, flow.StateReadyToInstall, h.m.Controller().State())
}

func TestModel_GateRefusal(t *testing.T) {
	h := newHarness(t, func(cfg *Config) { cfg.Gate = gate.Static(false) })

	h.send(gateCheckMsg{})

	assert.Equal(t, flow.StateNotAllowed, h.m.Controller().State())
	assert.Contains(t, h.m.View(), "Installation not allowed")
}

func TestModel_Quit(t *testing.T) {
	for _, k := range []string{"q", "esc"} {
		h := newHarness(t, nil)
		h.press("enter")

		cmd := h.press(k)
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())

		// Completions after quit are dropped
		h.complete(t)
		assert.Equal(t, flow.StateLoadingManifest, h.m.Controller().State())
	}
}

func TestModel_AutoLaunchQuits(t *testing.T) {
	h := newHarness(t, func(cfg *Config) { cfg.AutoLaunch = true })

	h.press("enter")
	h.complete(t)
	h.press("enter")
	h.complete(t)

	cmd := h.press("enter")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Len(t, h.nav.opened, 1)
}

func TestModel_HelpReflectsState(t *testing.T) {
	h := newHarness(t, nil)
	assert.True(t, strings.Contains(h.m.View(), "activate"))

	h.press("enter")
	assert.False(t, strings.Contains(h.m.View(), "activate"), "busy control hides activate help")
}
