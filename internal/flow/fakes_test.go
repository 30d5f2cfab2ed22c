package flow

import (
	"context"
	"errors"

	"github.com/muurk/appinstall/internal/manifest"
)

type fakeRenderer struct {
	states   []State
	payloads []Payload
	focuses  int
}

func (r *fakeRenderer) Render(state State, payload Payload) {
	r.states = append(r.states, state)
	r.payloads = append(r.payloads, payload)
}

func (r *fakeRenderer) Focus() {
	r.focuses++
}

func (r *fakeRenderer) last() Payload {
	return r.payloads[len(r.payloads)-1]
}

type fakeNotifier struct {
	notices []Notice
}

func (n *fakeNotifier) Notify(notice Notice) {
	n.notices = append(n.notices, notice)
}

type fakeNavigator struct {
	opened []string
	err    error
}

func (n *fakeNavigator) Open(url string) error {
	n.opened = append(n.opened, url)
	return n.err
}

type fakeGate struct {
	allowed bool
	err     error
}

func (g fakeGate) QueryInstallAllowed(ctx context.Context) (bool, error) {
	return g.allowed, g.err
}

type fakePending struct {
	cancelled bool
}

func (p *fakePending) Cancel() {
	p.cancelled = true
}

// manualOps captures completions so tests decide when operations finish
type manualOps struct {
	manifestCalls int
	installCalls  int

	manifestDone func(*manifest.Manifest, error)
	installDone  func(error)
	installed    *manifest.Manifest

	lastCtx context.Context
	pending []*fakePending
}

func (o *manualOps) LoadManifest(ctx context.Context, done func(*manifest.Manifest, error)) Pending {
	o.manifestCalls++
	o.manifestDone = done
	o.lastCtx = ctx
	p := &fakePending{}
	o.pending = append(o.pending, p)
	return p
}

func (o *manualOps) Install(ctx context.Context, m *manifest.Manifest, done func(error)) Pending {
	o.installCalls++
	o.installDone = done
	o.installed = m
	o.lastCtx = ctx
	p := &fakePending{}
	o.pending = append(o.pending, p)
	return p
}

func (o *manualOps) lastPending() *fakePending {
	return o.pending[len(o.pending)-1]
}

// syncOps completes every operation before returning
type syncOps struct {
	manifest    *manifest.Manifest
	manifestErr error
	installErr  error
}

func (o syncOps) LoadManifest(ctx context.Context, done func(*manifest.Manifest, error)) Pending {
	done(o.manifest, o.manifestErr)
	return &fakePending{}
}

func (o syncOps) Install(ctx context.Context, m *manifest.Manifest, done func(error)) Pending {
	done(o.installErr)
	return &fakePending{}
}

var errBoom = errors.New("boom")

func demoManifest() *manifest.Manifest {
	return manifest.Demo()
}
