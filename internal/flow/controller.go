package flow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/appinstall/internal/logging"
	"github.com/muurk/appinstall/internal/manifest"
)

// Renderer applies a state and its payload to the presentation.
// Implementations must be idempotent.
type Renderer interface {
	Render(state State, payload Payload)
}

// Focuser is implemented by renderers that can move input focus to the control
type Focuser interface {
	Focus()
}

// Notice is a non-fatal, dismissible message for the user
type Notice struct {
	Message string
	Err     *InvalidActivationError
}

// Notifier surfaces notices to the user
type Notifier interface {
	Notify(n Notice)
}

// Navigator opens a URL in a new navigation context (fire and forget)
type Navigator interface {
	Open(url string) error
}

// Gate answers whether installation is currently allowed
type Gate interface {
	QueryInstallAllowed(ctx context.Context) (bool, error)
}

// Pending is the handle of an outstanding asynchronous operation
type Pending interface {
	Cancel()
}

// Operations starts the asynchronous steps of the flow.
//
// Implementations must invoke done exactly once unless the operation is
// cancelled (through Pending.Cancel or ctx), and must invoke it on the
// goroutine that drives the Controller.
type Operations interface {
	LoadManifest(ctx context.Context, done func(*manifest.Manifest, error)) Pending
	Install(ctx context.Context, m *manifest.Manifest, done func(error)) Pending
}

// Options configures a Controller
type Options struct {
	// ID identifies the widget instance in logs (default: random UUID)
	ID string

	// App supplies display info before the manifest is loaded (optional)
	App *manifest.Manifest

	Renderer   Renderer
	Notifier   Notifier
	Navigator  Navigator
	Gate       Gate
	Operations Operations

	// OperationTimeout bounds each asynchronous step (0 = no timeout)
	OperationTimeout time.Duration

	// Logger defaults to the global logger
	Logger *zap.Logger
}

// Controller is the install flow state machine of one widget instance
type Controller struct {
	id    string
	state State

	// hasCompleted is sticky: set the first time INSTALLED is reached
	hasCompleted bool

	manifest *manifest.Manifest
	fallback *manifest.Manifest
	lastErr  error

	// pending is the single outstanding operation; gen disarms stale completions
	pending Pending
	gen     uint64
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc

	renderer  Renderer
	notifier  Notifier
	navigator Navigator
	gate      Gate
	ops       Operations
	timeout   time.Duration
	log       *zap.Logger
}

// New creates a Controller in StateInitial and renders it once
func New(opts Options) *Controller {
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		id:        id,
		state:     StateInitial,
		fallback:  opts.App,
		ctx:       ctx,
		cancel:    cancel,
		renderer:  opts.Renderer,
		notifier:  opts.Notifier,
		navigator: opts.Navigator,
		gate:      opts.Gate,
		ops:       opts.Operations,
		timeout:   opts.OperationTimeout,
		log:       logger.With(zap.String("instance", id)),
	}

	c.log.Debug("Widget attached")
	c.render()
	return c
}

// ID returns the instance identifier
func (c *Controller) ID() string {
	return c.id
}

// State returns the current state
func (c *Controller) State() State {
	return c.state
}

// Manifest returns the loaded manifest, or nil before it has been loaded
func (c *Controller) Manifest() *manifest.Manifest {
	return c.manifest
}

// LastError returns the failure that led to StateFailed, if any
func (c *Controller) LastError() error {
	return c.lastErr
}

// HasCompletedInstallOrLaunch reports whether the flow has ever reached
// StateInstalled. Once true it never becomes false again.
func (c *Controller) HasCompletedInstallOrLaunch() bool {
	return c.hasCompleted
}

// IsInstallAllowed reports false only while the flow is in StateNotAllowed
func (c *Controller) IsInstallAllowed(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return c.state != StateNotAllowed, nil
}

// Payload returns the display payload of the current state
func (c *Controller) Payload() (Payload, error) {
	return PayloadFor(c.state, c.appInfo())
}

// Activate handles one user activation of the control.
// It returns an error only when the controller holds an unknown state.
func (c *Controller) Activate() error {
	if c.closed {
		c.log.Debug("Activation ignored on detached widget")
		return nil
	}

	logging.LogActivation(c.log, c.state.String())

	switch c.state {
	case StateInitial, StateFailed:
		c.beginManifestLoad()
	case StateReadyToInstall:
		c.beginInstall()
	case StateInstalled:
		c.launch()
	case StateLoadingManifest, StateInstalling, StateNotAllowed:
		c.rejectActivation()
	default:
		err := &UnknownStateError{State: c.state}
		c.log.Error("Controller holds an unknown state", zap.Error(err))
		return err
	}
	return nil
}

// Deny moves the flow into StateNotAllowed. There is no path out of it.
// Any pending operation is cancelled.
func (c *Controller) Deny(reason string) {
	if c.closed || c.state == StateNotAllowed {
		return
	}
	c.log.Info("Installation denied by gate", zap.String("reason", reason))
	c.cancelPending()
	c.transition(StateNotAllowed, "gate_denied")
}

// RefreshGate consults the Gate and enters StateNotAllowed when it refuses.
// Query errors are returned and leave the state unchanged.
func (c *Controller) RefreshGate(ctx context.Context) error {
	if c.gate == nil {
		return nil
	}
	allowed, err := c.gate.QueryInstallAllowed(ctx)
	if err != nil {
		c.log.Warn("Gate query failed", zap.Error(err))
		return err
	}
	if !allowed {
		c.Deny("gate refused installation")
	}
	return nil
}

// Close detaches the controller: the pending operation is cancelled and no
// completion will mutate it afterwards. Close is idempotent.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.cancelPending()
	c.cancel()
	c.log.Debug("Widget detached", zap.String("state", c.state.String()))
}

func (c *Controller) beginManifestLoad() {
	c.lastErr = nil
	c.transition(StateLoadingManifest, "activate")

	gen := c.nextGen()
	if c.ops == nil {
		c.manifestDone(gen, nil, ErrNoOperations)
		return
	}
	ctx, cancel := c.opContext()
	p := c.ops.LoadManifest(ctx, func(m *manifest.Manifest, err error) {
		cancel()
		c.manifestDone(gen, m, err)
	})
	c.track(gen, StateLoadingManifest, p, cancel)
}

func (c *Controller) manifestDone(gen uint64, m *manifest.Manifest, err error) {
	if !c.accept(gen, StateLoadingManifest, OpManifest) {
		return
	}
	c.pending = nil

	if err == nil && m == nil {
		err = manifest.ErrInvalid
	}
	if err != nil {
		c.fail(OpManifest, err)
		return
	}

	c.manifest = m
	c.transition(StateReadyToInstall, "manifest_loaded")
	c.focus()
}

func (c *Controller) beginInstall() {
	c.transition(StateInstalling, "activate")

	gen := c.nextGen()
	if c.ops == nil {
		c.installDone(gen, ErrNoOperations)
		return
	}
	ctx, cancel := c.opContext()
	p := c.ops.Install(ctx, c.manifest, func(err error) {
		cancel()
		c.installDone(gen, err)
	})
	c.track(gen, StateInstalling, p, cancel)
}

func (c *Controller) installDone(gen uint64, err error) {
	if !c.accept(gen, StateInstalling, OpInstall) {
		return
	}
	c.pending = nil

	if err != nil {
		c.fail(OpInstall, err)
		return
	}

	c.hasCompleted = true
	c.transition(StateInstalled, "install_completed")
	c.focus()
}

func (c *Controller) launch() {
	target := c.launchURL()
	c.log.Info("Launching application", zap.String("url", target))
	if c.navigator == nil {
		return
	}
	if err := c.navigator.Open(target); err != nil {
		// Navigation is fire-and-forget
		c.log.Warn("Failed to open application", zap.String("url", target), zap.Error(err))
	}
}

func (c *Controller) rejectActivation() {
	invalid := &InvalidActivationError{State: c.state}
	c.log.Warn("Invalid activation", zap.String("state", c.state.String()))
	if c.notifier != nil {
		c.notifier.Notify(Notice{Message: invalid.Error(), Err: invalid})
	}
}

func (c *Controller) fail(op Op, err error) {
	opErr := newOperationError(op, err)
	c.lastErr = opErr
	c.log.Warn("Operation failed",
		zap.String("op", string(op)),
		zap.String("type", opErr.Type.String()),
		zap.Error(err),
	)
	c.transition(StateFailed, string(op)+"_failed")
	c.focus()
}

// accept reports whether a completion still belongs to the current flow
func (c *Controller) accept(gen uint64, want State, op Op) bool {
	if c.closed || gen != c.gen || c.state != want {
		c.log.Debug("Dropping stale completion",
			zap.String("op", string(op)),
			zap.Bool("closed", c.closed),
			zap.String("state", c.state.String()),
		)
		return false
	}
	return true
}

func (c *Controller) transition(to State, event string) {
	from := c.state
	c.state = to
	logging.LogTransition(c.log, from.String(), to.String(), event)
	c.render()
}

func (c *Controller) render() {
	if c.renderer == nil {
		return
	}
	payload, err := PayloadFor(c.state, c.appInfo())
	if err != nil {
		// Unknown states surface through Activate
		c.log.Error("Cannot render state", zap.Error(err))
		return
	}
	c.renderer.Render(c.state, payload)
}

func (c *Controller) focus() {
	if f, ok := c.renderer.(Focuser); ok {
		f.Focus()
	}
}

// track records p as the pending operation unless it already completed
// synchronously
func (c *Controller) track(gen uint64, want State, p Pending, cancel context.CancelFunc) {
	if c.gen != gen || c.state != want {
		cancel()
		return
	}
	c.pending = pendingWithCancel{Pending: p, cancel: cancel}
}

func (c *Controller) nextGen() uint64 {
	c.gen++
	return c.gen
}

func (c *Controller) cancelPending() {
	// Bumping the generation disarms completions already in flight
	c.gen++
	if c.pending != nil {
		c.pending.Cancel()
		c.pending = nil
	}
}

func (c *Controller) opContext() (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(c.ctx, c.timeout)
	}
	return context.WithCancel(c.ctx)
}

func (c *Controller) appInfo() AppInfo {
	m := c.manifest
	if m == nil {
		m = c.fallback
	}
	if m == nil {
		return AppInfo{}
	}
	return AppInfo{Name: m.DisplayName(), Origin: m.Origin()}
}

func (c *Controller) launchURL() string {
	if c.manifest != nil {
		return c.manifest.StartURL
	}
	if c.fallback != nil {
		return c.fallback.StartURL
	}
	return ""
}

// pendingWithCancel also releases the operation's context on Cancel
type pendingWithCancel struct {
	Pending
	cancel context.CancelFunc
}

func (p pendingWithCancel) Cancel() {
	if p.Pending != nil {
		p.Pending.Cancel()
	}
	p.cancel()
}
