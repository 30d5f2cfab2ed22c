// Package flow implements the install flow state machine behind an
// install/launch control.
//
// A Controller owns the single current State of one widget instance. It
// reacts to one user input (Activate) and to two asynchronous completions
// (manifest loaded, install completed). Each transition re-renders the full
// display payload, which is a pure function of the state, and triggers at most
// one external side effect (opening the application).
//
// # State Machine
//
//	INITIAL / FAILED  --activate-->          LOADING_MANIFEST
//	LOADING_MANIFEST  --manifest loaded-->   READY_TO_INSTALL
//	LOADING_MANIFEST  --manifest failed-->   FAILED
//	READY_TO_INSTALL  --activate-->          INSTALLING
//	INSTALLING        --install completed--> INSTALLED
//	INSTALLING        --install failed-->    FAILED
//	INSTALLED         --activate-->          INSTALLED (opens the start URL)
//	any               --gate denial-->       NOT_ALLOWED (permanent)
//
// Activation in LOADING_MANIFEST, INSTALLING or NOT_ALLOWED is rejected with a
// Notice and leaves the state unchanged. An unrecognised state value makes
// Activate return *UnknownStateError; this is the only error that escapes to
// the host.
//
// # Collaborators
//
// The Controller is wired to its host through small interfaces:
//   - Renderer: applies (State, Payload) to the presentation
//   - Focuser: optional, implemented by renderers that can move input focus
//   - Notifier: shows invalid-activation notices
//   - Navigator: opens the application's start URL
//   - Gate: answers whether installation is allowed
//   - Operations: starts the asynchronous manifest fetch and install
//
// # Concurrency
//
// A Controller is not safe for concurrent use. The host drives it from a single
// event goroutine (a bubbletea program, a loop.Loop, a test) and Operations
// implementations must deliver their completion callbacks on that same
// goroutine. Completions that arrive after Close, or after the operation was
// superseded, are dropped.
package flow
