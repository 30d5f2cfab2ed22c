// Package server hosts install widgets over WebSocket.
//
// Every connection to the widget endpoint attaches one widget: the server
// creates a flow controller for it and detaches the controller when the
// connection goes away. Messages are JSON text frames.
//
// # Client messages
//
//	{"type":"activate"}   user activated the control
//	{"type":"ping"}       application-level keepalive, answered with pong
//
// # Server messages
//
//	render    state name, display payload and CSS classes
//	focus     move input focus to the control
//	notice    non-fatal message (invalid activation)
//	navigate  open the given url in a new navigation context
//	error     malformed or unsupported client message
//	pong      reply to ping
//
// # Concurrency
//
// Each connection owns a serial event loop. The controller, operation
// completions and every write to the connection run on that loop, so the
// loop goroutine is the only writer. A separate goroutine reads frames and
// posts them to the loop.
package server
