// Package operation implements the asynchronous steps of the install flow.
//
// Every implementation starts its work on a separate goroutine and hands the
// completion to a Poster, which must deliver it on the goroutine that owns
// the flow controller (tea.Program.Send for the terminal UI, loop.Loop.Post
// for the websocket and headless hosts).
//
// Cancellation follows one rule: an operation cancelled through its
// Pending handle or through a cancelled context never completes, while an
// operation whose context deadline expires completes with the deadline error.
//
//   - Simulated: fixed latencies with optional injected failures
//   - Runner: real manifest loading and installation
//   - RegistryInstaller: records installs in the config registry
package operation
