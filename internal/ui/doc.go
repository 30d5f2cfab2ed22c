// Package ui provides non-interactive terminal output for appinstall.
//
// Commands that run once and exit (run, show, scan) print through a Printer:
// a header box, one line per flow transition, a step list with a progress
// bar, and a final success or failure box. The interactive widget in package
// tui reuses the same styles and RenderButton.
//
// Example:
//
//	p := ui.NewPrinter(os.Stdout)
//	p.PrintHeader("Install", "appinstall run", []ui.Param{{Key: "App", Value: "YouTube Music"}})
//
//	c := flow.New(flow.Options{Renderer: p, Notifier: p, Operations: ops})
//
// # Logging Integration
//
// Zap logging is silent unless APPINSTALL_LOG_LEVEL or --log-level is set,
// so the curated output stays clean.
package ui
