// Package logging provides structured logging for appinstall.
//
// This package wraps a global zap logger with convenience functions. Logging
// is silent unless a level is supplied, either through --log-level or the
// APPINSTALL_LOG_LEVEL environment variable, so curated CLI and TUI output
// stays clean by default.
//
// # Log Levels
//
//   - Debug: activations, dropped completions, websocket payloads
//   - Info: state transitions, launches, connections
//   - Warn: invalid activations, failed operations, gate query errors
//   - Error: unknown states, server failures
//
// # Flow Logging
//
// Controllers log through a child logger carrying the widget instance id:
//
//	logging.LogTransition(log, "installing", "installed", "install_completed")
//
// # Output
//
// Logs are written to stdout in console format. The interactive widget sends
// them to a file instead (--log-file or APPINSTALL_LOG_FILE):
//
//	2026-10-19T10:30:45.123-0700  INFO  State transition
//	  instance=1b4e…  from=installing  to=installed  event=install_completed
package logging
