// Package tui hosts the install widget in the terminal.
//
// The widget is a Bubble Tea program following the Elm architecture. The
// bubbletea event loop is the single goroutine that owns the flow
// controller: key presses call Activate from Update, and operation
// completions are delivered back into Update as messages through
// tea.Program.Send.
//
// # Keys
//
//   - enter / space: activate the control (install, retry or launch)
//   - esc: dismiss the current notice, or quit when there is none
//   - q / ctrl+c: quit
//
// # Layout
//
//	╭──────────────────────────────╮
//	│  APP INSTALL                 │
//	╰──────────────────────────────╯
//
//	  ╔════════════════════════════╗
//	  ║   Launch YouTube Music     ║
//	  ║  from music.youtube.com    ║
//	  ╚════════════════════════════╝
//
//	  Opened https://music.youtube.com
//
//	  enter activate • q quit
//
// # Usage Example
//
//	err := tui.Run(ctx, tui.Config{
//	    App: manifest.Demo(),
//	    Operations: func(post operation.Poster) flow.Operations {
//	        return operation.NewSimulated(post)
//	    },
//	})
package tui
