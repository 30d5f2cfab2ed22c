// Appinstall hosts an install/launch widget for a web application.
//
// The widget walks the user through loading the application's manifest,
// installing it and launching it. It can be hosted interactively in the
// terminal, driven headlessly, or served to web pages over WebSocket.
//
// Usage:
//
//	appinstall [command] [flags]
//
// Running without arguments launches the interactive widget.
// See 'appinstall --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/appinstall/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "appinstall",
	Short: "Install and launch web applications",
	Long: `A widget that installs a web application from its manifest and launches it.

The widget loads the application's manifest, installs it into the local
registry and opens it in the browser. By default it runs a simulated flow for
a demo application; point it at a real manifest with --manifest or --url, or
at an app advertised on the local network with --source.

If no command is specified, the interactive widget will launch automatically.`,
	Example: `  # Interactive widget with the simulated demo app
  appinstall

  # Install from a manifest on disk
  appinstall --manifest ./manifest.json

  # Install from a web app manifest URL and exit after launching
  appinstall --url https://notes.example.com/manifest.webmanifest --exit-on-launch`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runWidget,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "appinstall %s\n", version.Full())
		fmt.Fprintf(cmd.OutOrStdout(), "built with %s\n", version.Platform())
	},
}
