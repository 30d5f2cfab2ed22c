package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/appinstall/internal/discovery"
	"github.com/muurk/appinstall/internal/flow"
	"github.com/muurk/appinstall/internal/logging"
	"github.com/muurk/appinstall/internal/manifest"
	"github.com/muurk/appinstall/internal/server"
	"github.com/muurk/appinstall/internal/tui"
	"github.com/muurk/appinstall/internal/ui"
)

// Command flags
var (
	exitOnLaunch   bool
	runLaunch      bool
	serveHost      string
	servePort      int
	servePath      string
	allowedOrigins []string
	scanSeconds    int
	outputFormat   string
)

func init() {
	rootCmd.Flags().BoolVar(&exitOnLaunch, "exit-on-launch", false, "Quit after the app has been launched")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(appsCmd)
}

func runWidget(cmd *cobra.Command, args []string) error {
	if err := initLogging(true, ""); err != nil {
		return err
	}
	defer logging.Sync()

	if !ui.IsTerminal() {
		return errors.New("the interactive widget needs a terminal; use 'appinstall run' instead")
	}

	ctx := cmd.Context()
	env, err := loadEnvironment(ctx, cmd)
	if err != nil {
		return err
	}

	return tui.Run(ctx, tui.Config{
		App:              env.app,
		Operations:       env.operations,
		Gate:             env.gate,
		Navigator:        env.browser(),
		OperationTimeout: env.timeout,
		AutoLaunch:       exitOnLaunch,
	})
}

// runCmd drives the flow without user input
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Install the app without the interactive widget",
	Long: `Walk through the install flow without user input.

The control is activated whenever the flow is ready for the next step and every
state change is printed. The command exits non-zero when loading or
installing fails, or when installation is not allowed.`,
	Example: `  # Simulated install of the demo app
  appinstall run

  # Install a manifest from disk and launch it
  appinstall run --manifest ./manifest.yaml --launch

  # Exercise the failure path quickly
  appinstall run --fail install --scale 0.1`,
	RunE: runHeadless,
}

func init() {
	runCmd.Flags().BoolVar(&runLaunch, "launch", false, "Launch the app after installing it")
}

func runHeadless(cmd *cobra.Command, args []string) error {
	if err := initLogging(false, ""); err != nil {
		return err
	}
	defer logging.Sync()

	ctx := cmd.Context()
	env, err := loadEnvironment(ctx, cmd)
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	printer.PrintHeader("Install App", "appinstall run", runParams(env))

	w := newWalker(printer, runLaunch)
	res := w.walk(ctx, env, env.browser())
	printer.Newline()

	if res.err == nil {
		printer.PrintSteps(res.state, "")
		details := []ui.Param{
			{Key: "App", Value: res.app.Name},
			{Key: "Start URL", Value: res.startURL},
		}
		if path := env.registry.Path(); path != "" {
			details = append(details, ui.Param{Key: "Registry", Value: path})
		}
		title := "App installed"
		if runLaunch {
			title = "App installed and launched"
		}
		printer.PrintSuccess(title, details)
		return nil
	}

	var failedOp flow.Op
	var opErr *flow.OperationError
	if errors.As(res.err, &opErr) {
		failedOp = opErr.Op
	}
	printer.PrintSteps(res.state, failedOp)

	title := "Installation failed"
	switch {
	case errors.Is(res.err, errNotAllowed):
		title = "Installation not allowed"
	case opErr != nil:
		title = flow.ShortMessage(res.err)
	}
	printer.PrintError(title, res.err, ui.Troubleshooting(res.err))
	return res.err
}

func runParams(env *environment) []ui.Param {
	source := "demo app"
	switch {
	case manifestFile != "":
		source = manifestFile
	case env.loader != nil:
		source = env.origin
	}
	params := []ui.Param{{Key: "Manifest", Value: source}}
	if env.simulated {
		params = append(params, ui.Param{Key: "Mode", Value: "simulated"})
	}
	if env.timeout > 0 {
		params = append(params, ui.Param{Key: "Timeout", Value: env.timeout.String()})
	}
	return params
}

// serveCmd hosts widgets for web pages
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the install widget over WebSocket",
	Long: `Serve install widgets to web pages over WebSocket.

Each connection to the widget endpoint attaches one widget. The page sends
{"type":"activate"} when the user activates the control and receives render,
focus, notice and navigate messages in return.`,
	Example: `  # Serve the simulated demo app on localhost:8080
  appinstall serve

  # Serve a real manifest to one origin
  appinstall serve --url https://notes.example.com/manifest.webmanifest \
    --allow-origin https://notes.example.com`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Address to bind to")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&servePath, "path", server.DefaultPath, "Widget endpoint path")
	serveCmd.Flags().StringSliceVar(&allowedOrigins, "allow-origin", nil, "Allowed page origins (default: any)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := initLogging(false, "info"); err != nil {
		return err
	}
	defer logging.Sync()

	env, err := loadEnvironment(cmd.Context(), cmd)
	if err != nil {
		return err
	}

	srv, err := server.New(&server.Config{
		Host:             serveHost,
		Port:             servePort,
		Path:             servePath,
		App:              env.app,
		Operations:       env.operations,
		Gate:             env.gate,
		OperationTimeout: env.timeout,
		Navigator:        env.navigator,
		AllowedOrigins:   allowedOrigins,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving install widget on ws://%s:%d%s (Ctrl+C to stop)\n", serveHost, servePort, servePath)
	return srv.Start()
}

// scanCmd discovers installable apps on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for installable apps on the network",
	Long: `Scan for web apps that advertise a manifest over mDNS/DNS-SD.

Apps are discovered as _http._tcp services whose TXT record carries a
"manifest" key. Install a discovered app with --source "<name>".`,
	Example: `  # Scan with the configured timeout
  appinstall scan

  # Longer scan for busy networks
  appinstall scan --duration 15`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanSeconds, "duration", 0, "Scan duration in seconds (default from config)")
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := initLogging(false, ""); err != nil {
		return err
	}
	defer logging.Sync()

	registry, err := loadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	timeout := discovery.DefaultScanTimeout
	if registry.Preferences.DiscoverTimeout > 0 {
		timeout = time.Duration(registry.Preferences.DiscoverTimeout) * time.Second
	}
	if scanSeconds > 0 {
		timeout = time.Duration(scanSeconds) * time.Second
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scanning for installable apps (timeout: %s)...\n\n", timeout)

	sources, err := discovery.QuickScan(cmd.Context(), timeout)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(sources) == 0 {
		fmt.Fprintln(out, "No apps found.")
		fmt.Fprintln(out, "\nTroubleshooting:")
		fmt.Fprintln(out, "  - Ensure the app host advertises _http._tcp with a manifest TXT record")
		fmt.Fprintln(out, "  - Verify your computer is on the same network segment")
		fmt.Fprintln(out, "  - Try increasing --duration for slower networks")
		fmt.Fprintln(out, "  - Use --url to point at the manifest directly")
		return nil
	}

	fmt.Fprintf(out, "Found %d app(s):\n\n", len(sources))
	for i, src := range sources {
		fmt.Fprintf(out, "%d. %s\n", i+1, src.Instance)
		fmt.Fprintf(out, "   Host:     %s\n", src)
		fmt.Fprintf(out, "   Manifest: %s\n", src.ManifestURL())
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, "Use 'appinstall --source \"<name>\"' to install one of them")

	return nil
}

// showCmd loads and prints the manifest
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the app manifest",
	Long: `Load the app manifest and print it, together with its install status.

Use this to validate a manifest before installing it.`,
	Example: `  # Show the demo manifest
  appinstall show

  # Validate a manifest file
  appinstall show --manifest ./manifest.json

  # JSON output for scripting
  appinstall show --url https://notes.example.com/manifest.webmanifest --format json`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, json, yaml)")
}

func runShow(cmd *cobra.Command, args []string) error {
	if err := initLogging(false, ""); err != nil {
		return err
	}
	defer logging.Sync()

	ctx := cmd.Context()
	env, err := loadEnvironment(ctx, cmd)
	if err != nil {
		return err
	}

	m := env.app
	if env.loader != nil {
		if m, err = env.loader.Load(ctx); err != nil {
			return fmt.Errorf("failed to load manifest: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	switch outputFormat {
	case "json":
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "yaml":
		data, err := yaml.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		fmt.Fprint(out, string(data))
	case "detailed":
		ui.NewPrinter(out).PrintSuccess(m.DisplayName(), manifestDetails(m, env))
	default:
		return fmt.Errorf("invalid --format value %q (expected detailed, json or yaml)", outputFormat)
	}
	return nil
}

func manifestDetails(m *manifest.Manifest, env *environment) []ui.Param {
	details := []ui.Param{
		{Key: "ID", Value: m.AppID()},
		{Key: "Start URL", Value: m.StartURL},
		{Key: "Origin", Value: m.Origin()},
	}
	if m.ShortName != "" {
		details = append(details, ui.Param{Key: "Short name", Value: m.ShortName})
	}
	if m.Description != "" {
		details = append(details, ui.Param{Key: "Description", Value: m.Description})
	}
	details = append(details, ui.Param{Key: "Icons", Value: fmt.Sprintf("%d", len(m.Icons))})

	status := "not installed"
	if app := env.registry.GetApp(m.AppID()); app != nil {
		status = "installed " + app.InstalledAt.Format("2006-01-02 15:04")
		if app.Launches > 0 {
			status += fmt.Sprintf(", launched %d time(s)", app.Launches)
		}
	}
	return append(details, ui.Param{Key: "Status", Value: status})
}

// appsCmd lists and removes installed apps
var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List installed apps",
	RunE:  runApps,
}

var appsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Forget an installed app",
	Args:  cobra.ExactArgs(1),
	RunE:  runAppsRemove,
}

func init() {
	appsCmd.AddCommand(appsRemoveCmd)
}

func runApps(cmd *cobra.Command, args []string) error {
	registry, err := loadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out := cmd.OutOrStdout()
	ids := registry.AppIDs()
	if len(ids) == 0 {
		fmt.Fprintln(out, "No apps installed.")
		return nil
	}
	sort.Strings(ids)

	for _, id := range ids {
		app := registry.GetApp(id)
		if app == nil {
			continue
		}
		fmt.Fprintf(out, "%s\n", id)
		fmt.Fprintf(out, "   Name:      %s\n", app.Name)
		fmt.Fprintf(out, "   Start URL: %s\n", app.StartURL)
		fmt.Fprintf(out, "   Installed: %s\n", app.InstalledAt.Format(time.RFC3339))
		if app.Launches > 0 {
			fmt.Fprintf(out, "   Launches:  %d (last %s)\n", app.Launches, app.LastLaunched.Format(time.RFC3339))
		}
	}
	return nil
}

func runAppsRemove(cmd *cobra.Command, args []string) error {
	registry, err := loadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !registry.RemoveApp(args[0]) {
		return fmt.Errorf("app %q is not installed", args[0])
	}
	if err := registry.Save(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
	return nil
}
