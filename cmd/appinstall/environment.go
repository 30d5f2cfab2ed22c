package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/appinstall/internal/config"
	"github.com/muurk/appinstall/internal/discovery"
	"github.com/muurk/appinstall/internal/flow"
	"github.com/muurk/appinstall/internal/gate"
	"github.com/muurk/appinstall/internal/launch"
	"github.com/muurk/appinstall/internal/logging"
	"github.com/muurk/appinstall/internal/manifest"
	"github.com/muurk/appinstall/internal/operation"
)

// Flow flags shared by every command that hosts a widget
var (
	configPath   string
	manifestFile string
	manifestURL  string
	sourceName   string
	simulate     bool
	delayScale   float64
	failStep     string
	deny         bool
	timeoutSecs  int
	logLevel     string
	logFile      string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default: OS config dir)")
	flags.StringVar(&manifestFile, "manifest", "", "Manifest file (JSON or YAML)")
	flags.StringVar(&manifestURL, "url", "", "Manifest URL")
	flags.StringVar(&sourceName, "source", "", "Install the app advertised on the network under this name")
	flags.BoolVar(&simulate, "simulate", false, "Simulate loading and installing (default when no manifest is given)")
	flags.Float64Var(&delayScale, "scale", 1, "Multiply simulated delays by this factor")
	flags.StringVar(&failStep, "fail", "", "Make a simulated step fail (manifest, install)")
	flags.BoolVar(&deny, "deny", false, "Refuse installation as if the platform disallowed it")
	flags.IntVar(&timeoutSecs, "timeout", 0, "Per-step timeout in seconds (0 = none; default from config)")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&logFile, "log-file", "", "Write logs to this file")
}

// environment holds what every widget host is built from
type environment struct {
	registry *config.Registry
	prefs    *config.Preferences

	// app is displayed before the manifest loads; nil for remote manifests
	app    *manifest.Manifest
	loader manifest.Loader
	origin string

	gate      flow.Gate
	timeout   time.Duration
	fail      flow.Op
	simulated bool
}

// initLogging sets up the global logger. Interactive commands default to a
// log file so log lines do not corrupt the terminal UI.
func initLogging(interactive bool, defaultLevel string) error {
	level := logLevel
	if level == "" && os.Getenv(logging.LogLevelEnvVar) == "" {
		level = defaultLevel
	}
	path := logFile
	enabled := level != "" || os.Getenv(logging.LogLevelEnvVar) != ""
	if interactive && enabled && path == "" && os.Getenv(logging.LogFileEnvVar) == "" {
		dir, err := config.GetConfigDir()
		if err != nil {
			return fmt.Errorf("failed to locate log directory: %w", err)
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		path = filepath.Join(dir, "appinstall.log")
	}
	return logging.InitializeWithOutput(level, path)
}

func loadRegistry() (*config.Registry, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.LoadDefault()
}

func parseFailStep(step string) (flow.Op, error) {
	switch step {
	case "":
		return "", nil
	case string(flow.OpManifest):
		return flow.OpManifest, nil
	case string(flow.OpInstall):
		return flow.OpInstall, nil
	default:
		return "", fmt.Errorf("invalid --fail value %q (expected manifest or install)", step)
	}
}

func loadEnvironment(ctx context.Context, cmd *cobra.Command) (*environment, error) {
	registry, err := loadRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	env := &environment{
		registry: registry,
		prefs:    registry.Preferences,
		timeout:  registry.Preferences.OperationTimeout(),
	}
	if cmd.Flags().Changed("timeout") {
		env.timeout = time.Duration(timeoutSecs) * time.Second
	}

	if env.fail, err = parseFailStep(failStep); err != nil {
		return nil, err
	}

	target := manifestURL
	if sourceName != "" && target == "" {
		src, err := findSource(ctx, sourceName, registry.Preferences)
		if err != nil {
			return nil, err
		}
		target = src.ManifestURL()
		logging.Info("Using discovered manifest",
			zap.String("source", src.Instance),
			zap.String("url", target),
		)
	}

	switch {
	case manifestFile != "" && target != "":
		return nil, errors.New("--manifest cannot be combined with --url or --source")

	case manifestFile != "":
		loader := manifest.FileLoader{Path: manifestFile}
		m, err := loader.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load manifest: %w", err)
		}
		env.app = m
		env.origin = m.Origin()
		env.loader = loader

	case target != "":
		u, err := url.Parse(target)
		if err != nil || !u.IsAbs() {
			return nil, fmt.Errorf("invalid manifest URL %q", target)
		}
		if simulate {
			return nil, errors.New("--simulate cannot be combined with a manifest URL")
		}
		loader := manifest.NewHTTPLoader(target)
		if env.timeout > 0 {
			loader.SetTimeout(env.timeout)
		}
		env.origin = u.Host
		env.loader = loader

	default:
		env.app = manifest.Demo()
		env.origin = env.app.Origin()
	}

	env.simulated = simulate || env.loader == nil
	if env.fail != "" && !env.simulated {
		return nil, errors.New("--fail only applies to simulated operations (add --simulate)")
	}

	if deny {
		env.gate = gate.Static(false)
	} else {
		env.gate = gate.FromPreferences(env.prefs, env.origin)
	}

	logging.Debug("Widget environment ready",
		zap.String("config", registry.Path()),
		zap.String("origin", env.origin),
		zap.Bool("simulated", env.simulated),
		zap.Duration("timeout", env.timeout),
	)
	return env, nil
}

func findSource(ctx context.Context, name string, prefs *config.Preferences) (*discovery.Source, error) {
	scanner := discovery.NewScanner()
	if prefs.DiscoverTimeout > 0 {
		scanner.Timeout = time.Duration(prefs.DiscoverTimeout) * time.Second
	}
	src, err := scanner.WaitForSource(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	return src, nil
}

// operations builds the flow operations of one widget
func (e *environment) operations(post operation.Poster) flow.Operations {
	if e.simulated {
		sim := operation.NewSimulated(post)
		if e.app != nil {
			sim.App = e.app
		}
		sim.ManifestDelay = e.prefs.ManifestDelay()
		sim.InstallDelay = e.prefs.InstallDelay()
		sim.Scale = delayScale
		sim.Fail = e.fail
		sim.OnInstalled = e.recordInstall
		return sim
	}

	return &operation.Runner{
		Post:      post,
		Loader:    e.loader,
		Installer: &operation.RegistryInstaller{Registry: e.registry},
	}
}

func (e *environment) recordInstall(m *manifest.Manifest) {
	e.registry.RecordInstall(m.AppID(), m.DisplayName(), m.StartURL)
	if err := e.registry.Save(); err != nil {
		logging.Warn("Failed to save installed app", zap.Error(err))
	}
}

// navigator records launches before handing them to next
func (e *environment) navigator(next flow.Navigator) flow.Navigator {
	return &launch.Recording{Next: next, Registry: e.registry}
}

// browser opens launched apps with the platform opener
func (e *environment) browser() flow.Navigator {
	return e.navigator(launch.NewBrowser(e.prefs.OpenCommand))
}
