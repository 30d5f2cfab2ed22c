package launch

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/appinstall/internal/logging"
)

// Browser opens URLs with an external program
type Browser struct {
	// Command overrides the platform opener (e.g., "firefox --new-window").
	// The URL is appended as the last argument.
	Command string

	// start runs the command without waiting; replaced in tests
	start func(name string, args ...string) error
}

// NewBrowser creates a Browser using command, or the platform opener when empty
func NewBrowser(command string) *Browser {
	return &Browser{Command: command}
}

// Open launches target in a new browsing context. It returns once the
// opener process has started.
func (b *Browser) Open(target string) error {
	if err := checkURL(target); err != nil {
		return err
	}

	name, args, err := b.commandLine(target)
	if err != nil {
		return err
	}

	logging.Debug("Opening URL", zap.String("command", name), zap.Strings("args", args))

	start := b.start
	if start == nil {
		start = startDetached
	}
	if err := start(name, args...); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	return nil
}

func (b *Browser) commandLine(target string) (string, []string, error) {
	if fields := strings.Fields(b.Command); len(fields) > 0 {
		return fields[0], append(fields[1:], target), nil
	}
	return platformOpener(runtime.GOOS, target)
}

func platformOpener(goos, target string) (string, []string, error) {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{target}, nil
	case "darwin":
		return "open", []string{target}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}, nil
	default:
		return "", nil, fmt.Errorf("no URL opener known for %s", goos)
	}
}

func checkURL(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", target, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open non-web URL %q", target)
	}
	return nil
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the child so it does not linger as a zombie
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
