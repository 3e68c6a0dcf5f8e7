package terminal

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Runner executes a command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

const darkModeTimeout = 250 * time.Millisecond

// DetectSystemDarkMode asks the OS for its appearance preference. Not being
// able to tell is a normal outcome and yields AppearanceUnknown.
func DetectSystemDarkMode(ctx context.Context, goos string, run Runner) Appearance {
	ctx, cancel := context.WithTimeout(ctx, darkModeTimeout)
	defer cancel()

	switch goos {
	case "darwin":
		out, err := run(ctx, "defaults", "read", "-g", "AppleInterfaceStyle")
		if err == nil {
			if strings.Contains(strings.ToLower(string(out)), "dark") {
				return AppearanceDark
			}
			return AppearanceLight
		}
		// The key is absent in light mode, which makes defaults exit 1.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return AppearanceLight
		}
		return AppearanceUnknown
	case "linux", "freebsd", "openbsd", "netbsd":
		out, err := run(ctx, "gsettings", "get", "org.gnome.desktop.interface", "color-scheme")
		if err != nil {
			return AppearanceUnknown
		}
		v := strings.Trim(strings.TrimSpace(string(out)), "'")
		switch v {
		case "prefer-dark":
			return AppearanceDark
		case "prefer-light", "default":
			return AppearanceLight
		}
		return AppearanceUnknown
	default:
		return AppearanceUnknown
	}
}

// SystemProbe returns a probe for Detect bound to the running OS.
func SystemProbe(ctx context.Context) func() Appearance {
	return func() Appearance {
		return DetectSystemDarkMode(ctx, runtime.GOOS, ExecRunner)
	}
}
