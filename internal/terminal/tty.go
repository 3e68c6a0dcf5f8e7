package terminal

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	ps "github.com/mitchellh/go-ps"
	"golang.org/x/term"
)

// ErrNoTTY is returned when no controlling terminal can be found.
var ErrNoTTY = errors.New("no controlling terminal")

// maxAncestors bounds the parent walk.
const maxAncestors = 16

// Resolver finds the terminal device that titles should be written to.
// Hooks run with stdin and stdout redirected, so the device is found through
// the process tree rather than the standard streams.
type Resolver struct {
	Env      Env
	Self     int
	TTYOf    func(pid int) string // device name relative to /dev, "" if none
	ParentOf func(pid int) int
}

// NewResolver returns a Resolver wired to the running system.
func NewResolver(env Env) Resolver {
	return Resolver{
		Env:      env,
		Self:     os.Getpid(),
		TTYOf:    psTTY,
		ParentOf: parentPID,
	}
}

// Path returns the terminal device path. TTY_DEVICE overrides discovery.
func (r Resolver) Path() (string, error) {
	if dev := r.Env["TTY_DEVICE"]; dev != "" {
		return dev, nil
	}
	pid := r.Self
	for range maxAncestors {
		if pid <= 1 {
			break
		}
		if name := r.TTYOf(pid); name != "" {
			if strings.HasPrefix(name, "/") {
				return name, nil
			}
			return "/dev/" + name, nil
		}
		pid = r.ParentOf(pid)
	}
	return "", ErrNoTTY
}

// Open resolves and opens the terminal device for writing. Devices found by
// discovery must be terminals; an explicit TTY_DEVICE may be any file.
func (r Resolver) Open() (*os.File, string, error) {
	path, err := r.Path()
	if err != nil {
		return nil, "", err
	}
	f, err := OpenDevice(path)
	if err != nil {
		return nil, path, err
	}
	if r.Env["TTY_DEVICE"] == "" && !term.IsTerminal(int(f.Fd())) {
		f.Close()
		return nil, path, fmt.Errorf("%s: %w", path, ErrNoTTY)
	}
	return f, path, nil
}

// OpenDevice opens path for writing without making it the controlling
// terminal of the calling process.
func OpenDevice(path string) (*os.File, error) {
	f, err := os.OpenFile(path, openFlags, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

// SafeKey turns a device path into a file-name-safe key:
// "/dev/pts/3" becomes "dev_pts_3".
func SafeKey(path string) string {
	key := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, strings.TrimLeft(path, "/"))
	if key == "" {
		return "unknown"
	}
	return key
}

func psTTY(pid int) string {
	out, err := exec.Command("ps", "-o", "tty=", "-p", strconv.Itoa(pid)).Output()
	if err != nil {
		return ""
	}
	name := strings.TrimSpace(string(out))
	if name == "" || strings.Trim(name, "?") == "" {
		return ""
	}
	return name
}

func parentPID(pid int) int {
	p, err := ps.FindProcess(pid)
	if err != nil || p == nil {
		return 0
	}
	return p.PPid()
}
