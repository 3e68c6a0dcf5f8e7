// Package terminal classifies the hosting terminal emulator and writes the
// escape sequences that change its title and colors.
package terminal

import (
	"os"
	"strconv"
	"strings"

	"github.com/martinwickman/tavs/internal/tmux"
)

// Env is a snapshot of environment variables. Detection reads only from an
// Env so it can be exercised without touching the process environment.
type Env map[string]string

// EnvFromOS snapshots the process environment.
func EnvFromOS() Env {
	env := make(Env)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// Get returns the value of key, or "".
func (e Env) Get(key string) string { return e[key] }

// Type identifies a terminal emulator family.
type Type string

const (
	ITerm2      Type = "iterm2"
	Ghostty     Type = "ghostty"
	Kitty       Type = "kitty"
	WezTerm     Type = "wezterm"
	VSCode      Type = "vscode"
	TerminalApp Type = "terminal.app"
	Unknown     Type = "unknown"
)

// Appearance is the OS light/dark preference.
type Appearance int

const (
	AppearanceUnknown Appearance = iota
	AppearanceDark
	AppearanceLight
)

func (a Appearance) String() string {
	switch a {
	case AppearanceDark:
		return "dark"
	case AppearanceLight:
		return "light"
	default:
		return "unknown"
	}
}

// Capabilities is computed once per process and never mutated.
type Capabilities struct {
	Type       Type
	TrueColor  bool
	Color256   bool
	SSH        bool
	Tmux       bool
	OSC10      bool // dynamic colors: OSC 10/11 set and OSC 111 reset
	OSC11Query bool // background can be queried
	OSC1337    bool // iTerm2 proprietary sequences, tab color
	Appearance Appearance
}

type oscSupport struct {
	osc10, osc11Query, osc1337 bool
}

var oscTable = map[Type]oscSupport{
	ITerm2:      {true, true, true},
	Ghostty:     {true, true, false},
	Kitty:       {true, true, false},
	WezTerm:     {true, true, true},
	VSCode:      {true, false, false},
	TerminalApp: {false, false, false},
	Unknown:     {true, false, false},
}

var programTypes = map[string]Type{
	"WezTerm":        WezTerm,
	"vscode":         VSCode,
	"Apple_Terminal": TerminalApp,
	"iTerm.app":      ITerm2,
	"ghostty":        Ghostty,
}

// DetectType applies the environment markers in priority order.
func DetectType(env Env) Type {
	switch {
	case env["ITERM_SESSION_ID"] != "":
		return ITerm2
	case env["GHOSTTY_RESOURCES_DIR"] != "":
		return Ghostty
	case env["TERM_PROGRAM"] == "ghostty":
		return Ghostty
	case env["KITTY_PID"] != "" || env["KITTY_WINDOW_ID"] != "":
		return Kitty
	}
	if t, ok := programTypes[env["TERM_PROGRAM"]]; ok {
		return t
	}
	return Unknown
}

// IsTrueColor reports whether COLORTERM advertises 24-bit color.
func IsTrueColor(env Env) bool {
	ct := strings.ToLower(env["COLORTERM"])
	return ct == "truecolor" || ct == "24bit"
}

// IsSSH reports whether any SSH session marker is present.
func IsSSH(env Env) bool {
	return env["SSH_TTY"] != "" || env["SSH_CLIENT"] != "" || env["SSH_CONNECTION"] != ""
}

// Detect builds the capability snapshot. probe is consulted for the OS
// appearance only when the environment does not already answer it; a nil
// probe leaves the appearance unknown.
func Detect(env Env, probe func() Appearance) Capabilities {
	t := DetectType(env)
	osc := oscTable[t]
	c := Capabilities{
		Type:       t,
		TrueColor:  IsTrueColor(env),
		Color256:   strings.Contains(env["TERM"], "256color"),
		SSH:        IsSSH(env),
		Tmux:       tmux.Available(env),
		OSC10:      osc.osc10,
		OSC11Query: osc.osc11Query,
		OSC1337:    osc.osc1337,
	}
	c.Appearance = appearanceFromColorFGBG(env["COLORFGBG"])
	if c.Appearance == AppearanceUnknown && probe != nil && !c.SSH {
		c.Appearance = probe()
	}
	return c
}

// ColorMode returns "truecolor", "256color" or "basic", in that precedence.
func (c Capabilities) ColorMode() string {
	switch {
	case c.TrueColor:
		return "truecolor"
	case c.Color256:
		return "256color"
	default:
		return "basic"
	}
}

// ShouldEnablePaletteTheming resolves the true/false/auto setting. In auto
// mode palette theming is only worth it when truecolor is unavailable but
// 256 colors are.
func (c Capabilities) ShouldEnablePaletteTheming(setting string) bool {
	switch strings.ToLower(setting) {
	case "true", "1", "yes", "on":
		return true
	case "auto":
		return !c.TrueColor && c.Color256
	default:
		return false
	}
}

// appearanceFromColorFGBG reads rxvt's "fg;bg" hint. Background indexes 0-6
// and 8 are the dark half of the ANSI palette.
func appearanceFromColorFGBG(v string) Appearance {
	if v == "" {
		return AppearanceUnknown
	}
	parts := strings.Split(v, ";")
	bg, err := strconv.Atoi(parts[len(parts)-1])
	switch {
	case err != nil || bg < 0 || bg > 15:
		return AppearanceUnknown
	case bg <= 6 || bg == 8:
		return AppearanceDark
	default:
		return AppearanceLight
	}
}
