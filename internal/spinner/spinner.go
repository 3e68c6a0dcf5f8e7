// Package spinner animates the two eyes of an agent face.
package spinner

import (
	"hash/fnv"
	"math/rand/v2"
	"strings"

	"github.com/martinwickman/tavs/internal/faces"
)

// Random in either setting picks a style or eye mode once per terminal; the
// choice is then kept in the spinner file like any other.
const Random = "random"

// Style selects the glyph set the eyes cycle through.
type Style string

const (
	Braille    Style = "braille"
	Circle     Style = "circle"
	Block      Style = "block"
	EyeAnimate Style = "eye-animate"
	// None keeps the static face.
	None Style = "none"
)

var glyphs = map[Style][]string{
	Braille:    {"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	Circle:     {"◐", "◓", "◑", "◒"},
	Block:      {"▖", "▘", "▝", "▗"},
	EyeAnimate: {"•", "◦", "°", "˚", "°", "◦"},
}

// Styles lists the animated styles.
var Styles = []Style{Braille, Circle, Block, EyeAnimate}

// EyeMode relates the right eye to the left one.
type EyeMode string

const (
	Sync      EyeMode = "sync"
	Opposite  EyeMode = "opposite"
	Stagger   EyeMode = "stagger"
	Clockwise EyeMode = "clockwise"
	Counter   EyeMode = "counter"
	Mirror    EyeMode = "mirror"
	MirrorInv EyeMode = "mirror_inv"
)

// EyeModes lists every mode.
var EyeModes = []EyeMode{Sync, Opposite, Stagger, Clockwise, Counter, Mirror, MirrorInv}

// ParseStyle maps a setting to a Style. Anything unrecognised is None.
func ParseStyle(s string) Style {
	st := Style(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := glyphs[st]; ok {
		return st
	}
	return None
}

// ParseEyeMode maps a setting to an EyeMode, defaulting to Sync.
func ParseEyeMode(s string) EyeMode {
	m := EyeMode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range EyeModes {
		if m == known {
			return m
		}
	}
	return Sync
}

// State is the persisted animation position for one terminal.
type State struct {
	Style   Style
	EyeMode EyeMode
	Left    int
	Right   int
	Tick    int
	// Stage is the idle stage last drawn.
	Stage int
}

// New returns the starting position for style and mode.
func New(style Style, mode EyeMode) State {
	s := State{Style: style, EyeMode: mode}
	n := s.len()
	if n == 0 {
		return s
	}
	switch mode {
	case Stagger:
		s.Right = n / 2
	case MirrorInv:
		s.Right = n - 1
	}
	return s
}

func (s State) len() int { return len(glyphs[s.Style]) }

// Advance moves the eyes one tick.
func (s State) Advance() State {
	n := s.len()
	if n == 0 {
		return s
	}
	s.Left, s.Right = s.Left%n, s.Right%n
	switch s.EyeMode {
	case Opposite:
		s.Left = (s.Left + 1) % n
		s.Right = (s.Right - 1 + n) % n
	case Stagger:
		s.Left = (s.Left + 1) % n
		s.Right = (s.Left + n/2) % n
	case Clockwise:
		if s.Tick%2 == 0 {
			s.Left = (s.Left + 1) % n
		} else {
			s.Right = (s.Right + 1) % n
		}
	case Counter:
		if s.Tick%2 == 0 {
			s.Left = (s.Left - 1 + n) % n
		} else {
			s.Right = (s.Right - 1 + n) % n
		}
	case Mirror:
		s.Left = (s.Left + 1) % n
		s.Right = (n - s.Left) % n
	case MirrorInv:
		s.Left = (s.Left + 1) % n
		s.Right = n - 1 - s.Left
	default:
		s.Left = (s.Left + 1) % n
		s.Right = s.Left
	}
	s.Tick++
	return s
}

// Eyes returns the current glyphs. ok is false for None, meaning the caller
// should use the static face.
func (s State) Eyes() (left, right string, ok bool) {
	g := glyphs[s.Style]
	if len(g) == 0 {
		return "", "", false
	}
	return g[mod(s.Left, len(g))], g[mod(s.Right, len(g))], true
}

// Identity picks a style and eye mode from the session id so concurrent
// sessions animate differently.
func Identity(sessionID string) (Style, EyeMode) {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	sum := h.Sum32()
	return Styles[sum%uint32(len(Styles))], EyeModes[(sum/uint32(len(Styles)))%uint32(len(EyeModes))]
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}

// Configure builds the starting state from settings. With identity on, the
// session id chooses style and mode instead.
func Configure(style, mode string, identity bool, sessionID string) State {
	return configure(style, mode, identity, sessionID, rand.IntN)
}

func configure(style, mode string, identity bool, sessionID string, pick func(n int) int) State {
	st, m := ParseStyle(style), ParseEyeMode(mode)
	if isRandom(style) {
		st = Styles[pick(len(Styles))]
	}
	if isRandom(mode) {
		m = EyeModes[pick(len(EyeModes))]
	}
	if identity && sessionID != "" {
		st, m = Identity(sessionID)
	}
	return New(st, m)
}

func isRandom(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), Random)
}

// Face renders the current eyes into agent's spinner frame. It returns ""
// for None, meaning the static face applies.
func (s State) Face(tbl *faces.Table, agent string) string {
	left, right, ok := s.Eyes()
	if !ok || tbl == nil {
		return ""
	}
	return faces.Frame(tbl.SpinnerFrame(agent), left, right)
}
