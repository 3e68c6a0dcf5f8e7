package theme

import (
	"github.com/martinwickman/tavs/internal/activity"
	"github.com/martinwickman/tavs/internal/color"
	"github.com/martinwickman/tavs/internal/config"
	"github.com/martinwickman/tavs/internal/session"
	"github.com/martinwickman/tavs/internal/terminal"
	"github.com/martinwickman/tavs/internal/title"
)

// paletteSlot is the ANSI color rewritten when palette theming is on.
const paletteSlot = 0

// Painter queues the title and colors for a state onto a Writer. It does
// not flush.
type Painter struct {
	Settings *config.Settings
	Composer title.Composer
	Palette  Palette
	// PaletteTheming also retints ANSI color 0.
	PaletteTheming bool
	Home           string
}

// NewPainter wires a painter for the given capabilities.
func NewPainter(s *config.Settings, c title.Composer, p Palette, caps terminal.Capabilities, home string) Painter {
	return Painter{
		Settings:       s,
		Composer:       c,
		Palette:        p,
		PaletteTheming: caps.ShouldEnablePaletteTheming(s.PaletteTheming),
		Home:           home,
	}
}

// TitleAllowed reports whether st may change the title of sess.
func (p Painter) TitleAllowed(sess session.State, st activity.State) bool {
	s := p.Settings
	switch {
	case !s.TitleEnabled, s.TitleMode == config.TitleOff, sess.Locked && s.RespectUserTitle:
		return false
	case s.TitleMode == config.TitleSkipProcessing && st.Kind == activity.Processing:
		return false
	}
	return true
}

// Base returns the undecorated title for sess.
func (p Painter) Base(sess session.State) string {
	return title.Base(sess.UserBaseTitle, p.Settings.TitleFallback, sess.Cwd, p.Home, sess.SessionID)
}

// Paint queues st and returns the composed title, or "" when the title was
// left alone.
func (p Painter) Paint(w *terminal.Writer, sess session.State, st activity.State, x title.Extras) string {
	composed := ""
	if p.TitleAllowed(sess, st) {
		if x.SessionID == "" {
			x.SessionID = sess.SessionID
		}
		if x.Agents == 0 {
			x.Agents = sess.Agents
		}
		if x.Agent == "" {
			x.Agent = sess.Agent
		}
		composed = p.Composer.Compose(st, p.Base(sess), x)
		w.SetTitle(composed)
	}
	if p.Settings.BackgroundEnabled {
		if hex, err := color.Normalize(p.Palette.For(st)); err == nil {
			w.SetBackground(hex)
			w.SetTabColor(hex)
			if p.PaletteTheming {
				w.SetPalette(paletteSlot, hex)
			}
		}
	}
	return composed
}

// Restore queues the undecorated title and the profile colors. It returns
// the title written, or "".
func (p Painter) Restore(w *terminal.Writer, sess session.State) string {
	restored := ""
	s := p.Settings
	if s.TitleEnabled && s.TitleMode != config.TitleOff && !(sess.Locked && s.RespectUserTitle) {
		restored = p.Base(sess)
		w.SetTitle(restored)
	}
	w.ResetBackground()
	w.ResetTabColor()
	if p.PaletteTheming {
		w.ResetPalette()
	}
	return restored
}
