// Package theme turns activity states into terminal colors and titles.
package theme

import (
	"fmt"

	"github.com/martinwickman/tavs/internal/activity"
	"github.com/martinwickman/tavs/internal/color"
	"github.com/martinwickman/tavs/internal/config"
	"github.com/martinwickman/tavs/internal/faces"
	"github.com/martinwickman/tavs/internal/terminal"
)

// Palette holds the background for each core state.
type Palette struct {
	Colors color.StageColorSet
	// Dynamic is set when Colors were derived from a base color.
	Dynamic bool
	Base    string
}

// Static returns the configured per-state colors.
func Static(s *config.Settings) Palette {
	return Palette{Colors: color.StageColorSet{
		Processing: s.StaticColor(activity.Processing),
		Permission: s.StaticColor(activity.Permission),
		Complete:   s.StaticColor(activity.Complete),
		Idle:       s.StaticColor(activity.Idle),
		Compacting: s.StaticColor(activity.Compacting),
	}}
}

// Mode picks "dark" or "light": a forced mode wins, then the detected
// appearance, and unknown appearance counts as dark.
func Mode(s *config.Settings, appearance terminal.Appearance) string {
	switch s.ForceMode {
	case "dark", "light":
		return s.ForceMode
	}
	if appearance == terminal.AppearanceLight {
		return "light"
	}
	return "dark"
}

// Resolve returns the palette for the settings. In dynamic mode the colors
// derive from the configured base, or the agent's base from the face table.
// A bad base falls back to the static colors and is reported.
func Resolve(s *config.Settings, tbl *faces.Table, appearance terminal.Appearance) (Palette, error) {
	if !s.DynamicTheme {
		return Static(s), nil
	}
	base := s.DarkBase
	if Mode(s, appearance) == "light" {
		base = s.LightBase
	}
	if base == "" && tbl != nil {
		a := tbl.Agent(s.Agent)
		base = a.DarkBase
		if Mode(s, appearance) == "light" {
			base = a.LightBase
		}
	}
	set, err := color.CalculateStateColors(base)
	if err != nil {
		return Static(s), fmt.Errorf("dynamic theme base %q: %w", base, err)
	}
	return Palette{Colors: set, Dynamic: true, Base: base}, nil
}

// For returns the background for st, or "" when the state has none. Idle
// stages blend from the complete color toward the idle color.
func (p Palette) For(st activity.State) string {
	switch st.Kind {
	case activity.Processing:
		return p.Colors.Processing
	case activity.Permission:
		return p.Colors.Permission
	case activity.Complete:
		return p.Colors.Complete
	case activity.Compacting:
		return p.Colors.Compacting
	case activity.Idle:
		hex, err := color.InterpolateHSL(p.Colors.Complete, p.Colors.Idle, st.Stage*1000/activity.MaxIdleStage)
		if err != nil {
			return p.Colors.Idle
		}
		return hex
	default:
		return ""
	}
}
