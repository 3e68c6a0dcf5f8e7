// Package config resolves the flat settings snapshot that drives every other
// component. Layers apply in a fixed order, each overriding the last:
// built-in defaults, the user file, the environment, call-site overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/martinwickman/tavs/internal/activity"
)

// Source names the layer a value came from.
type Source string

const (
	SourceDefault  Source = "default"
	SourceFile     Source = "file"
	SourceEnv      Source = "env"
	SourceOverride Source = "override"
)

// TitleMode controls when titles are rewritten.
type TitleMode string

const (
	TitleFull           TitleMode = "full"
	TitleSkipProcessing TitleMode = "skip-processing"
	TitleOff            TitleMode = "off"
)

// StateStyle is the per-state part of the snapshot.
type StateStyle struct {
	Enabled bool
	Color   string
	Icon    string
}

// Settings is the resolved snapshot. Build it with Load and pass it by
// pointer; nothing mutates it afterwards.
type Settings struct {
	Agent             string
	Anthropomorphise  bool
	FacePosition      string
	RandomFaces       bool
	TitleFormat       string
	TitleMode         TitleMode
	TitleFallback     string
	TitleMaxWidth     int
	RespectUserTitle  bool
	SessionIcons      bool
	TitleEnabled      bool
	BackgroundEnabled bool

	States map[activity.Kind]StateStyle

	DynamicTheme   bool
	ForceMode      string
	DarkBase       string
	LightBase      string
	PaletteTheming string

	SpinnerStyle    string
	SpinnerEyeMode  string
	SessionIdentity bool

	IdleDurations []int
	IdleTick      time.Duration

	FacesFile string
	StateDir  string
	Debug     bool

	// File is the user file that was applied, if any.
	File string

	values  map[string]string
	sources map[string]Source
}

// Options feeds Load. Env is required; the rest may be zero.
type Options struct {
	Env       map[string]string
	Home      string
	Path      string
	Overrides map[string]string
}

// Load resolves the snapshot. A broken user file never fails the load: the
// returned Settings is always usable and the error only reports what was
// skipped.
func Load(opts Options) (*Settings, error) {
	values := Defaults()
	sources := make(map[string]Source, len(values))
	for k := range values {
		sources[k] = SourceDefault
	}

	var fileErr error
	path := opts.Path
	if path == "" {
		path = FindUserFile(opts.Env, opts.Home)
	}
	if path != "" {
		fileValues, err := ReadUserFile(path)
		if err != nil {
			fileErr = fmt.Errorf("user config %s: %w", path, err)
		}
		for k, v := range fileValues {
			values[k] = v
			sources[k] = SourceFile
		}
	}

	for k, v := range opts.Env {
		if v == "" || !envKey(k, values) {
			continue
		}
		values[k] = v
		sources[k] = SourceEnv
	}
	for k, v := range opts.Overrides {
		values[k] = v
		sources[k] = SourceOverride
	}

	s := resolve(values)
	s.sources = sources
	if fileErr == nil && path != "" {
		s.File = path
	}
	return s, fileErr
}

// envKey reports whether the environment variable k is a setting: a known
// key or a per-agent base color.
func envKey(k string, known map[string]string) bool {
	if _, ok := known[k]; ok {
		return true
	}
	return strings.HasSuffix(k, "_DARK_BASE") || strings.HasSuffix(k, "_LIGHT_BASE")
}

// FindUserFile returns the first user config file that exists: $TAVS_CONFIG,
// then $XDG_CONFIG_HOME/tavs/user.conf, ~/.config/tavs/user.conf and
// ~/.tavs/user.conf.
func FindUserFile(env map[string]string, home string) string {
	var candidates []string
	if p := env["TAVS_CONFIG"]; p != "" {
		candidates = append(candidates, p)
	}
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, "tavs", "user.conf"))
	}
	if home != "" {
		candidates = append(candidates,
			filepath.Join(home, ".config", "tavs", "user.conf"),
			filepath.Join(home, ".tavs", "user.conf"),
		)
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

func resolve(v map[string]string) *Settings {
	d := Defaults()
	s := &Settings{
		Agent:             strings.ToLower(strings.TrimSpace(or(v["TAVS_AGENT"], d["TAVS_AGENT"]))),
		Anthropomorphise:  parseBool(v["ENABLE_ANTHROPOMORPHISING"], true),
		FacePosition:      facePosition(v["FACE_POSITION"]),
		RandomFaces:       strings.EqualFold(v["TAVS_FACE_MODE"], "random"),
		TitleFormat:       or(v["TAVS_TITLE_FORMAT"], d["TAVS_TITLE_FORMAT"]),
		TitleMode:         titleMode(v["TAVS_TITLE_MODE"]),
		TitleFallback:     fallbackMode(v["TAVS_TITLE_FALLBACK"]),
		TitleMaxWidth:     max(parseInt(v["TAVS_TITLE_MAX_WIDTH"], 0), 0),
		RespectUserTitle:  parseBool(v["TAVS_RESPECT_USER_TITLE"], true),
		SessionIcons:      parseBool(v["TAVS_SESSION_ICONS"], false),
		TitleEnabled:      parseBool(v["ENABLE_TITLE_PREFIX"], true),
		BackgroundEnabled: parseBool(v["ENABLE_BACKGROUND_CHANGE"], true),
		DynamicTheme:      strings.EqualFold(v["TAVS_THEME_MODE"], "dynamic"),
		ForceMode:         oneOf(strings.ToLower(v["TAVS_FORCE_MODE"]), "auto", "auto", "dark", "light"),
		PaletteTheming:    oneOf(strings.ToLower(v["ENABLE_PALETTE_THEMING"]), "false", "true", "false", "auto"),
		SpinnerStyle:      strings.ToLower(or(v["TAVS_SPINNER_STYLE"], "none")),
		SpinnerEyeMode:    strings.ToLower(or(v["TAVS_SPINNER_EYE_MODE"], "sync")),
		SessionIdentity:   parseBool(v["TAVS_SESSION_IDENTITY"], false),
		IdleDurations:     parseDurations(v["TAVS_IDLE_STAGE_DURATIONS"]),
		IdleTick:          parseTick(v["TAVS_IDLE_TICK"]),
		FacesFile:         v["TAVS_FACES_FILE"],
		StateDir:          v["TAVS_STATE_DIR"],
		Debug:             parseBool(v["TAVS_DEBUG"], false),
		States:            make(map[activity.Kind]StateStyle),
		values:            v,
	}
	if s.Agent == "" {
		s.Agent = d["TAVS_AGENT"]
	}

	agent := strings.ToUpper(s.Agent)
	s.DarkBase = or(v["DARK_BASE"], v[agent+"_DARK_BASE"])
	s.LightBase = or(v["LIGHT_BASE"], v[agent+"_LIGHT_BASE"])

	for _, k := range activity.Kinds {
		if k == activity.Reset {
			continue
		}
		name := strings.ToUpper(k.String())
		s.States[k] = StateStyle{
			Enabled: parseBool(v["ENABLE_"+name], true),
			Color:   or(v["COLOR_"+name], d["COLOR_"+name]),
			Icon:    or(v["STATUS_ICON_"+name], d["STATUS_ICON_"+name]),
		}
	}
	return s
}

// StateEnabled reports whether triggers for k should change anything.
// Reset is always enabled.
func (s *Settings) StateEnabled(k activity.Kind) bool {
	if k == activity.Reset {
		return true
	}
	st, ok := s.States[k]
	return ok && st.Enabled
}

// StatusIcon returns the icon for the state. Every idle stage shares the
// idle icon; reset has none.
func (s *Settings) StatusIcon(st activity.State) string {
	return s.States[st.Kind].Icon
}

// StaticColor returns the configured background for k, or "".
func (s *Settings) StaticColor(k activity.Kind) string {
	return s.States[k].Color
}

// Get returns the raw resolved value of key, including keys the program
// does not interpret.
func (s *Settings) Get(key string) string { return s.values[key] }

// Entry is one line of Dump.
type Entry struct {
	Key    string
	Value  string
	Source Source
}

// Dump lists every resolved key with its source, sorted by key.
func (s *Settings) Dump() []Entry {
	out := make([]Entry, 0, len(s.values))
	for k, v := range s.values {
		src := s.sources[k]
		if src == "" {
			src = SourceDefault
		}
		out = append(out, Entry{Key: k, Value: v, Source: src})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func facePosition(v string) string {
	if strings.EqualFold(strings.TrimSpace(v), "before") {
		return "before"
	}
	return "after"
}

func titleMode(v string) TitleMode {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "full", "normal", "all":
		return TitleFull
	case "off", "none", "disabled":
		return TitleOff
	default:
		return TitleSkipProcessing
	}
}

func fallbackMode(v string) string {
	return oneOf(strings.ToLower(strings.TrimSpace(v)), "path", "path", "session", "path-session", "session-path")
}

func oneOf(v, def string, allowed ...string) string {
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return def
}

func or(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func parseBool(v string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return def
	}
}

func parseInt(v string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// DefaultDurations is the idle stage table used when the configured one is
// unusable.
var DefaultDurations = []int{60, 30, 30, 30, 30, 30}

// parseDurations accepts whitespace or comma separated seconds, optionally
// wrapped in () or []. Fewer than six entries are padded with the last one.
func parseDurations(v string) []int {
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '(' || r == ')' || r == '[' || r == ']'
	})
	var out []int
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n <= 0 {
			return append([]int(nil), DefaultDurations...)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return append([]int(nil), DefaultDurations...)
	}
	for len(out) < len(DefaultDurations) {
		out = append(out, out[len(out)-1])
	}
	return out
}

const minTick = 100 * time.Millisecond

// parseTick accepts whole seconds or a Go duration string.
func parseTick(v string) time.Duration {
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		return max(time.Duration(n)*time.Second, minTick)
	}
	if d, err := time.ParseDuration(v); err == nil {
		return max(d, minTick)
	}
	return time.Second
}

// Default returns the snapshot built from defaults alone.
func Default() *Settings {
	s, _ := Load(Options{})
	return s
}
