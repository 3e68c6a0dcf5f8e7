package main

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/martinwickman/tavs/internal/config"
	"github.com/martinwickman/tavs/internal/faces"
	"github.com/martinwickman/tavs/internal/idle"
	"github.com/martinwickman/tavs/internal/logging"
	"github.com/martinwickman/tavs/internal/session"
	"github.com/martinwickman/tavs/internal/spinner"
	"github.com/martinwickman/tavs/internal/terminal"
	"github.com/martinwickman/tavs/internal/theme"
	"github.com/martinwickman/tavs/internal/title"
	"github.com/martinwickman/tavs/internal/trigger"
)

// app is the per-process snapshot every subcommand starts from.
type app struct {
	env      terminal.Env
	home     string
	settings *config.Settings
	faces    *faces.Table
	caps     terminal.Capabilities
	palette  theme.Palette
	stateDir string
	log      *slog.Logger
	closeLog io.Closer
}

// newApp resolves configuration, face tables and terminal capabilities.
// Nothing here fails: broken inputs are logged and replaced by defaults.
func newApp(ctx context.Context, overrides map[string]string) *app {
	env := terminal.EnvFromOS()
	home, _ := os.UserHomeDir()

	settings, cfgErr := config.Load(config.Options{Env: env, Home: home, Overrides: overrides})
	dir := session.Dir(env, home)
	log, closer := logging.New(dir, settings.Debug, slog.LevelDebug)
	if cfgErr != nil {
		log.Warn("config degraded", "err", cfgErr)
	}

	tbl, err := faces.Load(settings.FacesFile)
	if err != nil {
		log.Warn("faces degraded", "err", err)
	}
	if tbl == nil {
		tbl = &faces.Table{Agents: map[string]faces.Agent{}}
	}

	var probe func() terminal.Appearance
	if settings.DynamicTheme {
		probe = terminal.SystemProbe(ctx)
	}
	caps := terminal.Detect(env, probe)

	palette, err := theme.Resolve(settings, tbl, caps.Appearance)
	if err != nil {
		log.Warn("palette degraded", "err", err)
	}

	return &app{
		env:      env,
		home:     home,
		settings: settings,
		faces:    tbl,
		caps:     caps,
		palette:  palette,
		stateDir: dir,
		log:      log,
		closeLog: closer,
	}
}

func (a *app) Close() error { return a.closeLog.Close() }

func (a *app) sessions() session.Store { return session.Store{Dir: a.stateDir} }
func (a *app) spinners() spinner.Store { return spinner.Store{Dir: a.stateDir} }

func (a *app) painter() theme.Painter {
	c := title.Composer{Settings: a.settings, Faces: a.faces, Pick: rand.IntN}
	return theme.NewPainter(a.settings, c, a.palette, a.caps, a.home)
}

// runner binds a trigger runner to the terminal this process belongs to.
// Without one, state is still recorded and nothing is drawn. The returned
// closer releases the device.
func (a *app) runner() (*trigger.Runner, io.Closer) {
	var out io.Writer = io.Discard
	var closer io.Closer = nopCloser{}

	f, path, err := terminal.NewResolver(a.env).Open()
	key := terminal.SafeKey(path)
	if err != nil {
		a.log.Info("no terminal, drawing nothing", "err", err)
		path = ""
	} else {
		out, closer = f, f
	}

	cwd, _ := os.Getwd()
	exe, _ := os.Executable()
	timers := idle.NewTimers()

	return &trigger.Runner{
		Settings: a.settings,
		Faces:    a.faces,
		Caps:     a.caps,
		Painter:  a.painter(),
		Sessions: a.sessions(),
		Spinners: a.spinners(),
		Out:      out,
		Key:      key,
		TTYPath:  path,
		Cwd:      cwd,
		Spawn: func(ttyPath, key string, generation uint64) (int, error) {
			return idle.Spawn(exe, idle.WorkerArgs(ttyPath, key, a.settings.Agent, generation), os.Environ())
		},
		Kill: timers.Kill,
		Log:  a.log,
	}, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
