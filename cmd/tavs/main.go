package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/martinwickman/tavs/internal/activity"
	"github.com/martinwickman/tavs/internal/hook"
	"github.com/martinwickman/tavs/internal/idle"
	"github.com/martinwickman/tavs/internal/kvfile"
	"github.com/martinwickman/tavs/internal/monitor"
	"github.com/martinwickman/tavs/internal/session"
	"github.com/martinwickman/tavs/internal/terminal"
	"github.com/martinwickman/tavs/internal/theme"
	"github.com/martinwickman/tavs/internal/trigger"
)

const usage = `usage: tavs <command> [args]

commands:
  trigger <state> [--agents N] [--agent A]   apply a state to this terminal
  hook [--agent A]                           read an agent hook event on stdin
  title set <text>|clear|lock|unlock|restore manage the base title
  color <op> [args]                          color utilities (color help)
  detect                                     show detected terminal capabilities
  config                                     show resolved settings
  monitor [--once]                           dashboard of tracked terminals

states: processing permission complete compacting reset idle idle_0..idle_5
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "trigger":
		return cmdTrigger(ctx, args)
	case "hook":
		return cmdHook(ctx, args)
	case "idle-worker":
		return cmdIdleWorker(ctx, args)
	case "title":
		return cmdTitle(ctx, args)
	case "color":
		return runColor(args, os.Stdout, os.Stderr, func() theme.Palette {
			a := newApp(ctx, nil)
			defer a.Close()
			return a.palette
		})
	case "detect":
		return cmdDetect(ctx)
	case "config":
		return cmdConfig(ctx)
	case "monitor":
		return cmdMonitor(ctx, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "tavs: unknown command %q\n\n%s", cmd, usage)
		return 2
	}
}

// agentOverride turns an --agent flag into a config override.
func agentOverride(agent string) map[string]string {
	if agent == "" {
		return nil
	}
	return map[string]string{"TAVS_AGENT": agent}
}

func cmdTrigger(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("trigger", flag.ContinueOnError)
	agents := fs.Int("agents", 0, "number of agents sharing the terminal")
	agent := fs.String("agent", "", "agent identity for faces and colors")
	detail := fs.String("detail", "", "description shown by the monitor")

	// The state may come before or after the flags.
	var state string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		state, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if state == "" {
		state = fs.Arg(0)
	}
	if state == "" {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	a := newApp(ctx, agentOverride(*agent))
	defer a.Close()
	r, closer := a.runner()
	defer closer.Close()

	err := r.Run(ctx, state, trigger.Options{Agents: *agents, Detail: *detail})
	if errors.Is(err, activity.ErrUnknownState) {
		fmt.Fprintf(os.Stderr, "tavs: %v\n", err)
		return 2
	}
	return 0
}

// cmdHook always succeeds: the agent treats a failing hook as an error in
// its own session.
func cmdHook(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("hook", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	agent := fs.String("agent", "", "agent identity for faces and colors")
	fs.Parse(args)

	a := newApp(ctx, agentOverride(*agent))
	defer a.Close()
	r, closer := a.runner()
	defer closer.Close()

	timers := idle.NewTimers()
	store := a.sessions()
	err := hook.Run(ctx, os.Stdin, hook.Deps{
		Trigger: r,
		Cleanup: func() {
			if removed, err := store.CleanupDead(session.FileExists); err != nil {
				a.log.Warn("cleanup failed", "err", err)
			} else if len(removed) > 0 {
				a.log.Info("removed dead records", "keys", removed)
			}
			if killed := timers.CleanupStale(store); len(killed) > 0 {
				a.log.Info("stopped stale workers", "pids", killed)
			}
		},
		Log: a.log,
	})
	if err != nil {
		a.log.Warn("hook failed", "err", err)
	}
	return 0
}

func cmdIdleWorker(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("idle-worker", flag.ContinueOnError)
	tty := fs.String("tty", "", "terminal device")
	key := fs.String("key", "", "state key")
	gen := fs.String("generation", "0", "generation this worker belongs to")
	agent := fs.String("agent", "", "agent whose faces to draw")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	generation, err := strconv.ParseUint(*gen, 10, 64)
	if err != nil || *key == "" {
		fmt.Fprintln(os.Stderr, "tavs idle-worker: --key and a numeric --generation are required")
		return 2
	}

	a := newApp(ctx, agentOverride(*agent))
	defer a.Close()
	log := a.log.With("tty", *key)

	var out io.Writer = io.Discard
	if *tty != "" {
		f, err := terminal.OpenDevice(*tty)
		if err != nil {
			log.Warn("opening terminal", "err", err)
			return 0
		}
		defer f.Close()
		out = f
	}

	w := &idle.Worker{
		Key:        *key,
		Generation: generation,
		Sessions:   a.sessions(),
		Spinners:   a.spinners(),
		Painter:    a.painter(),
		Caps:       a.caps,
		Out:        out,
		Durations:  a.settings.IdleDurations,
		Tick:       a.settings.IdleTick,
		Log:        a.log,
	}
	if err := w.Run(ctx); err != nil {
		log.Warn("idle worker failed", "err", err)
	}
	return 0
}

func cmdTitle(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: tavs title set <text>|clear|lock|unlock|restore")
		return 2
	}
	a := newApp(ctx, nil)
	defer a.Close()
	r, closer := a.runner()
	defer closer.Close()

	var err error
	switch args[0] {
	case "set":
		err = r.SetBase(strings.Join(args[1:], " "))
	case "clear":
		err = r.ClearBase()
	case "lock":
		err = r.Lock()
	case "unlock":
		err = r.Unlock()
	case "restore":
		err = r.Restore()
	default:
		fmt.Fprintf(os.Stderr, "tavs title: unknown action %q\n", args[0])
		return 2
	}
	if err != nil {
		a.log.Warn("title command failed", "action", args[0], "err", err)
	}
	return 0
}

func cmdDetect(ctx context.Context) int {
	a := newApp(ctx, nil)
	defer a.Close()
	c := a.caps
	fmt.Printf("terminal:    %s\n", c.Type)
	fmt.Printf("color mode:  %s\n", c.ColorMode())
	fmt.Printf("appearance:  %s\n", c.Appearance)
	fmt.Printf("ssh:         %t\n", c.SSH)
	fmt.Printf("tmux:        %t\n", c.Tmux)
	fmt.Printf("osc 10/11:   %t\n", c.OSC10)
	fmt.Printf("osc 11 read: %t\n", c.OSC11Query)
	fmt.Printf("osc 1337:    %t\n", c.OSC1337)
	fmt.Printf("palette:     %t\n", c.ShouldEnablePaletteTheming(a.settings.PaletteTheming))
	if path, err := terminal.NewResolver(a.env).Path(); err == nil {
		fmt.Printf("tty:         %s (%s)\n", path, terminal.SafeKey(path))
	} else {
		fmt.Printf("tty:         %v\n", err)
	}
	fmt.Printf("state dir:   %s\n", a.stateDir)
	return 0
}

func cmdConfig(ctx context.Context) int {
	a := newApp(ctx, nil)
	defer a.Close()
	if a.settings.File != "" {
		fmt.Printf("# user file: %s\n", a.settings.File)
	}
	for _, e := range a.settings.Dump() {
		fmt.Printf("%s=\"%s\"  # %s\n", e.Key, kvfile.Escape(e.Value), e.Source)
	}
	return 0
}

func cmdMonitor(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("monitor", flag.ContinueOnError)
	once := fs.Bool("once", false, "print current state and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	a := newApp(ctx, nil)
	defer a.Close()
	src := monitor.Source{
		Store:    a.sessions(),
		Settings: a.settings,
		Faces:    a.faces,
		Palette:  a.palette,
	}

	if *once {
		states, err := src.Store.LoadAll()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		width := 80
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
		fmt.Println(monitor.RenderOnce(src, states, width, time.Now()))
		return 0
	}

	if err := os.MkdirAll(a.stateDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	w, err := monitor.Watch(a.stateDir)
	if err != nil {
		a.log.Warn("watching state dir", "err", err)
		w = nil
	} else {
		defer w.Close()
	}

	p := tea.NewProgram(monitor.New(src, w), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
