// Package trigger applies one activity change to a terminal: it updates the
// persisted record, repaints the title and colors in a single write, and
// hands the idle states over to a background worker.
package trigger

import (
	"cmp"
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/martinwickman/tavs/internal/activity"
	"github.com/martinwickman/tavs/internal/config"
	"github.com/martinwickman/tavs/internal/faces"
	"github.com/martinwickman/tavs/internal/logging"
	"github.com/martinwickman/tavs/internal/session"
	"github.com/martinwickman/tavs/internal/spinner"
	"github.com/martinwickman/tavs/internal/terminal"
	"github.com/martinwickman/tavs/internal/theme"
	"github.com/martinwickman/tavs/internal/title"
)

// Options carries per-invocation inputs.
type Options struct {
	// Agents is the number of agents sharing the terminal; 0 keeps the
	// recorded count.
	Agents int
	// Cwd replaces the runner's working directory when set.
	Cwd string
	// Detail describes the activity for the dashboard.
	Detail string
}

// Runner holds everything a trigger touches. Only Run's parse error is ever
// returned; every other failure is logged and degrades.
type Runner struct {
	Settings *config.Settings
	Faces    *faces.Table
	Caps     terminal.Capabilities
	Painter  theme.Painter
	Sessions session.Store
	Spinners spinner.Store
	Out      io.Writer
	Key      string
	TTYPath  string
	Cwd      string

	// Spawn starts an idle worker and returns its PID.
	Spawn func(ttyPath, key string, generation uint64) (int, error)
	// Kill stops a previous idle worker.
	Kill func(pid int) bool
	Now  func() time.Time
	Log  *slog.Logger
}

func (r *Runner) log() *slog.Logger {
	return logging.OrDiscard(r.Log).With("tty", r.Key)
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Run applies the named state. An unknown name returns an error wrapping
// activity.ErrUnknownState and changes nothing.
func (r *Runner) Run(ctx context.Context, name string, opts Options) error {
	st, err := activity.Parse(name)
	if err != nil {
		return err
	}
	log := r.log().With("state", st.String())

	sess := r.load(log)
	r.stopWorker(log)
	sess.Begin(st, r.now())
	if r.TTYPath != "" {
		sess.TTYPath = r.TTYPath
	}
	if cwd := cmp.Or(opts.Cwd, r.Cwd); cwd != "" {
		sess.Cwd = cwd
	}
	sess.Detail = opts.Detail
	sess.Agent = r.Settings.Agent
	if opts.Agents > 0 {
		sess.Agents = opts.Agents
	}

	// A disabled state still takes a generation, which retires any idle
	// worker, but draws nothing.
	enabled := r.Settings.StateEnabled(st.Kind)
	if enabled {
		r.draw(log, &sess, st)
	} else {
		log.Debug("state disabled, recording only")
	}
	if err := r.Sessions.Save(sess); err != nil {
		log.Warn("saving session", "err", err)
		return nil
	}
	log.Debug("trigger applied", "generation", sess.Generation)

	if enabled && st.Idling() && st.Stage < activity.MaxIdleStage && r.Settings.StateEnabled(activity.Idle) {
		r.startWorker(log, sess.Generation)
	}
	return nil
}

func (r *Runner) draw(log *slog.Logger, sess *session.State, st activity.State) {
	w := terminal.NewWriter(r.Out, r.Caps)
	if st.Kind == activity.Reset {
		r.Painter.Restore(w, *sess)
		sess.LastComposedTitle = ""
		if err := r.Spinners.Reset(r.Key); err != nil {
			log.Debug("resetting spinner", "err", err)
		}
	} else {
		x := title.Extras{Face: r.spinnerFace(log, *sess, st)}
		if composed := r.Painter.Paint(w, *sess, st, x); composed != "" {
			sess.LastComposedTitle = composed
		}
	}
	if err := w.Flush(); err != nil {
		log.Warn("writing to terminal", "err", err)
	}
}

func (r *Runner) load(log *slog.Logger) session.State {
	sess, err := r.Sessions.Load(r.Key)
	if err != nil {
		log.Warn("loading session, using defaults", "err", err)
	}
	return sess
}

func (r *Runner) stopWorker(log *slog.Logger) {
	w, err := r.Sessions.LoadWorker(r.Key)
	if err != nil {
		log.Debug("reading idle worker", "err", err)
	}
	if w.PID <= 0 {
		return
	}
	if r.Kill != nil && r.Kill(w.PID) {
		log.Debug("stopped idle worker", "pid", w.PID)
	}
	if err := r.Sessions.ClearWorker(r.Key); err != nil {
		log.Debug("forgetting idle worker", "err", err)
	}
}

// startWorker spawns the idle worker and records it next to the session.
// The title state itself is not touched, so a trigger racing with this one
// cannot be overwritten.
func (r *Runner) startWorker(log *slog.Logger, generation uint64) {
	if r.Spawn == nil || r.TTYPath == "" {
		return
	}
	pid, err := r.Spawn(r.TTYPath, r.Key, generation)
	if err != nil {
		log.Warn("spawning idle worker", "err", err)
		return
	}
	if err := r.Sessions.SaveWorker(r.Key, session.Worker{PID: pid, Generation: generation}); err != nil {
		log.Warn("recording idle worker", "err", err)
	}
}

// spinnerFace advances the spinner and renders the agent's frame while
// processing. It returns "" when the static face should be used.
func (r *Runner) spinnerFace(log *slog.Logger, sess session.State, st activity.State) string {
	if st.Kind != activity.Processing || r.Faces == nil {
		return ""
	}
	sp, ok, err := r.Spinners.Load(r.Key)
	if err != nil {
		log.Debug("loading spinner", "err", err)
	}
	if !ok {
		s := r.Settings
		sp = spinner.Configure(s.SpinnerStyle, s.SpinnerEyeMode, s.SessionIdentity, sess.SessionID)
	}
	sp = sp.Advance()
	face := sp.Face(r.Faces, r.Settings.Agent)
	if face == "" {
		return ""
	}
	if err := r.Spinners.Save(r.Key, sp); err != nil {
		log.Debug("saving spinner", "err", err)
	}
	return face
}

// Teardown restores the terminal and forgets it. It runs when the agent
// session ends.
func (r *Runner) Teardown(ctx context.Context) {
	log := r.log()
	sess := r.load(log)
	r.stopWorker(log)
	w := terminal.NewWriter(r.Out, r.Caps)
	r.Painter.Restore(w, sess)
	if err := w.Flush(); err != nil {
		log.Warn("writing to terminal", "err", err)
	}
	if err := r.Sessions.Clear(r.Key); err != nil {
		log.Warn("clearing session", "err", err)
	}
	if err := r.Spinners.Reset(r.Key); err != nil {
		log.Debug("resetting spinner", "err", err)
	}
}
