package idle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/martinwickman/tavs/internal/activity"
	"github.com/martinwickman/tavs/internal/logging"
	"github.com/martinwickman/tavs/internal/session"
	"github.com/martinwickman/tavs/internal/spinner"
	"github.com/martinwickman/tavs/internal/terminal"
	"github.com/martinwickman/tavs/internal/theme"
	"github.com/martinwickman/tavs/internal/title"
)

// Worker advances one terminal through the idle stages. It only ever reads
// the session record; a newer trigger bumps the record's generation, and the
// worker stops at its next check.
type Worker struct {
	Key        string
	Generation uint64
	Sessions   session.Store
	Spinners   spinner.Store
	Painter    theme.Painter
	Caps       terminal.Capabilities
	Out        io.Writer
	Durations  []int
	Tick       time.Duration

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
	Log   *slog.Logger
}

// Run draws each idle stage as it is reached and returns after the last
// one, when superseded, or when ctx ends.
func (w *Worker) Run(ctx context.Context) error {
	log := logging.OrDiscard(w.Log).With("tty", w.Key, "generation", w.Generation)
	now := w.Now
	if now == nil {
		now = time.Now
	}
	sleep := w.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	sess, ok := w.current(log)
	if !ok {
		return nil
	}
	drawn := 0
	if sess.Activity.Kind == activity.Idle {
		drawn = sess.Activity.Stage
	}
	log.Debug("idle worker started", "from", sess.Activity.String())
	sp := w.resumeSpinner(log, sess)

	for {
		if drawn >= activity.MaxIdleStage {
			log.Debug("idle worker finished")
			return nil
		}
		if err := sleep(ctx, w.Tick); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		sess, ok = w.current(log)
		if !ok {
			return nil
		}
		st := Effective(sess.Activity, sess.Elapsed(now()), w.Durations)
		target := 0
		if st.Kind == activity.Idle {
			target = st.Stage
		}
		next := sp.Advance()
		face := next.Face(w.Painter.Composer.Faces, sess.Agent)
		// Static faces only change with the stage; animated ones every tick.
		if target <= drawn && face == "" {
			continue
		}

		tw := terminal.NewWriter(w.Out, w.Caps)
		w.Painter.Paint(tw, sess, st, title.Extras{Face: face, Agent: sess.Agent})

		// A trigger may have landed while composing.
		if _, ok := w.current(log); !ok {
			return nil
		}
		if err := tw.Flush(); err != nil {
			log.Warn("idle write failed", "err", err)
			return err
		}
		if target > drawn {
			drawn = target
			log.Debug("idle stage drawn", "stage", target)
		}
		sp = next
		sp.Stage = drawn
		if err := w.Spinners.Save(w.Key, sp); err != nil {
			log.Debug("saving spinner", "err", err)
		}
	}
}

// current reloads the record and reports whether this worker still owns it.
func (w *Worker) current(log *slog.Logger) (session.State, bool) {
	sess, err := w.Sessions.Load(w.Key)
	if err != nil {
		log.Warn("reading session", "err", err)
		return sess, false
	}
	if sess.Generation != w.Generation || !sess.Activity.Idling() {
		log.Debug("idle worker superseded", "current", sess.Generation, "state", sess.Activity.String())
		return sess, false
	}
	return sess, true
}

// resumeSpinner resumes the terminal's spinner, or starts one from the settings.
func (w *Worker) resumeSpinner(log *slog.Logger, sess session.State) spinner.State {
	sp, ok, err := w.Spinners.Load(w.Key)
	if err != nil {
		log.Debug("loading spinner", "err", err)
	}
	if ok {
		return sp
	}
	s := w.Painter.Settings
	return spinner.Configure(s.SpinnerStyle, s.SpinnerEyeMode, s.SessionIdentity, sess.SessionID)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
