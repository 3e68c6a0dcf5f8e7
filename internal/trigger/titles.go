package trigger

import (
	"strings"

	"github.com/martinwickman/tavs/internal/activity"
	"github.com/martinwickman/tavs/internal/session"
	"github.com/martinwickman/tavs/internal/terminal"
	"github.com/martinwickman/tavs/internal/title"
)

// SetBase remembers t as the user's own title and redraws around it. A
// title equal to the one last composed here is an echo of our own
// decoration and is ignored.
func (r *Runner) SetBase(t string) error {
	t = strings.TrimSpace(terminal.Sanitize(t))
	sess := r.load(r.log())
	if t == "" || t == sess.LastComposedTitle || t == sess.UserBaseTitle {
		return nil
	}
	sess.UserBaseTitle = t
	return r.redraw(sess)
}

// ClearBase forgets the user's title so the fallback is used again.
func (r *Runner) ClearBase() error {
	sess := r.load(r.log())
	sess.UserBaseTitle = ""
	return r.redraw(sess)
}

// Lock stops automatic title changes for the terminal.
func (r *Runner) Lock() error {
	sess := r.load(r.log())
	sess.Locked = true
	return r.Sessions.Save(sess)
}

// Unlock resumes automatic title changes and redraws.
func (r *Runner) Unlock() error {
	sess := r.load(r.log())
	sess.Locked = false
	return r.redraw(sess)
}

// Restore writes the undecorated title once, leaving state and colors alone.
func (r *Runner) Restore() error {
	sess := r.load(r.log())
	w := terminal.NewWriter(r.Out, r.Caps)
	w.SetTitle(r.Painter.Base(sess))
	return w.Flush()
}

// redraw repaints the title for the recorded state without starting a new
// generation, so a running idle worker carries on.
func (r *Runner) redraw(sess session.State) error {
	w := terminal.NewWriter(r.Out, r.Caps)
	switch {
	case !r.Painter.TitleAllowed(sess, sess.Activity):
	case !sess.Activity.Valid() || sess.Activity.Kind == activity.Reset:
		base := r.Painter.Base(sess)
		w.SetTitle(base)
		sess.LastComposedTitle = ""
	default:
		composed := r.Painter.Composer.Compose(sess.Activity, r.Painter.Base(sess), title.Extras{
			Agents:    sess.Agents,
			SessionID: sess.SessionID,
		})
		w.SetTitle(composed)
		sess.LastComposedTitle = composed
	}
	if err := w.Flush(); err != nil {
		r.log().Warn("writing to terminal", "err", err)
	}
	return r.Sessions.Save(sess)
}
