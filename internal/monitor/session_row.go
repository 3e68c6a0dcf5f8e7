package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/martinwickman/tavs/internal/activity"
	"github.com/martinwickman/tavs/internal/idle"
	"github.com/martinwickman/tavs/internal/session"
)

// sessionRow holds the data for one terminal: a title line and a status line.
type sessionRow struct {
	connector string
	shortID   string
	tty       string
	face      string
	status    string
	swatch    string
	detail    string
	elapsed   string
	title     string
	locked    bool
	isLast    bool
}

// columnWidths holds the computed widths for each column.
type columnWidths struct {
	conn, status, face, detail int
}

// displayState is what the terminal shows now: complete and idle records
// advance with time even though the record itself is not rewritten.
func (s Source) displayState(st session.State, now time.Time) activity.State {
	var durations []int
	if s.Settings != nil {
		durations = s.Settings.IdleDurations
	}
	return idle.Effective(st.Activity, st.Elapsed(now), durations)
}

func (s Source) newSessionRow(st session.State, isLast bool, sp spinner.Model, now time.Time) sessionRow {
	connector := "├─"
	if isLast {
		connector = "└─"
	}

	shown := s.displayState(st, now)
	indicator, label := statusDisplay(shown, sp)
	style := kindStyle(shown.Kind)

	face := ""
	if s.Faces != nil && shown.Valid() {
		agent := st.Agent
		if agent == "" && s.Settings != nil {
			agent = s.Settings.Agent
		}
		face = s.Faces.Face(agent, shown.FaceKey(), nil)
	}

	swatch := ""
	if hex := s.Palette.For(shown); hex != "" {
		swatch = lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("  ") + " " + faintStyle.Render(hex)
	}

	t := st.LastComposedTitle
	if t == "" {
		t = st.UserBaseTitle
	}

	return sessionRow{
		connector: faintStyle.Render(connector),
		shortID:   faintStyle.Render(st.SessionID),
		tty:       st.TTYPath,
		face:      face,
		status:    style.Render(indicator + " " + label),
		swatch:    swatch,
		detail:    truncate(st.Detail, 40),
		elapsed:   faintStyle.Render(session.TimeSince(st.EnteredAt, now)),
		title:     truncate(t, 70),
		locked:    st.Locked,
		isLast:    isLast,
	}
}

// render produces the title line and the status line for this row.
func (r sessionRow) render(w columnWidths) string {
	line1 := padRight(r.connector, w.conn) + " "
	if r.title != "" {
		line1 += titleTextStyle.Render(r.title)
	} else {
		line1 += faintStyle.Render("(no title)")
	}
	meta := r.shortID
	if r.tty != "" {
		meta += faintStyle.Render(" " + r.tty)
	}
	if r.locked {
		meta += faintStyle.Render(" locked")
	}
	line1 += " " + faintStyle.Render("(") + meta + faintStyle.Render(")")

	indent := faintStyle.Render("│") + "  "
	if r.isLast {
		indent = "   "
	}
	line2 := indent +
		padRight(r.status, w.status) + "  " +
		padRight(r.face, w.face) + "  " +
		padRight(r.detail, w.detail) + "  " +
		r.elapsed
	if r.swatch != "" {
		line2 += "  " + r.swatch
	}

	return line1 + "\n" + line2 + "\n"
}

// padRight pads a string (which may contain ANSI codes) to the given visible width.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

// widths returns the visible column widths for this row.
func (r sessionRow) widths() columnWidths {
	return columnWidths{
		conn:   lipgloss.Width(r.connector),
		status: lipgloss.Width(r.status),
		face:   lipgloss.Width(r.face),
		detail: lipgloss.Width(r.detail),
	}
}

// statusDisplay returns the indicator and label for a state.
func statusDisplay(st activity.State, sp spinner.Model) (indicator, label string) {
	switch st.Kind {
	case activity.Processing:
		return sp.View(), "Processing"
	case activity.Permission:
		return "◆", "Permission"
	case activity.Complete:
		return "●", "Complete"
	case activity.Compacting:
		return sp.View(), "Compacting"
	case activity.Idle:
		return "○", fmt.Sprintf("Idle %d/%d", st.Stage, activity.MaxIdleStage)
	case activity.Reset:
		return "─", "Reset"
	default:
		return "?", "Unknown"
	}
}
