package monitor

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/martinwickman/tavs/internal/activity"
	"github.com/martinwickman/tavs/internal/session"
)

const appName = "tavs"

// projectGroup is the set of terminals working in one directory.
type projectGroup struct {
	Project string
	States  []session.State
}

// groupByProject groups records by working directory, sorted by directory.
// Records without one share the "" group, listed last.
func groupByProject(states []session.State) []projectGroup {
	idx := map[string]int{}
	var groups []projectGroup
	for _, st := range states {
		i, ok := idx[st.Cwd]
		if !ok {
			i = len(groups)
			idx[st.Cwd] = i
			groups = append(groups, projectGroup{Project: st.Cwd})
		}
		groups[i].States = append(groups[i].States, st)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].Project, groups[j].Project
		if a == "" || b == "" {
			return b == "" && a != ""
		}
		return a < b
	})
	return groups
}

// RenderOnce produces a single snapshot for non-interactive output.
func RenderOnce(src Source, states []session.State, width int, now time.Time) string {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	return src.renderView(states, sp, width, now, nil, false)
}

func (s Source) renderView(states []session.State, sp spinner.Model, width int, now time.Time, loadErr error, interactive bool) string {
	if width == 0 {
		width = 80
	}

	if len(states) == 0 {
		out := titleStyle.Render(appName) + "\n\n" +
			faintStyle.Render("No terminals tracked.")
		if loadErr != nil {
			out += "\n" + errorStyle.Render(loadErr.Error())
		}
		if interactive {
			out += "\n" + renderHelp()
		}
		return out
	}

	groups := groupByProject(states)

	// Box width accounts for border (2) and padding (2)
	boxWidth := width - 4

	var b strings.Builder

	header := titleStyle.Render(appName) + "  " +
		countStyle.Render(fmt.Sprintf("%d projects, %d terminals", len(groups), len(states)))
	b.WriteString(header + "\n")

	b.WriteString(summaryBarStyle.Render(s.renderSummary(states, now)))
	b.WriteString("\n")

	// Build rows for all groups and compute global column widths
	groupRows := make([][]sessionRow, len(groups))
	var allRows []sessionRow
	for i, g := range groups {
		for j, st := range g.States {
			r := s.newSessionRow(st, j == len(g.States)-1, sp, now)
			groupRows[i] = append(groupRows[i], r)
			allRows = append(allRows, r)
		}
	}
	w := computeWidths(allRows)

	boxStyle := projectBoxStyle.Width(boxWidth)
	for i, g := range groups {
		b.WriteString(boxStyle.Render(renderProjectGroup(g, groupRows[i], w)) + "\n")
	}

	if loadErr != nil {
		b.WriteString(errorStyle.Render(loadErr.Error()) + "\n")
	}
	if interactive {
		b.WriteString(renderHelp())
	}
	return b.String()
}

func renderHelp() string {
	return helpStyle.Render("q quit · r reload")
}

func (s Source) renderSummary(states []session.State, now time.Time) string {
	counts := map[activity.Kind]int{}
	for _, st := range states {
		counts[s.displayState(st, now).Kind]++
	}

	var parts []string
	for _, k := range []activity.Kind{activity.Processing, activity.Permission, activity.Compacting, activity.Complete, activity.Idle} {
		if n := counts[k]; n > 0 {
			parts = append(parts, kindStyle(k).Render(fmt.Sprintf("%d %s", n, k)))
		}
	}
	return strings.Join(parts, "  ")
}

// computeWidths calculates column widths across all rows globally.
func computeWidths(allRows []sessionRow) columnWidths {
	w := columnWidths{status: 12} // fixed minimum to prevent spinner jitter
	for _, r := range allRows {
		rw := r.widths()
		w.conn = max(w.conn, rw.conn)
		w.status = max(w.status, rw.status)
		w.face = max(w.face, rw.face)
		w.detail = max(w.detail, rw.detail)
	}
	return w
}

func renderProjectGroup(g projectGroup, rows []sessionRow, w columnWidths) string {
	var b strings.Builder

	if g.Project == "" {
		b.WriteString(projectStyle.Render("(unknown directory)") + "\n")
	} else {
		b.WriteString(projectStyle.Render(filepath.Base(g.Project)) + " " + projectPathStyle.Render(g.Project) + "\n")
	}
	b.WriteString(lipgloss.NewStyle().Faint(true).Render("│") + "\n")

	for _, r := range rows {
		b.WriteString(r.render(w))
	}
	return b.String()
}
