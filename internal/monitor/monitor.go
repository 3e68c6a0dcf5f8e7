// Package monitor is a live dashboard of every terminal tavs is decorating.
package monitor

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/martinwickman/tavs/internal/config"
	"github.com/martinwickman/tavs/internal/faces"
	"github.com/martinwickman/tavs/internal/session"
	"github.com/martinwickman/tavs/internal/theme"
)

// Source is where the dashboard reads records from and how it renders them.
type Source struct {
	Store    session.Store
	Settings *config.Settings
	Faces    *faces.Table
	Palette  theme.Palette
}

// tickMsg is sent on every refresh interval.
type tickMsg time.Time

// reloadMsg is sent when the state directory changes.
type reloadMsg struct{}

type watchErrMsg struct{ err error }

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// watchCmd waits for the next change in the watched directory.
func watchCmd(w *fsnotify.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case _, ok := <-w.Events:
			if !ok {
				return nil
			}
			return reloadMsg{}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return watchErrMsg{err}
		}
	}
}

// Model holds the state for the Bubble Tea program.
type Model struct {
	src     Source
	states  []session.State
	loadErr error
	spinner spinner.Model
	watcher *fsnotify.Watcher
	width   int
	now     func() time.Time
}

// New creates a monitor model. watcher may be nil, in which case the
// dashboard only refreshes on its one-second tick.
func New(src Source, watcher *fsnotify.Watcher) Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = processingStyle

	m := Model{src: src, spinner: s, watcher: watcher, now: time.Now}
	m.reload()
	return m
}

// Watch returns a watcher on the state directory, creating it if needed.
func Watch(dir string) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

func (m *Model) reload() {
	m.states, m.loadErr = m.src.Store.LoadAll()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.spinner.Tick, watchCmd(m.watcher))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.reload()
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		m.reload()
		return m, tickCmd()
	case reloadMsg:
		m.reload()
		return m, watchCmd(m.watcher)
	case watchErrMsg:
		m.loadErr = msg.err
		return m, watchCmd(m.watcher)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	return m.src.renderView(m.states, m.spinner, m.width, m.now(), m.loadErr, true)
}
