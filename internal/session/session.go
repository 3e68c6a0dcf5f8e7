// Package session persists the per-terminal title state: one KEY="value"
// file per TTY, replaced atomically on every write.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/martinwickman/tavs/internal/activity"
	"github.com/martinwickman/tavs/internal/kvfile"
)

const (
	filePrefix   = "title-state."
	workerPrefix = "idle-worker."
	header       = "tavs title state"
	workerHeader = "tavs idle worker"
)

// State is the persisted record for one terminal.
type State struct {
	TTYKey            string
	TTYPath           string
	SessionID         string
	UserBaseTitle     string
	LastComposedTitle string
	Locked            bool
	Activity          activity.State
	EnteredAt         time.Time
	// Generation increases on every trigger. An idle worker remembers the
	// generation it was spawned for and stops once the file moves past it.
	Generation uint64
	Agent      string
	Agents     int
	Cwd        string
	// Detail is a short human description of what the agent is doing.
	Detail string
}

// New returns the defaults for a terminal with no record yet.
func New(key string) State {
	return State{TTYKey: key, SessionID: GenerateID()}
}

// Begin records a new activity: the generation advances and the entry time
// resets.
func (s *State) Begin(a activity.State, now time.Time) {
	s.Generation++
	s.Activity = a
	s.EnteredAt = now.UTC()
}

// Elapsed returns the time spent in the current activity.
func (s State) Elapsed(now time.Time) time.Duration {
	if s.EnteredAt.IsZero() {
		return 0
	}
	return max(now.Sub(s.EnteredAt), 0)
}

// GenerateID returns 8 lowercase hex characters.
func GenerateID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Dir returns the state directory: $TAVS_STATE_DIR, else
// $XDG_RUNTIME_DIR/tavs, else ~/.cache/tavs.
func Dir(env map[string]string, home string) string {
	if dir := env["TAVS_STATE_DIR"]; dir != "" {
		return dir
	}
	if rt := env["XDG_RUNTIME_DIR"]; rt != "" {
		return filepath.Join(rt, "tavs")
	}
	return filepath.Join(home, ".cache", "tavs")
}

// Store reads and writes state files in Dir.
type Store struct {
	Dir string
}

// Path returns the file holding key's state.
func (s Store) Path(key string) string {
	return filepath.Join(s.Dir, filePrefix+key)
}

// Load returns the record for key. A missing file yields fresh defaults and
// no error; an unreadable one yields fresh defaults and the read error.
func (s Store) Load(key string) (State, error) {
	m, err := kvfile.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(key), nil
		}
		return New(key), fmt.Errorf("loading state for %s: %w", key, err)
	}
	st := decode(m)
	st.TTYKey = key
	if st.SessionID == "" {
		st.SessionID = GenerateID()
	}
	return st, nil
}

// Save atomically replaces the record.
func (s Store) Save(st State) error {
	if st.TTYKey == "" {
		return errors.New("saving state: empty tty key")
	}
	if err := kvfile.WriteFile(s.Path(st.TTYKey), header, encode(st)); err != nil {
		return fmt.Errorf("saving state for %s: %w", st.TTYKey, err)
	}
	return nil
}

// Clear deletes the record. Clearing a missing record is not an error.
func (s Store) Clear(key string) error {
	err := os.Remove(s.Path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clearing state for %s: %w", key, err)
	}
	return s.ClearWorker(key)
}

// Worker is the idle worker last spawned for a terminal. It is kept in its
// own file so recording it never rewrites the title state.
type Worker struct {
	PID        int
	Generation uint64
}

// WorkerPath returns the file holding key's worker.
func (s Store) WorkerPath(key string) string {
	return filepath.Join(s.Dir, workerPrefix+key)
}

// LoadWorker returns the recorded worker for key. A missing file is the zero
// Worker and no error.
func (s Store) LoadWorker(key string) (Worker, error) {
	m, err := kvfile.ReadFile(s.WorkerPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Worker{}, nil
		}
		return Worker{}, fmt.Errorf("loading worker for %s: %w", key, err)
	}
	var w Worker
	w.PID, _ = strconv.Atoi(m["PID"])
	w.Generation, _ = strconv.ParseUint(m["GENERATION"], 10, 64)
	return w, nil
}

// SaveWorker records the worker spawned for key.
func (s Store) SaveWorker(key string, w Worker) error {
	if key == "" {
		return errors.New("saving worker: empty key")
	}
	err := kvfile.WriteFile(s.WorkerPath(key), workerHeader, []kvfile.Pair{
		pair("PID", strconv.Itoa(w.PID)),
		pair("GENERATION", strconv.FormatUint(w.Generation, 10)),
	})
	if err != nil {
		return fmt.Errorf("saving worker for %s: %w", key, err)
	}
	return nil
}

// ClearWorker forgets key's worker. A missing file is not an error.
func (s Store) ClearWorker(key string) error {
	err := os.Remove(s.WorkerPath(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clearing worker for %s: %w", key, err)
	}
	return nil
}

// LoadAll reads every record in the directory, sorted by key. Unreadable
// files are skipped.
func (s Store) LoadAll() ([]State, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var states []State
	for _, e := range entries {
		key, ok := strings.CutPrefix(e.Name(), filePrefix)
		if e.IsDir() || !ok || key == "" {
			continue
		}
		m, err := kvfile.ReadFile(filepath.Join(s.Dir, e.Name()))
		if err != nil {
			continue
		}
		st := decode(m)
		st.TTYKey = key
		states = append(states, st)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].TTYKey < states[j].TTYKey })
	return states, nil
}

// CleanupDead removes records whose terminal device no longer exists and
// returns the keys removed. Records without a device path are kept.
func (s Store) CleanupDead(exists func(path string) bool) ([]string, error) {
	states, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, st := range states {
		if st.TTYPath == "" || exists(st.TTYPath) {
			continue
		}
		if err := s.Clear(st.TTYKey); err == nil {
			removed = append(removed, st.TTYKey)
		}
	}
	return removed, nil
}

// FileExists is the default existence check for CleanupDead.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func encode(st State) []kvfile.Pair {
	entered := ""
	if !st.EnteredAt.IsZero() {
		entered = st.EnteredAt.UTC().Format(time.RFC3339Nano)
	}
	return []kvfile.Pair{
		pair("TTY_KEY", st.TTYKey),
		pair("TTY_DEVICE", st.TTYPath),
		pair("SESSION_ID", st.SessionID),
		pair("USER_BASE_TITLE", st.UserBaseTitle),
		pair("LAST_COMPOSED_TITLE", st.LastComposedTitle),
		pair("TITLE_LOCKED", strconv.FormatBool(st.Locked)),
		pair("CURRENT_STATE", st.Activity.String()),
		pair("STATE_ENTERED_AT", entered),
		pair("GENERATION", strconv.FormatUint(st.Generation, 10)),
		pair("AGENT", st.Agent),
		pair("AGENTS", strconv.Itoa(st.Agents)),
		pair("CWD", st.Cwd),
		pair("DETAIL", st.Detail),
	}
}

func pair(k, v string) kvfile.Pair { return kvfile.Pair{Key: k, Value: v} }

func decode(m map[string]string) State {
	st := State{
		TTYKey:            m["TTY_KEY"],
		TTYPath:           m["TTY_DEVICE"],
		SessionID:         m["SESSION_ID"],
		UserBaseTitle:     m["USER_BASE_TITLE"],
		LastComposedTitle: m["LAST_COMPOSED_TITLE"],
		Locked:            m["TITLE_LOCKED"] == "true",
		Agent:             m["AGENT"],
		Cwd:               m["CWD"],
		Detail:            m["DETAIL"],
	}
	if a, err := activity.Parse(m["CURRENT_STATE"]); err == nil {
		st.Activity = a
	}
	if t, err := time.Parse(time.RFC3339Nano, m["STATE_ENTERED_AT"]); err == nil {
		st.EnteredAt = t.UTC()
	}
	st.Generation, _ = strconv.ParseUint(m["GENERATION"], 10, 64)
	st.Agents, _ = strconv.Atoi(m["AGENTS"])
	return st
}

// TimeSince renders the duration between t and now for display.
func TimeSince(t, now time.Time) string {
	if t.IsZero() {
		return "?"
	}
	d := now.Sub(t)
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
