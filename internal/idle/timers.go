package idle

import (
	"strconv"
	"strings"

	ps "github.com/mitchellh/go-ps"

	"github.com/martinwickman/tavs/internal/session"
)

// ProcessName is what a worker process shows up as in the process table.
const ProcessName = "tavs"

// Timers stops idle workers. A recorded PID is only signalled after checking
// that it still belongs to a tavs process, since PIDs get reused.
type Timers struct {
	Find   func(pid int) (ps.Process, error)
	Signal func(pid int) error
	Name   string
}

// NewTimers returns Timers wired to the running system.
func NewTimers() Timers {
	return Timers{Find: ps.FindProcess, Signal: terminate, Name: ProcessName}
}

// Kill sends SIGTERM to the worker at pid. It reports whether a signal was
// sent; every failure is quiet.
func (t Timers) Kill(pid int) bool {
	if pid <= 0 || t.Find == nil || t.Signal == nil {
		return false
	}
	p, err := t.Find(pid)
	if err != nil || p == nil {
		return false
	}
	if !strings.HasPrefix(p.Executable(), t.Name) {
		return false
	}
	return t.Signal(pid) == nil
}

// CleanupStale stops workers whose record has moved on: the terminal left
// the idle states or a newer trigger replaced the generation they were
// spawned for. It returns the PIDs signalled.
func (t Timers) CleanupStale(store session.Store) []int {
	states, err := store.LoadAll()
	if err != nil {
		return nil
	}
	var killed []int
	for _, st := range states {
		w, err := store.LoadWorker(st.TTYKey)
		if err != nil || w.PID <= 0 {
			continue
		}
		if st.Activity.Idling() && w.Generation == st.Generation {
			continue
		}
		if t.Kill(w.PID) {
			killed = append(killed, w.PID)
		}
		store.ClearWorker(st.TTYKey)
	}
	return killed
}

// WorkerArgs returns the command line for a worker bound to one terminal
// and generation. agent is passed on so the worker draws the same face set
// as the trigger that spawned it.
func WorkerArgs(ttyPath, key, agent string, generation uint64) []string {
	args := []string{"idle-worker", "--tty", ttyPath, "--key", key, "--generation", strconv.FormatUint(generation, 10)}
	if agent != "" {
		args = append(args, "--agent", agent)
	}
	return args
}
