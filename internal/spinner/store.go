package spinner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/martinwickman/tavs/internal/kvfile"
)

const filePrefix = "spinner."

// Store keeps spinner positions next to the session records.
type Store struct {
	Dir string
}

// Path returns the file holding key's spinner state.
func (s Store) Path(key string) string {
	return filepath.Join(s.Dir, filePrefix+key)
}

// Load returns the saved state. ok is false when nothing usable is stored.
func (s Store) Load(key string) (State, bool, error) {
	m, err := kvfile.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return State{}, false, nil
		}
		return State{}, false, fmt.Errorf("loading spinner for %s: %w", key, err)
	}
	st := State{
		Style:   ParseStyle(m["STYLE"]),
		EyeMode: ParseEyeMode(m["EYE_MODE"]),
		Left:    atoi(m["LEFT_INDEX"]),
		Right:   atoi(m["RIGHT_INDEX"]),
		Tick:    atoi(m["TICK"]),
		Stage:   atoi(m["STAGE"]),
	}
	return st, m["STYLE"] != "", nil
}

// Save atomically replaces the spinner state.
func (s Store) Save(key string, st State) error {
	err := kvfile.WriteFile(s.Path(key), "tavs spinner state", []kvfile.Pair{
		{Key: "STYLE", Value: string(st.Style)},
		{Key: "EYE_MODE", Value: string(st.EyeMode)},
		{Key: "LEFT_INDEX", Value: strconv.Itoa(st.Left)},
		{Key: "RIGHT_INDEX", Value: strconv.Itoa(st.Right)},
		{Key: "TICK", Value: strconv.Itoa(st.Tick)},
		{Key: "STAGE", Value: strconv.Itoa(st.Stage)},
	})
	if err != nil {
		return fmt.Errorf("saving spinner for %s: %w", key, err)
	}
	return nil
}

// Reset forgets the spinner state.
func (s Store) Reset(key string) error {
	err := os.Remove(s.Path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// atoi accepts only non-negative integers; anything else is 0.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
