// Package activity defines the closed set of agent activity states.
package activity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownState is returned by Parse for names outside the state set.
var ErrUnknownState = errors.New("unknown state")

// MaxIdleStage is the deepest idle stage.
const MaxIdleStage = 5

// Kind is the activity phase without its idle stage.
type Kind int

const (
	Unknown Kind = iota
	Processing
	Permission
	Complete
	Compacting
	Reset
	Idle
)

// Kinds lists every valid kind, in display order.
var Kinds = []Kind{Processing, Permission, Complete, Compacting, Reset, Idle}

func (k Kind) String() string {
	switch k {
	case Processing:
		return "processing"
	case Permission:
		return "permission"
	case Complete:
		return "complete"
	case Compacting:
		return "compacting"
	case Reset:
		return "reset"
	case Idle:
		return "idle"
	default:
		return ""
	}
}

// State is an activity kind plus, for Idle, a stage in 0..5.
type State struct {
	Kind  Kind
	Stage int
}

// Of returns the State for a non-idle kind.
func Of(k Kind) State { return State{Kind: k} }

// IdleAt returns the idle state for stage, clamped to 0..MaxIdleStage.
func IdleAt(stage int) State {
	return State{Kind: Idle, Stage: min(max(stage, 0), MaxIdleStage)}
}

// Parse accepts the canonical state names plus "idle" and "idle_N".
func Parse(name string) (State, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, k := range Kinds {
		if name == k.String() {
			return State{Kind: k}, nil
		}
	}
	if rest, ok := strings.CutPrefix(name, "idle_"); ok {
		n, err := strconv.Atoi(rest)
		if err == nil && n >= 0 && n <= MaxIdleStage {
			return IdleAt(n), nil
		}
	}
	return State{}, fmt.Errorf("%w: %q", ErrUnknownState, name)
}

// String renders the canonical name. Idle stages render as "idle_N" except
// stage 0, which is plain "idle" so Parse(s.String()) round-trips.
func (s State) String() string {
	if s.Kind == Idle && s.Stage > 0 {
		return fmt.Sprintf("idle_%d", s.Stage)
	}
	return s.Kind.String()
}

// FaceKey is the face-table key for the state: the kind name, or "idle_N"
// for every idle stage including 0.
func (s State) FaceKey() string {
	if s.Kind == Idle {
		return fmt.Sprintf("idle_%d", s.Stage)
	}
	return s.Kind.String()
}

// Valid reports whether s names a real state.
func (s State) Valid() bool { return s.Kind != Unknown }

// Idling reports whether the idle worker should be running for s.
func (s State) Idling() bool { return s.Kind == Complete || s.Kind == Idle }
