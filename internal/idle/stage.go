// Package idle drives the slow fade from "complete" into sleep after an
// agent finishes, from a detached worker process.
package idle

import (
	"time"

	"github.com/martinwickman/tavs/internal/activity"
)

// Stage returns how many idle stages have passed after elapsed. durations
// holds the length of each stage in seconds; stage N begins once elapsed
// strictly exceeds the sum of the first N durations. The result is capped
// at activity.MaxIdleStage.
func Stage(elapsed time.Duration, durations []int) int {
	secs := elapsed.Seconds()
	sum := 0
	stage := 0
	for _, d := range durations {
		if stage >= activity.MaxIdleStage {
			break
		}
		sum += d
		if secs <= float64(sum) {
			break
		}
		stage++
	}
	return stage
}

// Effective returns the state a record shows after elapsed time in it:
// complete and idle records advance through the idle stages, everything
// else is unchanged.
func Effective(st activity.State, elapsed time.Duration, durations []int) activity.State {
	if !st.Idling() {
		return st
	}
	offset := 0
	if st.Kind == activity.Idle {
		offset = st.Stage
	}
	n := Stage(elapsed, durations)
	if st.Kind == activity.Complete && n == 0 {
		return st
	}
	return activity.IdleAt(offset + n)
}
