package formcheck

import "time"

// Stage is the phase of a repetition cycle.
type Stage string

const (
	StageUp   Stage = "up"
	StageDown Stage = "down"
)

func (s Stage) String() string {
	return string(s)
}

// Hold tracks time based exercises, held instead of repeated.
type Hold struct {
	Active   bool          `json:"active"`
	Duration time.Duration `json:"duration"`
}

// State is the mutable state of one analysis session. It is a plain value,
// owned by exactly one session and threaded through every Engine call.
type State struct {
	// Exercise is empty when no exercise is selected.
	Exercise string `json:"exercise"`
	Reps     int    `json:"reps"`
	Stage    Stage  `json:"stage"`
	Hold     Hold   `json:"hold"`
}

// NewState returns the state right after exercise is selected.
func NewState(exercise string) State {
	return State{
		Exercise: exercise,
		Reps:     0,
		Stage:    StageUp,
	}
}

func (s State) HasExercise() bool {
	return s.Exercise != ""
}
