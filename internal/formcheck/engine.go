package formcheck

import (
	"errors"
	"fmt"

	"github.com/2beens/formlens/internal/exercises"
	"github.com/2beens/formlens/internal/pose"
)

var ErrUnknownExercise = errors.New("unknown exercise")

// Engine evaluates landmark frames against the exercise catalog.
// It holds no session data: every call takes a State and returns the next
// one, so a single Engine serves any number of concurrent sessions.
type Engine struct {
	catalog *exercises.Catalog
}

func NewEngine(catalog *exercises.Catalog) *Engine {
	return &Engine{
		catalog: catalog,
	}
}

// ListExercises returns the supported exercise identifiers, in catalog order.
func (e *Engine) ListExercises() []string {
	return e.catalog.IDs()
}

func (e *Engine) Exercise(id string) (exercises.Spec, error) {
	spec, err := e.catalog.Lookup(id)
	if err != nil {
		return exercises.Spec{}, fmt.Errorf("%w: %s", ErrUnknownExercise, id)
	}
	return spec, nil
}

// SelectExercise returns a fresh state for the exercise id (case insensitive).
// On unknown ids the given state is returned untouched, with ErrUnknownExercise.
func (e *Engine) SelectExercise(state State, id string) (State, error) {
	spec, err := e.Exercise(id)
	if err != nil {
		return state, err
	}
	return NewState(spec.ID), nil
}

// Analyze evaluates one landmark frame. A known override is selected first,
// which resets the count even when it names the current exercise; unknown
// overrides are ignored.
func (e *Engine) Analyze(state State, lm pose.Landmarks, override string) (State, Result) {
	if override != "" {
		if selected, err := e.SelectExercise(state, override); err == nil {
			state = selected
		}
	}

	if !state.HasExercise() {
		return state, noExerciseResult()
	}

	spec, err := e.catalog.Lookup(state.Exercise)
	if err != nil {
		// state restored from storage may name an exercise no longer served
		return State{}, noExerciseResult()
	}

	eval, err := spec.Rule().Evaluate(lm, spec)
	if err != nil {
		return state, failedResult(state, eval, err)
	}

	if spec.RepMode == exercises.RepModeCrossing {
		counter := RepCounter{
			Descend: spec.Crossing.Descend,
			Ascend:  spec.Crossing.Ascend,
		}
		state.Stage, state.Reps = counter.Advance(state.Stage, state.Reps, eval.Angle)
	}

	feedback := eval.Feedback
	if feedback == nil {
		feedback = []string{}
	}

	return state, Result{
		Success:  true,
		Message:  MessagePoseDetected,
		Feedback: feedback,
		Angle:    round2(eval.Angle),
		Reps:     state.Reps,
		Accuracy: round2(Accuracy(eval.Angle, spec.DriverThreshold())),
		Exercise: spec.ID,
	}
}

func noExerciseResult() Result {
	return Result{
		Success:  false,
		Message:  MessageNoExercise,
		Feedback: []string{FeedbackSelectExercise},
	}
}

// failedResult reports a frame that could not be evaluated. Numbers are
// neutral and the rep count is the unchanged one of the session.
func failedResult(state State, eval exercises.Evaluation, err error) Result {
	res := Result{
		Success:  false,
		Feedback: []string{},
		Reps:     state.Reps,
		Exercise: state.Exercise,
	}

	switch {
	case errors.Is(err, exercises.ErrMissingLandmarks):
		res.Message = MessageNoPoseDetected
	case errors.Is(err, exercises.ErrRuleNotImplemented):
		res.Message = MessageNotImplemented
		res.Feedback = []string{FeedbackNotImplemented}
		res.Angle = round2(eval.Angle)
	default:
		res.Message = fmt.Sprintf("analyze %s: %s", state.Exercise, err)
	}

	return res
}
