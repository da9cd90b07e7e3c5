package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/formlens/internal/exercises"
	"github.com/2beens/formlens/internal/formcheck"
	"github.com/2beens/formlens/internal/pose"
	"github.com/2beens/formlens/internal/workouts"
)

// ErrHistoryDisabled is returned by set queries when no workout history is configured.
var ErrHistoryDisabled = errors.New("workout history is not available")

const maxSetsPageSize = 100

// SetsRepo provides recorded workout sets (for dependency injection and testing).
type SetsRepo interface {
	List(ctx context.Context, params workouts.ListParams) (_ []workouts.Set, total int, err error)
}

// contextService provides catalog, evaluation and history data. Used by Handler for testability.
type contextService interface {
	ListExercises() []exercises.Spec
	EvaluateFrame(exercise string, lm pose.Landmarks) (formcheck.Result, error)
	ListSets(ctx context.Context, params workouts.ListParams) (*workouts.ListResponse, error)
}

// ContextService exposes the form engine and the workout history to MCP clients.
type ContextService struct {
	engine *formcheck.Engine
	sets   SetsRepo
}

// NewContextService builds a ContextService. A nil sets repo disables history queries.
func NewContextService(engine *formcheck.Engine, sets SetsRepo) *ContextService {
	return &ContextService{
		engine: engine,
		sets:   sets,
	}
}

// ListExercises returns the full catalog entries, in catalog order.
func (s *ContextService) ListExercises() []exercises.Spec {
	ids := s.engine.ListExercises()
	specs := make([]exercises.Spec, 0, len(ids))
	for _, id := range ids {
		spec, err := s.engine.Exercise(id)
		if err != nil {
			continue
		}
		specs = append(specs, spec)
	}
	return specs
}

// EvaluateFrame runs a single frame through a fresh state of exercise. Reps
// cannot be counted from one frame, so only feedback, angle and accuracy matter.
func (s *ContextService) EvaluateFrame(exercise string, lm pose.Landmarks) (formcheck.Result, error) {
	state, err := s.engine.SelectExercise(formcheck.State{}, exercise)
	if err != nil {
		return formcheck.Result{}, err
	}
	_, res := s.engine.Analyze(state, lm, "")
	return res, nil
}

// ListSets returns one page of recorded sets, newest first.
func (s *ContextService) ListSets(ctx context.Context, params workouts.ListParams) (*workouts.ListResponse, error) {
	if s.sets == nil {
		return nil, ErrHistoryDisabled
	}
	if params.Page < 1 || params.Size < 1 || params.Size > maxSetsPageSize {
		return nil, fmt.Errorf("%w (size at most %d)", workouts.ErrInvalidPage, maxSetsPageSize)
	}

	sets, total, err := s.sets.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return &workouts.ListResponse{
		Sets:  sets,
		Total: total,
	}, nil
}
