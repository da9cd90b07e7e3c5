package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/formlens/internal/exercises"
	"github.com/2beens/formlens/internal/formcheck"
	"github.com/2beens/formlens/internal/pose"
	"github.com/2beens/formlens/internal/sessions"
	"github.com/2beens/formlens/internal/telemetry/metrics"
	"github.com/2beens/formlens/internal/telemetry/tracing"
	"github.com/2beens/formlens/internal/workouts"
	"github.com/2beens/formlens/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=analysis_mocks_test.go -package=analysis_test

const sessionIDLength = 24

type setsRecorder interface {
	Add(ctx context.Context, set workouts.Set) (*workouts.Set, error)
}

type NewServiceParams struct {
	Engine         *formcheck.Engine
	Store          sessions.Store
	Sets           setsRecorder // nil disables the workout history
	MetricsManager *metrics.Manager
	// MinRepsToRecord is the rep count a set needs to end up in the history.
	MinRepsToRecord int
}

// Service runs the form engine for many clients at once. Each session is
// loaded, advanced and saved under its own lock, so frames of one session
// are applied strictly in order.
type Service struct {
	engine          *formcheck.Engine
	store           sessions.Store
	sets            setsRecorder
	locker          *sessions.Locker
	metricsManager  *metrics.Manager
	minRepsToRecord int
}

func NewService(params NewServiceParams) *Service {
	minReps := params.MinRepsToRecord
	if minReps < 1 {
		minReps = 1
	}
	return &Service{
		engine:          params.Engine,
		store:           params.Store,
		sets:            params.Sets,
		locker:          sessions.NewLocker(),
		metricsManager:  params.MetricsManager,
		minRepsToRecord: minReps,
	}
}

func (s *Service) ListExercises() []string {
	return s.engine.ListExercises()
}

func (s *Service) Exercise(id string) (exercises.Spec, error) {
	return s.engine.Exercise(id)
}

func (s *Service) NewSessionID() (string, error) {
	return pkg.GenerateRandomString(sessionIDLength)
}

func (s *Service) Session(ctx context.Context, sid string) (*sessions.Session, error) {
	return s.store.Get(ctx, sid)
}

// SelectExercise starts a new set of exercise id in session sid, creating the
// session if needed. The set being replaced is recorded first.
func (s *Service) SelectExercise(ctx context.Context, sid, id string) (_ formcheck.State, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.analysis.select")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", sid))
	span.SetAttributes(attribute.String("exercise", id))

	unlock := s.locker.Lock(sid)
	defer unlock()

	session, err := s.loadOrNew(ctx, sid)
	if err != nil {
		return formcheck.State{}, err
	}

	state, err := s.engine.SelectExercise(session.State, id)
	if err != nil {
		return session.State, err
	}

	now := time.Now()
	s.recordSetLogged(ctx, session, now)
	session.StartSet(state, now)

	if err := s.store.Save(ctx, session); err != nil {
		return formcheck.State{}, fmt.Errorf("save session: %w", err)
	}

	return state, nil
}

// Analyze applies one landmark frame to session sid. An error is returned
// only when the session could not be loaded or saved; everything about the
// frame itself is reported in the Result.
func (s *Service) Analyze(ctx context.Context, sid string, lm pose.Landmarks, override string) (_ formcheck.Result, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.analysis.analyze")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", sid))
	span.SetAttributes(attribute.Int("landmarks", len(lm)))

	unlock := s.locker.Lock(sid)
	defer unlock()

	session, err := s.loadOrNew(ctx, sid)
	if err != nil {
		return formcheck.Result{}, err
	}

	now := time.Now()
	prev := session.State
	state, res := s.engine.Analyze(prev, lm, s.frameOverride(prev.Exercise, override))

	if state.Exercise != prev.Exercise {
		s.recordSetLogged(ctx, session, now)
		session.StartSet(state, now)
	} else {
		session.State = state
		session.UpdatedAt = now
	}
	if res.Success {
		session.Observe(res.Accuracy, now)
	}

	if err := s.store.Save(ctx, session); err != nil {
		return formcheck.Result{}, fmt.Errorf("save session: %w", err)
	}

	s.observeFrame(res, repsGained(prev, state))
	span.SetAttributes(attribute.Bool("success", res.Success))

	return res, nil
}

// EndSession records the current set and forgets the session. The recorded
// set is nil when there was nothing worth recording.
func (s *Service) EndSession(ctx context.Context, sid string) (_ *workouts.Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.analysis.end")
	defer func() {
		if errors.Is(err, sessions.ErrSessionNotFound) {
			span.End()
			return
		}
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", sid))

	unlock := s.locker.Lock(sid)
	defer unlock()

	session, err := s.store.Get(ctx, sid)
	if err != nil {
		return nil, err
	}

	// keep the session when the set is lost, so the client can retry
	set, err := s.recordSet(ctx, session, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, sid); err != nil && !errors.Is(err, sessions.ErrSessionNotFound) {
		return nil, fmt.Errorf("delete session: %w", err)
	}

	return set, nil
}

// frameOverride drops a per-frame exercise that names the current one.
// Clients send the exercise with every frame and would otherwise reset the
// count on each of them.
func (s *Service) frameOverride(current, requested string) string {
	if requested == "" || current == "" {
		return requested
	}
	if spec, err := s.engine.Exercise(requested); err == nil && spec.ID == current {
		return ""
	}
	return requested
}

func (s *Service) loadOrNew(ctx context.Context, sid string) (*sessions.Session, error) {
	session, err := s.store.Get(ctx, sid)
	if errors.Is(err, sessions.ErrSessionNotFound) {
		log.Debugf("starting new analysis session [%s]", sid)
		return sessions.New(sid, time.Now()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return session, nil
}

// recordSet stores the set currently tracked by session, if it has enough reps.
func (s *Service) recordSet(ctx context.Context, session *sessions.Session, now time.Time) (*workouts.Set, error) {
	if s.sets == nil || !session.State.HasExercise() || session.State.Reps < s.minRepsToRecord {
		return nil, nil
	}

	set, err := s.sets.Add(ctx, workouts.Set{
		SessionID:   session.ID,
		Exercise:    session.State.Exercise,
		Reps:        session.State.Reps,
		Frames:      session.Frames,
		AvgAccuracy: session.AvgAccuracy(),
		StartedAt:   session.SetStartedAt,
		FinishedAt:  now,
	})
	if errors.Is(err, workouts.ErrSetAlreadyRecorded) {
		log.Debugf("set of session [%s] started at %s already recorded", session.ID, session.SetStartedAt)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("record set: %w", err)
	}

	if s.metricsManager != nil {
		s.metricsManager.CounterRecordedSets.WithLabelValues(set.Exercise).Inc()
	}
	log.Debugf("recorded set [%d]: %s x %d", set.ID, set.Exercise, set.Reps)

	return set, nil
}

// recordSetLogged is recordSet for paths that must not fail on history errors.
func (s *Service) recordSetLogged(ctx context.Context, session *sessions.Session, now time.Time) {
	if _, err := s.recordSet(ctx, session, now); err != nil {
		log.Errorf("session [%s]: %s", session.ID, err)
	}
}

func (s *Service) observeFrame(res formcheck.Result, gained int) {
	if s.metricsManager == nil {
		return
	}

	s.metricsManager.CounterAnalyzedFrames.WithLabelValues(res.Exercise, frameOutcome(res)).Inc()
	if res.Success {
		s.metricsManager.HistogramFrameAccuracy.WithLabelValues(res.Exercise).Observe(res.Accuracy)
	}
	if gained > 0 {
		s.metricsManager.CounterRepetitions.WithLabelValues(res.Exercise).Add(float64(gained))
	}
}

func repsGained(prev, next formcheck.State) int {
	if prev.Exercise != next.Exercise {
		return next.Reps
	}
	return next.Reps - prev.Reps
}

func frameOutcome(res formcheck.Result) string {
	switch {
	case res.Success:
		return metrics.OutcomeEvaluated
	case res.Message == formcheck.MessageNoPoseDetected:
		return metrics.OutcomeNoPose
	case res.Message == formcheck.MessageNoExercise:
		return metrics.OutcomeNoExercise
	case res.Message == formcheck.MessageNotImplemented:
		return metrics.OutcomeNotImplemented
	default:
		return metrics.OutcomeFailed
	}
}
