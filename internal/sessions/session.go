package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/2beens/formlens/internal/formcheck"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionConflict is returned by Save when the session was changed
	// by someone else since it was loaded.
	ErrSessionConflict = errors.New("session changed concurrently")
)

// Store keeps analysis sessions between requests. Implementations expire
// sessions that were not saved for a while.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}

// Session is the engine state of one client, plus the bookkeeping of the
// set currently being performed. Version is bumped by stores that detect
// concurrent writers.
type Session struct {
	ID            string          `json:"id"`
	State         formcheck.State `json:"state"`
	SetStartedAt  time.Time       `json:"setStartedAt"`
	Frames        int             `json:"frames"`
	AccuracyTotal float64         `json:"accuracyTotal"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	Version       int64           `json:"version"`
}

func New(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		SetStartedAt: now,
		UpdatedAt:    now,
	}
}

// StartSet replaces the engine state and starts a new set bookkeeping.
func (s *Session) StartSet(state formcheck.State, now time.Time) {
	s.State = state
	s.SetStartedAt = now
	s.Frames = 0
	s.AccuracyTotal = 0
	s.UpdatedAt = now
}

// Observe books one evaluated frame.
func (s *Session) Observe(accuracy float64, now time.Time) {
	s.Frames++
	s.AccuracyTotal += accuracy
	s.UpdatedAt = now
}

// AvgAccuracy is the mean accuracy of the evaluated frames of the current set.
func (s *Session) AvgAccuracy() float64 {
	if s.Frames == 0 {
		return 0
	}
	return s.AccuracyTotal / float64(s.Frames)
}
