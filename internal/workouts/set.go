package workouts

import "time"

// Set is one finished exercise set, as recorded when an analysis session
// switches exercise or ends.
type Set struct {
	ID          int       `json:"id"`
	SessionID   string    `json:"sessionId"`
	Exercise    string    `json:"exercise"`
	Reps        int       `json:"reps"`
	Frames      int       `json:"frames"`
	AvgAccuracy float64   `json:"avgAccuracy"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
}

func (s Set) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
