package formcheck

// RepCounter is the up/down state machine counting repetitions from the
// driver angle. Descend must be lower than Ascend.
type RepCounter struct {
	Descend float64
	Ascend  float64
}

// Advance returns the stage and rep count after observing angle.
// Up -> Down when angle drops below Descend, Down -> Up (and one more rep)
// when angle rises above Ascend. Nothing else changes the state.
func (rc RepCounter) Advance(stage Stage, reps int, angle float64) (Stage, int) {
	switch stage {
	case StageUp:
		if angle < rc.Descend {
			return StageDown, reps
		}
	case StageDown:
		if angle > rc.Ascend {
			return StageUp, reps + 1
		}
	}
	return stage, reps
}
