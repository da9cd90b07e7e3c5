package formcheck

const (
	MessagePoseDetected    = "pose detected"
	MessageNoPoseDetected  = "no pose detected"
	MessageNoExercise      = "no exercise selected"
	MessageNotImplemented  = "exercise not fully implemented yet"
	FeedbackSelectExercise = "Select an exercise first"
	FeedbackNotImplemented = "Exercise not fully implemented yet"
)

// Result is the outcome of analyzing one frame.
type Result struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	Feedback []string `json:"feedback"`
	// Angle is the driver angle in degrees, rounded to 2 decimals.
	Angle float64 `json:"angle"`
	Reps  int     `json:"reps"`
	// Accuracy is in [0, 100], rounded to 2 decimals.
	Accuracy float64 `json:"accuracy"`
	Exercise string  `json:"exercise,omitempty"`
}
