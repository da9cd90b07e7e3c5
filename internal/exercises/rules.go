package exercises

import (
	"errors"
	"fmt"

	"github.com/2beens/formlens/internal/pose"
)

var (
	ErrMissingLandmarks   = errors.New("missing landmarks")
	ErrRuleNotImplemented = errors.New("exercise not fully implemented yet")
)

// angle names, keys of Spec.Thresholds
const (
	AngleKnee      = "knee"
	AngleElbow     = "elbow"
	AngleHip       = "hip"
	AngleFrontKnee = "front_knee"
	AngleBackKnee  = "back_knee"
)

const (
	FeedbackKneesBentTooMuch    = "Knees bent too much, try not to go too deep"
	FeedbackSquatNotDeepEnough  = "Not deep enough, lower your body more"
	FeedbackKneesTooWide        = "Knees too wide, keep them aligned with shoulders"
	FeedbackKneesCavingIn       = "Knees caving in, push them outward"
	FeedbackArmsBentTooMuch     = "Arms bent too much, push higher"
	FeedbackPushupNotDeepEnough = "Not deep enough, lower your chest more"
	FeedbackHipsSagging         = "Keep your body straight, hips sagging"
	FeedbackHipsTooHigh         = "Keep your body straight, hips too high"
)

const (
	// knees wider than this many hip widths are too wide
	kneesWideRatio = 1.5
	// knees narrower than this many ankle widths are caving in
	kneesCavingRatio = 0.8

	hipSagAngle  = 160
	hipHighAngle = 200
)

// Evaluation is the outcome of a form rule for one frame.
type Evaluation struct {
	// Feedback messages, in rule evaluation order.
	Feedback []string
	// Angle is the driver angle in degrees.
	Angle float64
	// Angles holds every angle computed, by name.
	Angles map[string]float64
}

// FormRule evaluates the form of one exercise from a landmark set.
type FormRule interface {
	Evaluate(lm pose.Landmarks, spec Spec) (Evaluation, error)
}

func requireLandmarks(lm pose.Landmarks, spec Spec) error {
	if label, missing := lm.Missing(spec.Required); missing {
		return fmt.Errorf("%w: %s needs %s", ErrMissingLandmarks, spec.ID, label)
	}
	return nil
}

func kneeAngles(lm pose.Landmarks) (left, right float64) {
	left = pose.AngleAt(lm[pose.LeftHip], lm[pose.LeftKnee], lm[pose.LeftAnkle])
	right = pose.AngleAt(lm[pose.RightHip], lm[pose.RightKnee], lm[pose.RightAnkle])
	return left, right
}

func elbowAngles(lm pose.Landmarks) (left, right float64) {
	left = pose.AngleAt(lm[pose.LeftShoulder], lm[pose.LeftElbow], lm[pose.LeftWrist])
	right = pose.AngleAt(lm[pose.RightShoulder], lm[pose.RightElbow], lm[pose.RightWrist])
	return left, right
}

// bodyLineAngle is the angle at the hips midpoint, between the shoulders
// midpoint and the ankles midpoint. A straight body gives 180.
func bodyLineAngle(lm pose.Landmarks) float64 {
	shoulderMid := pose.Midpoint(lm[pose.LeftShoulder], lm[pose.RightShoulder])
	hipMid := pose.Midpoint(lm[pose.LeftHip], lm[pose.RightHip])
	ankleMid := pose.Midpoint(lm[pose.LeftAnkle], lm[pose.RightAnkle])
	return pose.AngleAt(shoulderMid, hipMid, ankleMid)
}

type squatRule struct{}

func (squatRule) Evaluate(lm pose.Landmarks, spec Spec) (Evaluation, error) {
	if err := requireLandmarks(lm, spec); err != nil {
		return Evaluation{}, err
	}

	left, right := kneeAngles(lm)
	kneeAngle := (left + right) / 2

	var feedback []string
	if msg, ok := squatDepthFeedback(kneeAngle, spec.Thresholds[AngleKnee]); ok {
		feedback = append(feedback, msg)
	}

	hipWidth := pose.HorizontalDistance(lm[pose.LeftHip], lm[pose.RightHip])
	kneeWidth := pose.HorizontalDistance(lm[pose.LeftKnee], lm[pose.RightKnee])
	ankleWidth := pose.HorizontalDistance(lm[pose.LeftAnkle], lm[pose.RightAnkle])
	if msg, ok := squatAlignmentFeedback(hipWidth, kneeWidth, ankleWidth); ok {
		feedback = append(feedback, msg)
	}

	return Evaluation{
		Feedback: feedback,
		Angle:    kneeAngle,
		Angles: map[string]float64{
			AngleKnee: kneeAngle,
		},
	}, nil
}

func squatDepthFeedback(kneeAngle float64, th Threshold) (string, bool) {
	switch {
	case kneeAngle < th.Min:
		return FeedbackKneesBentTooMuch, true
	case kneeAngle > th.Max:
		return FeedbackSquatNotDeepEnough, true
	default:
		return "", false
	}
}

func squatAlignmentFeedback(hipWidth, kneeWidth, ankleWidth float64) (string, bool) {
	switch {
	case kneeWidth > hipWidth*kneesWideRatio:
		return FeedbackKneesTooWide, true
	case kneeWidth < ankleWidth*kneesCavingRatio:
		return FeedbackKneesCavingIn, true
	default:
		return "", false
	}
}

type pushupRule struct{}

func (pushupRule) Evaluate(lm pose.Landmarks, spec Spec) (Evaluation, error) {
	if err := requireLandmarks(lm, spec); err != nil {
		return Evaluation{}, err
	}

	left, right := elbowAngles(lm)
	elbowAngle := (left + right) / 2

	var feedback []string
	th := spec.Thresholds[AngleElbow]
	switch {
	case elbowAngle < th.Min:
		feedback = append(feedback, FeedbackArmsBentTooMuch)
	case elbowAngle > th.Max:
		feedback = append(feedback, FeedbackPushupNotDeepEnough)
	}

	hipAngle := bodyLineAngle(lm)
	if msg, ok := pushupHipFeedback(hipAngle); ok {
		feedback = append(feedback, msg)
	}

	return Evaluation{
		Feedback: feedback,
		Angle:    elbowAngle,
		Angles: map[string]float64{
			AngleElbow: elbowAngle,
			AngleHip:   hipAngle,
		},
	}, nil
}

// pushupHipFeedback keeps the historical 200 degrees upper bound. AngleAt
// never exceeds 180, so the "too high" branch only fires for callers
// feeding a directional (0-360) angle.
func pushupHipFeedback(hipAngle float64) (string, bool) {
	switch {
	case hipAngle < hipSagAngle:
		return FeedbackHipsSagging, true
	case hipAngle > hipHighAngle:
		return FeedbackHipsTooHigh, true
	default:
		return "", false
	}
}

// The rules below only report the driver angle; their feedback and rep
// logic is not written yet, so they always return ErrRuleNotImplemented.

type lungeRule struct{}

func (lungeRule) Evaluate(lm pose.Landmarks, spec Spec) (Evaluation, error) {
	if err := requireLandmarks(lm, spec); err != nil {
		return Evaluation{}, err
	}

	// the more bent knee is taken as the front one
	front, back := kneeAngles(lm)
	if back < front {
		front, back = back, front
	}

	return Evaluation{
		Angle: front,
		Angles: map[string]float64{
			AngleFrontKnee: front,
			AngleBackKnee:  back,
		},
	}, ErrRuleNotImplemented
}

type plankRule struct{}

func (plankRule) Evaluate(lm pose.Landmarks, spec Spec) (Evaluation, error) {
	if err := requireLandmarks(lm, spec); err != nil {
		return Evaluation{}, err
	}

	hipAngle := bodyLineAngle(lm)
	return Evaluation{
		Angle: hipAngle,
		Angles: map[string]float64{
			AngleHip: hipAngle,
		},
	}, ErrRuleNotImplemented
}

type armAngleStubRule struct{}

func (armAngleStubRule) Evaluate(lm pose.Landmarks, spec Spec) (Evaluation, error) {
	if err := requireLandmarks(lm, spec); err != nil {
		return Evaluation{}, err
	}

	left, right := elbowAngles(lm)
	elbowAngle := (left + right) / 2
	return Evaluation{
		Angle: elbowAngle,
		Angles: map[string]float64{
			AngleElbow: elbowAngle,
		},
	}, ErrRuleNotImplemented
}
