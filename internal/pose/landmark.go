package pose

import "fmt"

// Point3D is a landmark position in normalized, image relative coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (p Point3D) Sub(o Point3D) Point3D {
	return Point3D{X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z - o.Z}
}

func (p Point3D) Dot(o Point3D) float64 {
	return p.X*o.X + p.Y*o.Y + p.Z*o.Z
}

func (p Point3D) Scale(f float64) Point3D {
	return Point3D{X: p.X * f, Y: p.Y * f, Z: p.Z * f}
}

func (p Point3D) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", p.X, p.Y, p.Z)
}

// Label identifies one anatomical landmark, using the MediaPipe pose
// landmark names in snake case.
type Label string

const (
	Nose           Label = "nose"
	LeftEyeInner   Label = "left_eye_inner"
	LeftEye        Label = "left_eye"
	LeftEyeOuter   Label = "left_eye_outer"
	RightEyeInner  Label = "right_eye_inner"
	RightEye       Label = "right_eye"
	RightEyeOuter  Label = "right_eye_outer"
	LeftEar        Label = "left_ear"
	RightEar       Label = "right_ear"
	MouthLeft      Label = "mouth_left"
	MouthRight     Label = "mouth_right"
	LeftShoulder   Label = "left_shoulder"
	RightShoulder  Label = "right_shoulder"
	LeftElbow      Label = "left_elbow"
	RightElbow     Label = "right_elbow"
	LeftWrist      Label = "left_wrist"
	RightWrist     Label = "right_wrist"
	LeftPinky      Label = "left_pinky"
	RightPinky     Label = "right_pinky"
	LeftIndex      Label = "left_index"
	RightIndex     Label = "right_index"
	LeftThumb      Label = "left_thumb"
	RightThumb     Label = "right_thumb"
	LeftHip        Label = "left_hip"
	RightHip       Label = "right_hip"
	LeftKnee       Label = "left_knee"
	RightKnee      Label = "right_knee"
	LeftAnkle      Label = "left_ankle"
	RightAnkle     Label = "right_ankle"
	LeftHeel       Label = "left_heel"
	RightHeel      Label = "right_heel"
	LeftFootIndex  Label = "left_foot_index"
	RightFootIndex Label = "right_foot_index"
)

// Labels lists all landmark labels in MediaPipe index order (0..32).
var Labels = []Label{
	Nose,
	LeftEyeInner, LeftEye, LeftEyeOuter,
	RightEyeInner, RightEye, RightEyeOuter,
	LeftEar, RightEar,
	MouthLeft, MouthRight,
	LeftShoulder, RightShoulder,
	LeftElbow, RightElbow,
	LeftWrist, RightWrist,
	LeftPinky, RightPinky,
	LeftIndex, RightIndex,
	LeftThumb, RightThumb,
	LeftHip, RightHip,
	LeftKnee, RightKnee,
	LeftAnkle, RightAnkle,
	LeftHeel, RightHeel,
	LeftFootIndex, RightFootIndex,
}

func (l Label) String() string {
	return string(l)
}

func (l Label) IsValid() bool {
	for _, known := range Labels {
		if l == known {
			return true
		}
	}
	return false
}

// Landmarks is the landmark set of one subject in one frame.
// It is owned by the caller and never modified here.
type Landmarks map[Label]Point3D

// Missing returns the first label from required that is not present, or
// an empty label and false when the set is complete.
func (lm Landmarks) Missing(required []Label) (Label, bool) {
	for _, label := range required {
		if _, ok := lm[label]; !ok {
			return label, true
		}
	}
	return "", false
}

// UnknownLabels counts the labels outside the 33 point pose model. They are
// carried along but never read by the form rules.
func (lm Landmarks) UnknownLabels() int {
	n := 0
	for label := range lm {
		if !label.IsValid() {
			n++
		}
	}
	return n
}
