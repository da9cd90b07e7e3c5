package exercises

import (
	"errors"
	"fmt"
	"strings"

	"github.com/2beens/formlens/internal/pose"
)

var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrInvalidCatalog   = errors.New("invalid exercise catalog")
)

var ExerciseID = struct {
	Squat         string
	Pushup        string
	Lunge         string
	Plank         string
	BicepCurl     string
	ShoulderPress string
}{
	Squat:         "squat",
	Pushup:        "pushup",
	Lunge:         "lunge",
	Plank:         "plank",
	BicepCurl:     "bicep_curl",
	ShoulderPress: "shoulder_press",
}

// Threshold holds the accepted range and the ideal value of an angle, in degrees.
type Threshold struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Ideal float64 `json:"ideal"`
}

// RepMode tells how repetitions are detected from the driver angle.
type RepMode string

const (
	// RepModeNone means repetitions are not counted (yet) for the exercise.
	RepModeNone RepMode = "none"
	// RepModeCrossing counts one rep on an up -> down -> up cycle of the driver angle.
	RepModeCrossing RepMode = "crossing"
	// RepModeHold is used by time based exercises, held instead of repeated.
	RepModeHold RepMode = "hold"
)

// Crossing holds the descend/ascend thresholds for RepModeCrossing.
// Descend must be lower than Ascend, the gap keeps noisy angles from double counting.
type Crossing struct {
	Descend float64 `json:"descend"`
	Ascend  float64 `json:"ascend"`
}

type Spec struct {
	ID          string               `json:"id"`
	Description string               `json:"description"`
	Required    []pose.Label         `json:"required"`
	Thresholds  map[string]Threshold `json:"thresholds"`
	// Driver names the angle (key in Thresholds) driving reps and accuracy.
	Driver   string   `json:"driver"`
	RepMode  RepMode  `json:"repMode"`
	Crossing Crossing `json:"crossing"`

	rule FormRule
}

// DriverThreshold returns the threshold triple of the driver angle.
func (s Spec) DriverThreshold() Threshold {
	return s.Thresholds[s.Driver]
}

// Rule returns the form rule evaluating this exercise.
func (s Spec) Rule() FormRule {
	return s.rule
}

// WithRule returns a copy of the spec evaluated by rule.
func (s Spec) WithRule(rule FormRule) Spec {
	s.rule = rule
	return s
}

// Catalog is the read-only registry of supported exercises.
// It is never mutated after NewCatalog returns, so it can be shared between sessions.
type Catalog struct {
	specs map[string]Spec
	ids   []string
}

func NewCatalog(specs ...Spec) (*Catalog, error) {
	c := &Catalog{
		specs: make(map[string]Spec, len(specs)),
		ids:   make([]string, 0, len(specs)),
	}
	for _, spec := range specs {
		id := normalizeID(spec.ID)
		if _, exists := c.specs[id]; exists {
			return nil, fmt.Errorf("%w: duplicate exercise %q", ErrInvalidCatalog, id)
		}
		spec.ID = id
		c.specs[id] = spec
		c.ids = append(c.ids, id)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate checks that every exercise can actually be evaluated.
func (c *Catalog) Validate() error {
	for _, id := range c.ids {
		spec := c.specs[id]
		if spec.rule == nil {
			return fmt.Errorf("%w: %s has no form rule", ErrInvalidCatalog, id)
		}
		if len(spec.Required) == 0 {
			return fmt.Errorf("%w: %s has no required landmarks", ErrInvalidCatalog, id)
		}
		if _, ok := spec.Thresholds[spec.Driver]; !ok {
			return fmt.Errorf("%w: %s driver angle %q has no threshold", ErrInvalidCatalog, id, spec.Driver)
		}
		for name, th := range spec.Thresholds {
			if th.Min > th.Max || th.Ideal < th.Min || th.Ideal > th.Max {
				return fmt.Errorf("%w: %s threshold %q out of order", ErrInvalidCatalog, id, name)
			}
		}
		if spec.RepMode == RepModeCrossing && spec.Crossing.Descend >= spec.Crossing.Ascend {
			return fmt.Errorf("%w: %s descend must be lower than ascend", ErrInvalidCatalog, id)
		}
	}
	return nil
}

// Lookup finds an exercise by its identifier, ignoring case.
func (c *Catalog) Lookup(id string) (Spec, error) {
	spec, ok := c.specs[normalizeID(id)]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s", ErrExerciseNotFound, id)
	}
	return spec, nil
}

// IDs returns the exercise identifiers in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.ids))
	copy(ids, c.ids)
	return ids
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

var (
	legLandmarks = []pose.Label{
		pose.LeftHip, pose.LeftKnee, pose.LeftAnkle,
		pose.RightHip, pose.RightKnee, pose.RightAnkle,
	}
	armLandmarks = []pose.Label{
		pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist,
		pose.RightShoulder, pose.RightElbow, pose.RightWrist,
	}
	bodyLineLandmarks = []pose.Label{
		pose.LeftShoulder, pose.RightShoulder,
		pose.LeftHip, pose.RightHip,
		pose.LeftAnkle, pose.RightAnkle,
	}
)

// DefaultSpecs returns the built-in exercises, in catalog order.
func DefaultSpecs() []Spec {
	return []Spec{
		{
			ID:          ExerciseID.Squat,
			Description: "Stand with feet shoulder-width apart, lower your body until thighs are parallel to floor",
			Required:    legLandmarks,
			Thresholds: map[string]Threshold{
				AngleKnee: {Min: 70, Max: 130, Ideal: 90},
			},
			Driver:   AngleKnee,
			RepMode:  RepModeCrossing,
			Crossing: Crossing{Descend: 100, Ascend: 160},
			rule:     squatRule{},
		},
		{
			ID:          ExerciseID.Pushup,
			Description: "Start in plank position, lower chest to floor, push back up",
			Required: append(append([]pose.Label{}, armLandmarks...),
				pose.LeftHip, pose.RightHip, pose.LeftAnkle, pose.RightAnkle,
			),
			Thresholds: map[string]Threshold{
				AngleElbow: {Min: 70, Max: 170, Ideal: 90},
			},
			Driver:   AngleElbow,
			RepMode:  RepModeCrossing,
			Crossing: Crossing{Descend: 110, Ascend: 160},
			rule:     pushupRule{},
		},
		{
			ID:          ExerciseID.Lunge,
			Description: "Step forward with one leg, lowering hips until both knees are bent at 90 degrees",
			Required:    legLandmarks,
			Thresholds: map[string]Threshold{
				AngleFrontKnee: {Min: 70, Max: 110, Ideal: 90},
				AngleBackKnee:  {Min: 70, Max: 110, Ideal: 90},
			},
			Driver:  AngleFrontKnee,
			RepMode: RepModeNone,
			rule:    lungeRule{},
		},
		{
			ID:          ExerciseID.Plank,
			Description: "Hold body in straight line from head to heels, supported by forearms and toes",
			Required:    bodyLineLandmarks,
			Thresholds: map[string]Threshold{
				AngleHip: {Min: 160, Max: 180, Ideal: 180},
			},
			Driver:  AngleHip,
			RepMode: RepModeHold,
			rule:    plankRule{},
		},
		{
			ID:          ExerciseID.BicepCurl,
			Description: "Start with arms by sides, bend elbows to lift weights towards shoulders",
			Required:    armLandmarks,
			Thresholds: map[string]Threshold{
				AngleElbow: {Min: 30, Max: 160, Ideal: 45},
			},
			Driver:  AngleElbow,
			RepMode: RepModeNone,
			rule:    armAngleStubRule{},
		},
		{
			ID:          ExerciseID.ShoulderPress,
			Description: "Start with weights at shoulder height, press upward until arms are extended",
			Required:    armLandmarks,
			Thresholds: map[string]Threshold{
				AngleElbow: {Min: 30, Max: 170, Ideal: 170},
			},
			Driver:  AngleElbow,
			RepMode: RepModeNone,
			rule:    armAngleStubRule{},
		},
	}
}

// DefaultCatalog builds the catalog of built-in exercises.
func DefaultCatalog() (*Catalog, error) {
	return NewCatalog(DefaultSpecs()...)
}
