package formcheck_test

import (
	"testing"

	"github.com/2beens/formlens/internal/exercises"
	"github.com/2beens/formlens/internal/formcheck"

	"github.com/stretchr/testify/assert"
)

func TestAccuracy(t *testing.T) {
	squat := exercises.Threshold{Min: 70, Max: 130, Ideal: 90}

	testCases := []struct {
		name     string
		angle    float64
		th       exercises.Threshold
		expected float64
	}{
		{name: "ideal", angle: 90, th: squat, expected: 100},
		{name: "at max", angle: 130, th: squat, expected: 0},
		{name: "beyond max", angle: 170, th: squat, expected: 0},
		{name: "halfway to max", angle: 110, th: squat, expected: 50},
		// the narrower side is scaled by the wider margin
		{name: "at min", angle: 70, th: squat, expected: 50},
		{name: "far below min", angle: 10, th: squat, expected: 0},
		{name: "pushup ideal", angle: 90, th: exercises.Threshold{Min: 70, Max: 170, Ideal: 90}, expected: 100},
		{name: "pushup at max", angle: 170, th: exercises.Threshold{Min: 70, Max: 170, Ideal: 90}, expected: 0},
		{name: "ideal at max bound", angle: 170, th: exercises.Threshold{Min: 30, Max: 170, Ideal: 170}, expected: 100},
		{name: "ideal at max bound, at min", angle: 30, th: exercises.Threshold{Min: 30, Max: 170, Ideal: 170}, expected: 0},
		{name: "degenerate, on ideal", angle: 90, th: exercises.Threshold{Min: 90, Max: 90, Ideal: 90}, expected: 100},
		{name: "degenerate, off ideal", angle: 90.5, th: exercises.Threshold{Min: 90, Max: 90, Ideal: 90}, expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, formcheck.Accuracy(tc.angle, tc.th), 1e-9)
		})
	}
}

func TestAccuracy_AlwaysInRange(t *testing.T) {
	th := exercises.Threshold{Min: 30, Max: 160, Ideal: 45}
	for angle := float64(0); angle <= 180; angle += 0.5 {
		score := formcheck.Accuracy(angle, th)
		assert.GreaterOrEqual(t, score, float64(0))
		assert.LessOrEqual(t, score, float64(100))
	}
}
