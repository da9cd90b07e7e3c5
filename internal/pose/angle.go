package pose

import "math"

// AngleAt returns the angle in degrees at vertex b, formed by the rays
// b->a and b->c. The result is always in [0, 180].
// If a or c coincides with b the angle is undefined and 0 is returned.
func AngleAt(a, b, c Point3D) float64 {
	ba := a.Sub(b)
	bc := c.Sub(b)

	norms := math.Sqrt(ba.Dot(ba)) * math.Sqrt(bc.Dot(bc))
	if norms == 0 {
		return 0
	}

	cos := ba.Dot(bc) / norms
	// float error can push the cosine slightly out of the acos domain
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos) * 180 / math.Pi
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point3D) Point3D {
	return Point3D{
		X: (a.X + b.X) / 2,
		Y: (a.Y + b.Y) / 2,
		Z: (a.Z + b.Z) / 2,
	}
}

// HorizontalDistance is the absolute separation of two points on the image x axis.
func HorizontalDistance(a, b Point3D) float64 {
	return math.Abs(a.X - b.X)
}
