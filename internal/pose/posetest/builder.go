// Package posetest builds synthetic landmark sets with known joint angles.
package posetest

import (
	"math"

	"github.com/2beens/formlens/internal/pose"
)

const (
	segment    = 0.2
	leftX      = 0.4
	rightX     = 0.6
	hipY       = 0.4
	shoulderZ  = -0.3
	forearm    = 0.15
	upperArm   = 0.15
	bodyLength = 0.4
)

func rad(deg float64) float64 {
	return deg * math.Pi / 180
}

// bent returns the point at distance length from vertex, forming angle deg
// with the vertex->up direction (0, -1, 0), bending in the y/z plane.
func bent(vertex pose.Point3D, deg, length float64) pose.Point3D {
	return pose.Point3D{
		X: vertex.X,
		Y: vertex.Y - length*math.Cos(rad(deg)),
		Z: vertex.Z + length*math.Sin(rad(deg)),
	}
}

// Legs returns hips, knees and ankles with both knees bent at kneeAngle.
// Knees and ankles are as wide as the hips.
func Legs(kneeAngle float64) pose.Landmarks {
	lm := pose.Landmarks{}
	for label, x := range map[[3]pose.Label]float64{
		{pose.LeftHip, pose.LeftKnee, pose.LeftAnkle}:    leftX,
		{pose.RightHip, pose.RightKnee, pose.RightAnkle}: rightX,
	} {
		hip := pose.Point3D{X: x, Y: hipY}
		knee := pose.Point3D{X: x, Y: hipY + segment}
		lm[label[0]] = hip
		lm[label[1]] = knee
		lm[label[2]] = bent(knee, kneeAngle, segment)
	}
	return lm
}

// Squat is Legs with knees and ankles moved to the given widths, which
// makes kneeAngle approximate.
func Squat(kneeAngle, kneeWidth, ankleWidth float64) pose.Landmarks {
	lm := Legs(kneeAngle)
	center := (leftX + rightX) / 2
	for _, pair := range []struct {
		left, right pose.Label
		width       float64
	}{
		{pose.LeftKnee, pose.RightKnee, kneeWidth},
		{pose.LeftAnkle, pose.RightAnkle, ankleWidth},
	} {
		l, r := lm[pair.left], lm[pair.right]
		l.X = center - pair.width/2
		r.X = center + pair.width/2
		lm[pair.left], lm[pair.right] = l, r
	}
	return lm
}

// Pushup returns arms bent at elbowAngle and a body line whose angle at the
// hips is hipAngle (180 is a straight body).
func Pushup(elbowAngle, hipAngle float64) pose.Landmarks {
	lm := pose.Landmarks{}
	hipMid := pose.Point3D{X: (leftX + rightX) / 2, Y: hipY}
	ankleMid := pose.Point3D{
		X: hipMid.X,
		Y: hipMid.Y + bodyLength*math.Sin(rad(hipAngle)),
		Z: hipMid.Z - bodyLength*math.Cos(rad(hipAngle)),
	}

	for _, side := range []struct {
		shoulder, elbow, wrist, hip, ankle pose.Label
		x                                  float64
	}{
		{pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist, pose.LeftHip, pose.LeftAnkle, leftX},
		{pose.RightShoulder, pose.RightElbow, pose.RightWrist, pose.RightHip, pose.RightAnkle, rightX},
	} {
		shoulder := pose.Point3D{X: side.x, Y: hipY, Z: shoulderZ}
		elbow := pose.Point3D{X: side.x, Y: hipY + upperArm, Z: shoulderZ}
		lm[side.shoulder] = shoulder
		lm[side.elbow] = elbow
		lm[side.wrist] = bent(elbow, elbowAngle, forearm)
		lm[side.hip] = pose.Point3D{X: side.x, Y: hipY}
		lm[side.ankle] = pose.Point3D{X: side.x, Y: ankleMid.Y, Z: ankleMid.Z}
	}
	return lm
}

// Merge returns a new set holding the landmarks of all sets, later sets win.
func Merge(sets ...pose.Landmarks) pose.Landmarks {
	merged := pose.Landmarks{}
	for _, set := range sets {
		for label, p := range set {
			merged[label] = p
		}
	}
	return merged
}

// Without returns a copy of lm without the given labels.
func Without(lm pose.Landmarks, labels ...pose.Label) pose.Landmarks {
	cp := Merge(lm)
	for _, label := range labels {
		delete(cp, label)
	}
	return cp
}
