// Package geom provides the small set of 3D vector primitives the metrics
// engine is built on. Coordinates are in meters; angles are in degrees.
// It is intentionally dependency-free: it imports nothing from internal/
// and can be tested in isolation.
package geom

import "math"

// normEpsilon is added to vector norms before normalization so a degenerate
// (near-zero) vector yields a defined angle instead of NaN.
const normEpsilon = 1e-8

// Vec3 is a point or direction in 3D space. Y is the vertical (up) axis.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Up is the vertical reference direction used for flexion and lean angles.
var Up = Vec3{X: 0, Y: 1, Z: 0}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

// Sub returns v − w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Dist returns the Euclidean distance between points v and w.
func Dist(v, w Vec3) float64 {
	return v.Sub(w).Norm()
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Vec3) Vec3 {
	return a.Add(b).Scale(0.5)
}

// AngleBetween returns the angle between v1 and v2 in degrees, in [0, 180].
// Both vectors are normalized with normEpsilon in the denominator, and the
// dot product is clipped to [-1, 1] before the inverse cosine, so the result
// is always a real number even for degenerate or anti-parallel input.
func AngleBetween(v1, v2 Vec3) float64 {
	n1 := v1.Scale(1 / (v1.Norm() + normEpsilon))
	n2 := v2.Scale(1 / (v2.Norm() + normEpsilon))

	cos := n1.Dot(n2)
	if cos > 1 {
		cos = 1
	}
	if cos < -1 {
		cos = -1
	}

	return math.Acos(cos) * 180 / math.Pi
}

// JointAngle returns the angle at p2 formed by the rays p2→p1 and p2→p3,
// in degrees.
func JointAngle(p1, p2, p3 Vec3) float64 {
	return AngleBetween(p1.Sub(p2), p3.Sub(p2))
}
