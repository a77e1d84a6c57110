package geom_test

import (
	"math"
	"testing"

	"github.com/ergolab/human-factors-backend/internal/geom"
)

const angleTolerance = 0.01 // degrees; epsilon-guarded normalization is not exact

func TestAngleBetween_SameVectorIsZero(t *testing.T) {
	vectors := []geom.Vec3{
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0.3, Y: -0.7, Z: 2.1},
		{X: 1e-3, Y: 1e-3, Z: 1e-3},
	}
	for _, v := range vectors {
		got := geom.AngleBetween(v, v)
		if math.Abs(got) > angleTolerance {
			t.Errorf("AngleBetween(%v, %v) = %v, want ~0", v, v, got)
		}
	}
}

func TestAngleBetween_OppositeVectorIs180(t *testing.T) {
	vectors := []geom.Vec3{
		{X: 1, Y: 0, Z: 0},
		{X: 0.5, Y: 1.5, Z: -0.25},
	}
	for _, v := range vectors {
		neg := v.Scale(-1)
		got := geom.AngleBetween(v, neg)
		if math.Abs(got-180) > angleTolerance {
			t.Errorf("AngleBetween(%v, %v) = %v, want ~180", v, neg, got)
		}
	}
}

func TestAngleBetween_Perpendicular(t *testing.T) {
	got := geom.AngleBetween(geom.Vec3{X: 1}, geom.Vec3{Y: 1})
	if math.Abs(got-90) > angleTolerance {
		t.Errorf("perpendicular vectors: got %v, want ~90", got)
	}
}

func TestAngleBetween_DegenerateInputIsFinite(t *testing.T) {
	// A zero vector must not produce NaN — the epsilon guard defines the result.
	got := geom.AngleBetween(geom.Vec3{}, geom.Vec3{Y: 1})
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("degenerate input produced %v", got)
	}
	if got < 0 || got > 180 {
		t.Errorf("degenerate input out of range: %v", got)
	}
}

func TestJointAngle_RightAngle(t *testing.T) {
	// Elbow at the origin, shoulder straight up, wrist straight out.
	shoulder := geom.Vec3{Y: 1}
	elbow := geom.Vec3{}
	wrist := geom.Vec3{X: 1}

	got := geom.JointAngle(shoulder, elbow, wrist)
	if math.Abs(got-90) > angleTolerance {
		t.Errorf("JointAngle = %v, want ~90", got)
	}
}

func TestJointAngle_StraightLimb(t *testing.T) {
	// Fully extended: shoulder, elbow, wrist collinear.
	got := geom.JointAngle(geom.Vec3{Y: 2}, geom.Vec3{Y: 1}, geom.Vec3{})
	if math.Abs(got-180) > angleTolerance {
		t.Errorf("JointAngle = %v, want ~180", got)
	}
}

func TestMidpointAndDist(t *testing.T) {
	a := geom.Vec3{X: -0.2, Y: 1.5}
	b := geom.Vec3{X: 0.2, Y: 1.5}

	mid := geom.Midpoint(a, b)
	if mid.X != 0 || mid.Y != 1.5 || mid.Z != 0 {
		t.Errorf("Midpoint = %v, want {0 1.5 0}", mid)
	}
	if d := geom.Dist(a, b); math.Abs(d-0.4) > 1e-12 {
		t.Errorf("Dist = %v, want 0.4", d)
	}
}
