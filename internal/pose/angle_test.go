package pose

import (
	"math"
	"testing"

	"github.com/claude/formcoach/internal/models"
)

func pt(x, y, vis float64) models.LandmarkPoint {
	return models.LandmarkPoint{X: x, Y: y, Visibility: vis}
}

// TestJointAngleRightAngle verifies a known 90 degree configuration.
func TestJointAngleRightAngle(t *testing.T) {
	a := pt(0, 1, 1)
	b := pt(0, 0, 1)
	c := pt(1, 0, 1)

	got, ok := JointAngle(a, b, c, 0.5)
	if !ok {
		t.Fatal("angle unavailable for fully visible points")
	}
	if math.Abs(got-90) > 1e-9 {
		t.Errorf("angle = %v, want 90", got)
	}
}

// TestJointAngleStraight verifies collinear points read as 180 degrees.
func TestJointAngleStraight(t *testing.T) {
	got, ok := JointAngle(pt(0, 1, 1), pt(0, 0.5, 1), pt(0, 0, 1), 0.5)
	if !ok {
		t.Fatal("angle unavailable")
	}
	if math.Abs(got-180) > 1e-9 {
		t.Errorf("angle = %v, want 180", got)
	}
}

// TestJointAngleSymmetry verifies angle(a,b,c) == angle(c,b,a) across a
// spread of configurations.
func TestJointAngleSymmetry(t *testing.T) {
	cases := [][3]models.LandmarkPoint{
		{pt(0.1, 0.9, 1), pt(0.5, 0.5, 1), pt(0.9, 0.4, 1)},
		{pt(0.3, 0.2, 1), pt(0.4, 0.8, 1), pt(0.7, 0.1, 1)},
		{pt(0, 1, 1), pt(0, 0, 1), pt(1, 0, 1)},
	}
	for i, c := range cases {
		fwd, ok1 := JointAngle(c[0], c[1], c[2], 0.5)
		rev, ok2 := JointAngle(c[2], c[1], c[0], 0.5)
		if !ok1 || !ok2 {
			t.Fatalf("case %d: angle unavailable", i)
		}
		if math.Abs(fwd-rev) > 1e-9 {
			t.Errorf("case %d: angle(a,b,c)=%v != angle(c,b,a)=%v", i, fwd, rev)
		}
	}
}

// TestJointAngleLowVisibility verifies that any point below the visibility
// threshold makes the angle unavailable rather than erroneous.
func TestJointAngleLowVisibility(t *testing.T) {
	a := pt(0, 1, 1)
	b := pt(0, 0, 1)
	c := pt(1, 0, 0.3)

	if _, ok := JointAngle(a, b, c, 0.5); ok {
		t.Error("expected unavailable when one point is below threshold")
	}
	if _, ok := JointAngle(c, b, a, 0.5); ok {
		t.Error("symmetry: expected unavailable in reversed order too")
	}
}

// TestJointAngleZeroVector verifies degenerate geometry (coincident points)
// is unavailable, not NaN.
func TestJointAngleZeroVector(t *testing.T) {
	b := pt(0.5, 0.5, 1)
	if _, ok := JointAngle(b, b, pt(1, 0, 1), 0.5); ok {
		t.Error("expected unavailable for zero-magnitude vector")
	}
}

// TestJointAngleClamp verifies near-collinear points stay in the arccos
// domain instead of producing NaN from floating-point drift.
func TestJointAngleClamp(t *testing.T) {
	a := pt(0.1, 0.5, 1)
	b := pt(0.5, 0.5, 1)
	c := pt(0.9, 0.5+1e-15, 1)

	got, ok := JointAngle(a, b, c, 0.5)
	if !ok {
		t.Fatal("angle unavailable")
	}
	if math.IsNaN(got) {
		t.Fatal("angle is NaN; cosine was not clamped")
	}
}

// TestFrameJointAngle verifies frame-indexed lookup honors visibility.
func TestFrameJointAngle(t *testing.T) {
	f := make(models.PoseFrame, models.NumLandmarks)
	for i := range f {
		f[i] = pt(0.5, 0.5, 1)
	}
	f[models.LeftHip] = pt(0.5, 0.3, 1)
	f[models.LeftKnee] = pt(0.5, 0.5, 1)
	f[models.LeftAnkle] = pt(0.7, 0.5, 1)

	got, ok := FrameJointAngle(f, models.LeftHip, models.LeftKnee, models.LeftAnkle, 0.5)
	if !ok {
		t.Fatal("angle unavailable")
	}
	if math.Abs(got-90) > 1e-9 {
		t.Errorf("angle = %v, want 90", got)
	}

	f[models.LeftAnkle].Visibility = 0.1
	if _, ok := FrameJointAngle(f, models.LeftHip, models.LeftKnee, models.LeftAnkle, 0.5); ok {
		t.Error("expected unavailable with hidden ankle")
	}
}
