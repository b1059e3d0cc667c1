// Package pose provides geometry over body landmarks.
package pose

import (
	"math"

	"github.com/claude/formcoach/internal/models"
)

// DefaultMinVisibility is the visibility floor below which a landmark is
// treated as absent.
const DefaultMinVisibility = 0.5

// JointAngle computes the angle at vertex b between the vectors b→a and b→c,
// in degrees. It returns ok=false — not an error — when any point is below
// minVis or either vector has zero magnitude. The result is symmetric:
// JointAngle(a, b, c, v) == JointAngle(c, b, a, v).
func JointAngle(a, b, c models.LandmarkPoint, minVis float64) (float64, bool) {
	if a.Visibility < minVis || b.Visibility < minVis || c.Visibility < minVis {
		return 0, false
	}

	bax := a.X - b.X
	bay := a.Y - b.Y
	bcx := c.X - b.X
	bcy := c.Y - b.Y

	magBA := math.Hypot(bax, bay)
	magBC := math.Hypot(bcx, bcy)
	if magBA == 0 || magBC == 0 {
		return 0, false
	}

	cos := (bax*bcx + bay*bcy) / (magBA * magBC)
	// Clamp against floating-point drift outside acos's domain.
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos) * 180 / math.Pi, true
}

// FrameJointAngle reads the three landmarks at indices ia, ib (vertex), ic
// from the frame and returns their joint angle.
func FrameJointAngle(f models.PoseFrame, ia, ib, ic int, minVis float64) (float64, bool) {
	a, okA := f.Point(ia, minVis)
	b, okB := f.Point(ib, minVis)
	c, okC := f.Point(ic, minVis)
	if !okA || !okB || !okC {
		return 0, false
	}
	return JointAngle(a, b, c, minVis)
}
