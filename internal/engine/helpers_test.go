package engine

import (
	"math"
	"time"

	"github.com/claude/formcoach/internal/models"
)

var t0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func baseFrame() models.PoseFrame {
	f := make(models.PoseFrame, models.NumLandmarks)
	for i := range f {
		f[i] = models.LandmarkPoint{X: 0.5, Y: 0.5, Visibility: 1}
	}
	return f
}

// frameY returns a frame with one joint moved to the given y coordinate.
func frameY(joint int, y float64) models.PoseFrame {
	f := baseFrame()
	f[joint].Y = y
	return f
}

// frameX returns a frame with one joint moved to the given x coordinate.
func frameX(joint int, x float64) models.PoseFrame {
	f := baseFrame()
	f[joint].X = x
	return f
}

// kneeFrame returns a frame whose left and right knee angles both read deg:
// hips straight above the knees, ankles rotated deg away from the hip
// vector.
func kneeFrame(deg float64) models.PoseFrame {
	f := baseFrame()
	rad := deg * math.Pi / 180
	for side := 0; side < 2; side++ {
		hip, _ := models.SideIndex("hip", side)
		knee, _ := models.SideIndex("knee", side)
		ankle, _ := models.SideIndex("ankle", side)
		f[hip] = models.LandmarkPoint{X: 0.5, Y: 0.3, Visibility: 1}
		f[knee] = models.LandmarkPoint{X: 0.5, Y: 0.5, Visibility: 1}
		f[ankle] = models.LandmarkPoint{
			X:          0.5 + 0.2*math.Sin(rad),
			Y:          0.5 - 0.2*math.Cos(rad),
			Visibility: 1,
		}
	}
	return f
}

func axisDef() models.ExerciseDefinition {
	return models.ExerciseDefinition{
		ID:             "arm_raise",
		Name:           "Arm Raise",
		Method:         models.MethodAxisDelta,
		Joint:          "left_wrist",
		Axis:           models.AxisY,
		DeltaThreshold: 0.05,
		DebounceFrames: 3,
		CooldownMillis: 500,
		TargetSets:     1,
		TargetReps:     10,
		RestSeconds:    10,
	}
}

func squatDef() models.ExerciseDefinition {
	return models.ExerciseDefinition{
		ID:             "squat",
		Name:           "Squat",
		Method:         models.MethodAngle,
		AngleJoints:    []string{"hip", "knee", "ankle"},
		EnterBelowDeg:  160,
		ExitAboveDeg:   168,
		DebounceFrames: 3,
		CooldownMillis: 500,
		TargetSets:     1,
		TargetReps:     12,
		RestSeconds:    30,
	}
}

func sideBendDef() models.ExerciseDefinition {
	return models.ExerciseDefinition{
		ID:             "side_bend",
		Name:           "Side Bend",
		Method:         models.MethodHoldAlternate,
		Joint:          "nose",
		DeltaThreshold: 0.04,
		CenterBand:     0.02,
		HoldMillis:     3000,
		DebounceFrames: 1,
		TargetSets:     1,
		TargetReps:     6,
		RestSeconds:    20,
	}
}

// newDetector builds a calibrated detector for direct strategy tests,
// bypassing the session's calibration window.
func newDetector(def models.ExerciseDefinition, baseline float64) (*Detector, Strategy) {
	strat, err := NewStrategy(def, 0.5)
	if err != nil {
		panic(err)
	}
	strat.SetBaseline(baseline)
	return NewDetector(def, strat), strat
}
