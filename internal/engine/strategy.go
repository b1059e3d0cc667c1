package engine

import (
	"fmt"
	"time"

	"github.com/claude/formcoach/internal/models"
	"github.com/claude/formcoach/internal/pose"
)

// Outcome is a strategy's verdict for one frame.
type Outcome struct {
	// Phase is the repetition phase after this frame.
	Phase Phase
	// Counted reports that a repetition completed on this frame.
	Counted bool
	// Hint is a repositioning suggestion when required landmarks were not
	// visible; empty otherwise.
	Hint string
}

// Strategy classifies frames for one exercise. Implementations are a closed
// set selected by the exercise method; they are pure functions of
// (frame, definition, baseline, internal state).
type Strategy interface {
	// Measure returns the raw measurement used for calibration sampling,
	// or ok=false when the required landmarks fail the visibility check.
	Measure(f models.PoseFrame) (float64, bool)

	// SetBaseline installs the calibrated reference measurement.
	SetBaseline(b float64)

	// Evaluate classifies one frame. phase is the detector-owned current
	// phase; lastCount gates the cooldown between counted reps.
	Evaluate(f models.PoseFrame, phase Phase, lastCount, now time.Time) Outcome

	// Reset clears strategy-internal state at a set boundary.
	Reset()

	// Shift moves strategy-internal timestamps forward after a pause, so
	// time spent paused never satisfies a dwell or cooldown requirement.
	Shift(d time.Duration)
}

// NewStrategy builds the strategy for a validated exercise definition.
// minVis is the session-wide visibility threshold; the definition may
// override it.
func NewStrategy(def models.ExerciseDefinition, minVis float64) (Strategy, error) {
	if def.MinVisibility > 0 {
		minVis = def.MinVisibility
	}
	if minVis <= 0 {
		minVis = pose.DefaultMinVisibility
	}

	switch def.Method {
	case models.MethodAxisDelta:
		return newAxisDelta(def, minVis), nil
	case models.MethodAngle:
		return newAngleBand(def, minVis), nil
	case models.MethodHoldAlternate:
		return newHoldAlternate(def, minVis), nil
	}
	return nil, fmt.Errorf("exercise %s: no strategy for method %q", def.ID, def.Method)
}

func repositionHint(joint string) string {
	return "reposition so your " + joint + " is visible"
}
