package engine

import (
	"math"
	"strings"
	"time"

	"github.com/claude/formcoach/internal/models"
)

// axisDelta counts reps from the displacement of a single joint coordinate
// relative to the calibrated baseline. The down transition requires the
// deviation to exceed the full threshold; the up transition requires a
// return to within half the threshold, so the two boundaries form a
// hysteresis gap and values sitting on the threshold cannot chatter.
type axisDelta struct {
	def      models.ExerciseDefinition
	minVis   float64
	joint    int
	baseline float64
	counter  int
}

func newAxisDelta(def models.ExerciseDefinition, minVis float64) *axisDelta {
	idx, _ := models.LandmarkIndex(def.Joint)
	return &axisDelta{def: def, minVis: minVis, joint: idx}
}

func (s *axisDelta) Measure(f models.PoseFrame) (float64, bool) {
	p, ok := f.Point(s.joint, s.minVis)
	if !ok {
		return 0, false
	}
	if s.def.Axis == models.AxisY {
		return p.Y, true
	}
	if s.def.Mirror {
		return 1 - p.X, true
	}
	return p.X, true
}

func (s *axisDelta) SetBaseline(b float64) { s.baseline = b }

func (s *axisDelta) Evaluate(f models.PoseFrame, phase Phase, lastCount, now time.Time) Outcome {
	v, ok := s.Measure(f)
	if !ok {
		// Any non-matching frame resets the consecutive-frame counter.
		s.counter = 0
		return Outcome{Phase: phase, Hint: repositionHint(jointLabel(s.def.Joint))}
	}

	switch phase {
	case PhaseReady, PhaseUp:
		if s.armed(v) {
			s.counter++
			if s.counter >= s.def.DebounceFrames {
				s.counter = 0
				return Outcome{Phase: PhaseDown}
			}
		} else {
			s.counter = 0
		}
	case PhaseDown:
		returned := math.Abs(v-s.baseline) <= s.def.DeltaThreshold/2
		if returned && now.Sub(lastCount) >= s.def.Cooldown() {
			s.counter++
			if s.counter >= s.def.DebounceFrames {
				s.counter = 0
				return Outcome{Phase: PhaseUp, Counted: true}
			}
		} else {
			s.counter = 0
		}
	}
	return Outcome{Phase: phase}
}

// armed reports whether the measurement has deviated far enough from the
// baseline to start a rep. On the y axis only a decrease counts; on x
// either direction counts.
func (s *axisDelta) armed(v float64) bool {
	if s.def.Axis == models.AxisY {
		return s.baseline-v > s.def.DeltaThreshold
	}
	return math.Abs(v-s.baseline) > s.def.DeltaThreshold
}

func (s *axisDelta) Reset()                { s.counter = 0 }
func (s *axisDelta) Shift(d time.Duration) {}

func jointLabel(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}
