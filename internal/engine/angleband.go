package engine

import (
	"time"

	"github.com/claude/formcoach/internal/models"
	"github.com/claude/formcoach/internal/pose"
)

// angleBand counts reps from a three-point joint angle measured on both
// sides of the body, taking the smaller of the two (whichever side the
// camera sees more clearly tends to read deeper). Two thresholds form the
// hysteresis band: the angle must drop below the tighter enter threshold to
// arm the rep. On the way back up every frame above the enter threshold
// feeds the debounce, and the rep counts once the counter is full on a
// frame above the looser exit threshold. Frames inside the band can never
// complete a rep on their own, so boundary oscillation stays silent.
//
// Unlike axis-delta, the debounce counter survives frames where the angle
// is unavailable; at typical camera noise a strict reset would starve the
// debounce whenever a knee or hip flickers below the visibility threshold.
type angleBand struct {
	def    models.ExerciseDefinition
	minVis float64
	left   [3]int
	right  [3]int

	baseline float64
	counter  int
}

func newAngleBand(def models.ExerciseDefinition, minVis float64) *angleBand {
	s := &angleBand{def: def, minVis: minVis}
	for i, name := range def.AngleJoints {
		l, _ := models.SideIndex(name, 0)
		r, _ := models.SideIndex(name, 1)
		s.left[i] = l
		s.right[i] = r
	}
	return s
}

// Measure returns the smaller of the left/right joint angles, or ok=false
// when neither side is fully visible.
func (s *angleBand) Measure(f models.PoseFrame) (float64, bool) {
	l, okL := pose.FrameJointAngle(f, s.left[0], s.left[1], s.left[2], s.minVis)
	r, okR := pose.FrameJointAngle(f, s.right[0], s.right[1], s.right[2], s.minVis)
	switch {
	case okL && okR:
		if r < l {
			return r, true
		}
		return l, true
	case okL:
		return l, true
	case okR:
		return r, true
	}
	return 0, false
}

func (s *angleBand) SetBaseline(b float64) { s.baseline = b }

func (s *angleBand) Evaluate(f models.PoseFrame, phase Phase, lastCount, now time.Time) Outcome {
	ang, ok := s.Measure(f)
	if !ok {
		// Counter is kept across unavailable frames.
		return Outcome{Phase: phase, Hint: repositionHint(jointLabel(s.def.AngleJoints[1]))}
	}

	switch phase {
	case PhaseReady, PhaseUp:
		if ang < s.def.EnterBelowDeg {
			s.counter++
			if s.counter >= s.def.DebounceFrames {
				s.counter = 0
				return Outcome{Phase: PhaseDown}
			}
		} else {
			s.counter = 0
		}
	case PhaseDown:
		if ang > s.def.EnterBelowDeg {
			s.counter++
			if s.counter >= s.def.DebounceFrames && ang > s.def.ExitAboveDeg &&
				now.Sub(lastCount) >= s.def.Cooldown() {
				s.counter = 0
				return Outcome{Phase: PhaseUp, Counted: true}
			}
		} else {
			s.counter = 0
		}
	}
	return Outcome{Phase: phase}
}

func (s *angleBand) Reset()                { s.counter = 0 }
func (s *angleBand) Shift(d time.Duration) {}
