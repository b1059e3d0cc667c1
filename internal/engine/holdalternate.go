package engine

import (
	"math"
	"time"

	"github.com/claude/formcoach/internal/models"
)

// holdAlternate counts timed holds that must alternate sides: the reference
// point's horizontal displacement from baseline is classified into
// left/right/center bands, a hold only starts toward the expected side, and
// it counts only after a continuous dwell (wall-clock, not frames). A
// successful hold flips the expected side; returning to center early
// cancels without counting. Two same-side holds can never both count
// without an opposite-side hold in between.
//
// The alternation state is internal; for phase events a starting hold
// reports down, a counted hold reports up, and center reports ready.
type holdAlternate struct {
	def        models.ExerciseDefinition
	minVis     float64
	joint      int
	centerBand float64

	baseline   float64
	expected   models.Direction
	state      models.Direction
	holdStart  time.Time
	leftCount  int
	rightCount int
}

func newHoldAlternate(def models.ExerciseDefinition, minVis float64) *holdAlternate {
	idx, _ := models.LandmarkIndex(def.Joint)
	first := def.FirstDirection
	if first == "" {
		first = models.DirectionLeft
	}
	band := def.CenterBand
	if band <= 0 {
		band = def.DeltaThreshold / 2
	}
	return &holdAlternate{
		def:        def,
		minVis:     minVis,
		joint:      idx,
		centerBand: band,
		expected:   first,
		state:      models.DirectionCenter,
	}
}

func (s *holdAlternate) Measure(f models.PoseFrame) (float64, bool) {
	p, ok := f.Point(s.joint, s.minVis)
	if !ok {
		return 0, false
	}
	return p.X, true
}

func (s *holdAlternate) SetBaseline(b float64) { s.baseline = b }

// classify bins the displacement from baseline. The center band is narrower
// than the direction threshold; displacements between the two bands are
// indeterminate and change nothing.
func (s *holdAlternate) classify(v float64) models.Direction {
	disp := v - s.baseline
	if s.def.Mirror {
		disp = -disp
	}
	switch {
	case disp > s.def.DeltaThreshold:
		return models.DirectionLeft
	case disp < -s.def.DeltaThreshold:
		return models.DirectionRight
	case math.Abs(disp) <= s.centerBand:
		return models.DirectionCenter
	}
	return ""
}

func (s *holdAlternate) Evaluate(f models.PoseFrame, phase Phase, lastCount, now time.Time) Outcome {
	v, ok := s.Measure(f)
	if !ok {
		return Outcome{Phase: s.phase(), Hint: repositionHint(jointLabel(s.def.Joint))}
	}
	dir := s.classify(v)

	if s.state == models.DirectionCenter {
		if dir == s.expected && dir != models.DirectionCenter {
			s.state = dir
			s.holdStart = now
			return Outcome{Phase: PhaseDown}
		}
		// Wrong-side or indeterminate movement from center is ignored.
		return Outcome{Phase: PhaseReady}
	}

	// Holding. Returning to center, or crossing to the opposite side,
	// cancels the hold without counting.
	if dir == models.DirectionCenter || dir == s.state.Opposite() {
		s.state = models.DirectionCenter
		return Outcome{Phase: PhaseReady}
	}

	if now.Sub(s.holdStart) >= s.def.HoldDuration() {
		return s.completeHold()
	}
	return Outcome{Phase: PhaseDown}
}

// Expire completes an in-flight hold whose dwell elapsed with no frame
// arriving. The last observed classification stands until a frame says
// otherwise, so the hold counts on the clock alone.
func (s *holdAlternate) Expire(now time.Time) (Outcome, bool) {
	if s.state == models.DirectionCenter || s.holdStart.IsZero() {
		return Outcome{}, false
	}
	if now.Sub(s.holdStart) < s.def.HoldDuration() {
		return Outcome{}, false
	}
	return s.completeHold(), true
}

func (s *holdAlternate) completeHold() Outcome {
	if s.state == models.DirectionLeft {
		s.leftCount++
	} else {
		s.rightCount++
	}
	s.state = models.DirectionCenter
	s.expected = s.expected.Opposite()
	return Outcome{Phase: PhaseUp, Counted: true}
}

func (s *holdAlternate) phase() Phase {
	if s.state == models.DirectionCenter {
		return PhaseReady
	}
	return PhaseDown
}

func (s *holdAlternate) Reset() {
	s.state = models.DirectionCenter
	s.holdStart = time.Time{}
	first := s.def.FirstDirection
	if first == "" {
		first = models.DirectionLeft
	}
	s.expected = first
}

func (s *holdAlternate) Shift(d time.Duration) {
	if !s.holdStart.IsZero() {
		s.holdStart = s.holdStart.Add(d)
	}
}
