package engine

import (
	"time"

	"github.com/claude/formcoach/internal/models"
)

// DetectResult is the outcome of processing one frame through the detector.
type DetectResult struct {
	Phase        Phase
	PhaseChanged bool
	Counted      bool
	Reps         int
	SetComplete  bool
	Hint         string
}

// Detector owns the repetition phase and rep count for the current set and
// dispatches each frame to the exercise's strategy. A rep is counted only on
// a verified down→up transition; the per-set count is monotonically
// non-decreasing.
type Detector struct {
	def       models.ExerciseDefinition
	strat     Strategy
	phase     Phase
	reps      int
	lastCount time.Time
}

// NewDetector creates a detector around the exercise's strategy.
func NewDetector(def models.ExerciseDefinition, strat Strategy) *Detector {
	return &Detector{def: def, strat: strat, phase: PhaseReady}
}

// holdExpirer is implemented by strategies whose reps complete on the wall
// clock rather than on frame arrival.
type holdExpirer interface {
	Expire(now time.Time) (Outcome, bool)
}

// Process classifies one frame. The caller guarantees the session is active
// (calibrated, not paused, not resting) and that frames arrive one at a time.
func (d *Detector) Process(f models.PoseFrame, now time.Time) DetectResult {
	return d.apply(d.strat.Evaluate(f, d.phase, d.lastCount, now), now)
}

// Advance completes clock-driven work between frames: a timed hold whose
// dwell has elapsed since the last frame arrived. Frame-debounced
// strategies have nothing to advance.
func (d *Detector) Advance(now time.Time) DetectResult {
	exp, ok := d.strat.(holdExpirer)
	if !ok {
		return DetectResult{Phase: d.phase, Reps: d.reps}
	}
	out, fired := exp.Expire(now)
	if !fired {
		return DetectResult{Phase: d.phase, Reps: d.reps}
	}
	return d.apply(out, now)
}

func (d *Detector) apply(out Outcome, now time.Time) DetectResult {
	res := DetectResult{Phase: out.Phase, Hint: out.Hint, Reps: d.reps}
	if out.Phase != d.phase {
		d.phase = out.Phase
		res.PhaseChanged = true
	}
	if out.Counted {
		d.reps++
		d.lastCount = now
		res.Counted = true
		res.Reps = d.reps
		if d.reps >= d.def.TargetReps {
			res.SetComplete = true
		}
	}
	return res
}

// Phase returns the current repetition phase.
func (d *Detector) Phase() Phase { return d.phase }

// Reps returns the rep count for the current set.
func (d *Detector) Reps() int { return d.reps }

// Reset clears the per-set state: phase back to ready, rep count and
// debounce cleared. Called when a new set begins.
func (d *Detector) Reset() {
	d.phase = PhaseReady
	d.reps = 0
	d.lastCount = time.Time{}
	d.strat.Reset()
}

// Shift moves detector timestamps forward after a pause so paused time never
// satisfies the cooldown.
func (d *Detector) Shift(delta time.Duration) {
	if !d.lastCount.IsZero() {
		d.lastCount = d.lastCount.Add(delta)
	}
	d.strat.Shift(delta)
}
