package engine

import (
	"testing"
	"time"

	"github.com/claude/formcoach/internal/models"
)

// TestAxisDeltaCountsOneRep walks the documented scenario: baseline 0.30,
// threshold 0.05, debounce 3. Three frames at 0.20 reach down; three frames
// back at 0.29 after the cooldown reach up and count exactly one rep.
func TestAxisDeltaCountsOneRep(t *testing.T) {
	det, _ := newDetector(axisDef(), 0.30)

	now := t0
	for i := 0; i < 3; i++ {
		now = now.Add(40 * time.Millisecond)
		res := det.Process(frameY(models.LeftWrist, 0.20), now)
		if i < 2 && res.PhaseChanged {
			t.Fatalf("frame %d: phase changed before debounce satisfied", i)
		}
	}
	if det.Phase() != PhaseDown {
		t.Fatalf("phase = %v, want down", det.Phase())
	}

	now = now.Add(600 * time.Millisecond)
	var counted bool
	for i := 0; i < 3; i++ {
		now = now.Add(40 * time.Millisecond)
		res := det.Process(frameY(models.LeftWrist, 0.29), now)
		counted = counted || res.Counted
	}
	if !counted {
		t.Fatal("expected a counted rep")
	}
	if det.Phase() != PhaseUp {
		t.Errorf("phase = %v, want up", det.Phase())
	}
	if det.Reps() != 1 {
		t.Errorf("reps = %d, want 1", det.Reps())
	}
}

// TestAxisDeltaNoChatterInHysteresisBand verifies that measurements which
// never leave the hysteresis band can never increase the rep count.
func TestAxisDeltaNoChatterInHysteresisBand(t *testing.T) {
	det, _ := newDetector(axisDef(), 0.30)

	// Deviations up to the threshold, never beyond it.
	values := []float64{0.30, 0.27, 0.26, 0.345, 0.255, 0.30, 0.26, 0.34}
	now := t0
	for cycle := 0; cycle < 50; cycle++ {
		for _, v := range values {
			now = now.Add(40 * time.Millisecond)
			det.Process(frameY(models.LeftWrist, v), now)
		}
	}
	if det.Reps() != 0 {
		t.Errorf("reps = %d, want 0 (no chatter)", det.Reps())
	}
}

// TestAxisDeltaReturnHysteresis verifies the halved return threshold: from
// down, a value within the full threshold but outside half of it does not
// complete the rep.
func TestAxisDeltaReturnHysteresis(t *testing.T) {
	det, _ := newDetector(axisDef(), 0.30)

	now := t0
	for i := 0; i < 3; i++ {
		now = now.Add(40 * time.Millisecond)
		det.Process(frameY(models.LeftWrist, 0.20), now)
	}
	if det.Phase() != PhaseDown {
		t.Fatalf("phase = %v, want down", det.Phase())
	}

	// 0.26 deviates 0.04 from baseline: inside the 0.05 arm threshold but
	// outside the 0.025 return threshold.
	now = now.Add(time.Second)
	for i := 0; i < 10; i++ {
		now = now.Add(40 * time.Millisecond)
		det.Process(frameY(models.LeftWrist, 0.26), now)
	}
	if det.Reps() != 0 {
		t.Errorf("reps = %d, want 0 while parked in the hysteresis gap", det.Reps())
	}
	if det.Phase() != PhaseDown {
		t.Errorf("phase = %v, want down", det.Phase())
	}
}

// TestAxisDeltaCooldownBlocksRapidCounts verifies a second cycle inside the
// cooldown window cannot count until the cooldown has elapsed.
func TestAxisDeltaCooldownBlocksRapidCounts(t *testing.T) {
	det, _ := newDetector(axisDef(), 0.30)

	now := t0
	cycle := func(stepMs int) {
		for i := 0; i < 3; i++ {
			now = now.Add(time.Duration(stepMs) * time.Millisecond)
			det.Process(frameY(models.LeftWrist, 0.20), now)
		}
		for i := 0; i < 3; i++ {
			now = now.Add(time.Duration(stepMs) * time.Millisecond)
			det.Process(frameY(models.LeftWrist, 0.30), now)
		}
	}

	cycle(40) // first rep counts: no prior count to cool down from
	if det.Reps() != 1 {
		t.Fatalf("reps after first cycle = %d, want 1", det.Reps())
	}

	cycle(40) // entire second cycle fits inside the 500ms cooldown
	if det.Reps() != 1 {
		t.Errorf("reps after rushed cycle = %d, want 1 (cooldown)", det.Reps())
	}

	now = now.Add(600 * time.Millisecond)
	cycle(40)
	if det.Reps() != 2 {
		t.Errorf("reps after spaced cycle = %d, want 2", det.Reps())
	}
}

// TestAxisDeltaDebounceResetOnMismatch verifies this strategy's reset
// policy: any non-matching frame, including a low-visibility one, zeroes
// the consecutive-frame counter.
func TestAxisDeltaDebounceResetOnMismatch(t *testing.T) {
	det, _ := newDetector(axisDef(), 0.30)

	now := t0
	det.Process(frameY(models.LeftWrist, 0.20), now)
	now = now.Add(40 * time.Millisecond)
	det.Process(frameY(models.LeftWrist, 0.20), now)

	// Interrupt with a non-matching frame.
	now = now.Add(40 * time.Millisecond)
	det.Process(frameY(models.LeftWrist, 0.30), now)

	// Two more matching frames: not enough, the counter restarted.
	for i := 0; i < 2; i++ {
		now = now.Add(40 * time.Millisecond)
		det.Process(frameY(models.LeftWrist, 0.20), now)
	}
	if det.Phase() != PhaseReady {
		t.Errorf("phase = %v, want ready after counter reset", det.Phase())
	}

	// Low-visibility frame also resets.
	now = now.Add(40 * time.Millisecond)
	hidden := frameY(models.LeftWrist, 0.20)
	hidden[models.LeftWrist].Visibility = 0.1
	res := det.Process(hidden, now)
	if res.Hint == "" {
		t.Error("expected a reposition hint for a hidden joint")
	}

	for i := 0; i < 2; i++ {
		now = now.Add(40 * time.Millisecond)
		det.Process(frameY(models.LeftWrist, 0.20), now)
	}
	if det.Phase() != PhaseReady {
		t.Errorf("phase = %v, want ready after visibility reset", det.Phase())
	}
}

// TestAxisDeltaXAxisEitherDirection verifies x-axis exercises arm on
// deviation in either direction.
func TestAxisDeltaXAxisEitherDirection(t *testing.T) {
	def := axisDef()
	def.Axis = models.AxisX
	def.Joint = "nose"

	for _, x := range []float64{0.40, 0.60} {
		det, _ := newDetector(def, 0.50)
		now := t0
		for i := 0; i < 3; i++ {
			now = now.Add(40 * time.Millisecond)
			det.Process(frameX(models.Nose, x), now)
		}
		if det.Phase() != PhaseDown {
			t.Errorf("x=%v: phase = %v, want down", x, det.Phase())
		}
	}
}

// TestAxisDeltaMirror verifies the mirror flag flips the x measurement.
func TestAxisDeltaMirror(t *testing.T) {
	def := axisDef()
	def.Axis = models.AxisX
	def.Joint = "nose"
	def.Mirror = true

	_, strat := newDetector(def, 0.5)
	v, ok := strat.Measure(frameX(models.Nose, 0.3))
	if !ok {
		t.Fatal("measurement unavailable")
	}
	if v != 0.7 {
		t.Errorf("mirrored measurement = %v, want 0.7", v)
	}
}
