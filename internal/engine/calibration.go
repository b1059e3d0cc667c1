package engine

// FallbackBaseline is used when a calibration window closes with zero
// qualifying samples. Normalized coordinates cluster around mid-frame, so
// 0.5 keeps detection usable at reduced accuracy.
const FallbackBaseline = 0.5

// Calibrator accumulates measurement samples over the pre-roll window and
// produces the set's baseline. A fresh Calibrator is armed at the start of
// every set; frames that fail the visibility threshold are skipped, not
// errors.
type Calibrator struct {
	sum float64
	n   int
}

// Add records one qualifying measurement sample.
func (c *Calibrator) Add(v float64) {
	c.sum += v
	c.n++
}

// Samples returns the number of qualifying samples collected so far.
func (c *Calibrator) Samples() int { return c.n }

// Baseline returns the arithmetic mean of the collected samples. With zero
// samples it returns FallbackBaseline and degraded=true.
func (c *Calibrator) Baseline() (baseline float64, degraded bool) {
	if c.n == 0 {
		return FallbackBaseline, true
	}
	return c.sum / float64(c.n), false
}
