// Package engine implements the repetition-detection and exercise-session
// core: per-set calibration, the per-exercise measurement strategies, the
// phase state machine, set/rest bookkeeping, and result aggregation.
//
// The engine is fully time-injected: callers pass the current time into
// HandleFrame and Tick, and no goroutines or timers run inside the package.
// One pose frame is fully processed before the next is accepted, and events
// reach the sink in the order they were detected.
package engine

import "github.com/claude/formcoach/internal/models"

// Phase is the repetition state machine's current position.
type Phase string

const (
	PhaseReady Phase = "ready"
	PhaseDown  Phase = "down"
	PhaseUp    Phase = "up"
)

// EventKind identifies an engine event.
type EventKind string

const (
	EventCalibrationStarted EventKind = "calibration_started"
	EventCalibrationDone    EventKind = "calibration_done"
	EventPhaseChanged       EventKind = "phase_changed"
	EventRepCounted         EventKind = "rep_counted"
	EventSetComplete        EventKind = "set_complete"
	EventRestTick           EventKind = "rest_tick"
	EventSessionComplete    EventKind = "session_complete"
	EventHint               EventKind = "hint"
)

// Event is one detector or session occurrence, emitted in detection order.
type Event struct {
	Kind EventKind `json:"kind"`

	Phase Phase `json:"phase,omitempty"`
	Set   int   `json:"set,omitempty"`
	Rep   int   `json:"rep,omitempty"`

	// RestRemaining is whole seconds left in the rest period (rest_tick).
	RestRemaining int `json:"rest_remaining,omitempty"`

	// Degraded marks a calibration that fell back to the default baseline.
	Degraded bool `json:"degraded,omitempty"`

	// Hint is a user-facing repositioning suggestion (hint events only).
	Hint string `json:"hint,omitempty"`

	// Result is populated on session_complete only.
	Result *models.ExerciseResult `json:"result,omitempty"`
}

// Sink receives engine events. Handlers run synchronously on the session's
// calling goroutine; a later event is never delivered before an earlier
// one's handler returns.
type Sink func(Event)
