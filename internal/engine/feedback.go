package engine

import (
	"strconv"
	"time"
)

// Speaker is the external voice service boundary. Speak starts a cue; Stop
// cancels whatever is in flight.
type Speaker interface {
	Speak(text string)
	Stop()
}

// FeedbackEmitter turns engine events into voice cues. Identical cues
// within the dedupe window are suppressed to avoid audio stutter, and any
// in-flight cue is canceled before a new one starts: latest wins, nothing
// queues.
type FeedbackEmitter struct {
	speaker Speaker
	window  time.Duration

	lastCue string
	lastAt  time.Time
}

// NewFeedbackEmitter wraps a speaker. window <= 0 uses a 2 second default.
func NewFeedbackEmitter(sp Speaker, window time.Duration) *FeedbackEmitter {
	if window <= 0 {
		window = 2 * time.Second
	}
	return &FeedbackEmitter{speaker: sp, window: window}
}

// Handle derives the cue for an event and speaks it, subject to
// de-duplication. Called synchronously from the event sink.
func (e *FeedbackEmitter) Handle(ev Event, now time.Time) {
	cue := CueFor(ev)
	if cue == "" {
		return
	}
	if cue == e.lastCue && now.Sub(e.lastAt) < e.window {
		return
	}
	e.speaker.Stop()
	e.speaker.Speak(cue)
	e.lastCue = cue
	e.lastAt = now
}

// Flush cancels any in-flight cue. Called on session cancel so no audio
// outlives the session.
func (e *FeedbackEmitter) Flush() {
	e.speaker.Stop()
	e.lastCue = ""
	e.lastAt = time.Time{}
}

// CueFor maps an event to its voice cue, or "" for silent events.
func CueFor(ev Event) string {
	switch ev.Kind {
	case EventCalibrationStarted:
		return "Hold still while we calibrate"
	case EventCalibrationDone:
		if ev.Degraded {
			return "Calibration incomplete, accuracy may be reduced. Begin"
		}
		return "Begin"
	case EventRepCounted:
		return strconv.Itoa(ev.Rep)
	case EventSetComplete:
		return "Set complete, take a rest"
	case EventRestTick:
		// Only the last three seconds are spoken.
		if ev.RestRemaining >= 1 && ev.RestRemaining <= 3 {
			return strconv.Itoa(ev.RestRemaining)
		}
	case EventSessionComplete:
		return "Great work, exercise complete"
	case EventHint:
		return ev.Hint
	}
	return ""
}
