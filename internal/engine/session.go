package engine

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/claude/formcoach/internal/models"
	"github.com/google/uuid"
)

// ErrSensorUnavailable means the pose service failed to initialize. It is
// the only fatal condition: the session never starts and no frames are
// processed.
var ErrSensorUnavailable = errors.New("pose sensor unavailable")

// State is the session state machine's position.
type State string

const (
	StateCalibrating State = "calibrating"
	StateActive      State = "active"
	StateResting     State = "resting"
	StateComplete    State = "complete"
	StateCanceled    State = "canceled"
)

// Config carries session-wide tuning independent of any one exercise.
type Config struct {
	// Calibration is the pre-roll window during which the baseline is
	// sampled before detection starts.
	Calibration time.Duration
	// MinVisibility is the landmark confidence floor; exercise definitions
	// may override it.
	MinVisibility float64
}

// DefaultConfig returns the session tuning used when config is silent.
func DefaultConfig() Config {
	return Config{Calibration: 3 * time.Second, MinVisibility: 0.5}
}

// Session is the exercise session controller. It exclusively owns all
// mutable session state; frames and clock ticks are injected by a single
// caller, so there is exactly one writer and events are emitted in
// detection order, synchronously, through the sink.
type Session struct {
	mu sync.Mutex

	ID  uuid.UUID
	def models.ExerciseDefinition
	cfg Config

	sink  Sink
	strat Strategy
	det   *Detector
	cal   *Calibrator

	state    State
	paused   bool
	pausedAt time.Time

	calStart      time.Time
	restDeadline  time.Time
	lastRestTick  int
	currentSet    int
	repsPerSet    []int
	startedAt     time.Time
	degraded      bool
	resultEmitted bool
}

// NewSession builds a session for one exercise. The sink receives every
// engine event; it must not be nil.
func NewSession(def models.ExerciseDefinition, cfg Config, sink Sink) (*Session, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if cfg.Calibration <= 0 {
		cfg.Calibration = DefaultConfig().Calibration
	}
	strat, err := NewStrategy(def, cfg.MinVisibility)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:         uuid.New(),
		def:        def,
		cfg:        cfg,
		sink:       sink,
		strat:      strat,
		det:        NewDetector(def, strat),
		cal:        &Calibrator{},
		state:      StateCalibrating,
		currentSet: 1,
	}, nil
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Definition returns the immutable exercise configuration.
func (s *Session) Definition() models.ExerciseDefinition { return s.def }

// HandleFrame processes one pose frame at the given time. Frames arriving
// while paused, resting, or after completion are dropped; malformed frames
// are dropped without mutating any state.
func (s *Session) HandleFrame(f models.PoseFrame, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused || s.state == StateComplete || s.state == StateCanceled {
		return
	}
	if !f.Validate() {
		return
	}

	switch s.state {
	case StateCalibrating:
		if s.calStart.IsZero() {
			s.calStart = now
			if s.startedAt.IsZero() {
				s.startedAt = now
			}
			s.emit(Event{Kind: EventCalibrationStarted, Set: s.currentSet})
		}
		if v, ok := s.strat.Measure(f); ok {
			s.cal.Add(v)
		}
		if now.Sub(s.calStart) >= s.cfg.Calibration {
			s.finishCalibration()
		}
	case StateActive:
		res := s.det.Process(f, now)
		if res.Hint != "" {
			s.emit(Event{Kind: EventHint, Hint: res.Hint})
		}
		if res.PhaseChanged {
			s.emit(Event{Kind: EventPhaseChanged, Phase: res.Phase, Set: s.currentSet, Rep: res.Reps})
		}
		if res.Counted {
			s.emit(Event{Kind: EventRepCounted, Set: s.currentSet, Rep: res.Reps})
		}
		if res.SetComplete {
			s.completeSet(now)
		}
	}
}

// Tick advances wall-clock driven state: the rest countdown and, when
// frames stall, calibration window expiry and timed-hold completion. The
// transport calls it about once a second.
func (s *Session) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused || s.state == StateComplete || s.state == StateCanceled {
		return
	}

	switch s.state {
	case StateResting:
		if !now.Before(s.restDeadline) {
			s.startNextSet(now)
			return
		}
		remaining := int(math.Ceil(s.restDeadline.Sub(now).Seconds()))
		if remaining != s.lastRestTick {
			s.lastRestTick = remaining
			s.emit(Event{Kind: EventRestTick, Set: s.currentSet, RestRemaining: remaining})
		}
	case StateCalibrating:
		if !s.calStart.IsZero() && now.Sub(s.calStart) >= s.cfg.Calibration {
			s.finishCalibration()
		}
	case StateActive:
		res := s.det.Advance(now)
		if res.PhaseChanged {
			s.emit(Event{Kind: EventPhaseChanged, Phase: res.Phase, Set: s.currentSet, Rep: res.Reps})
		}
		if res.Counted {
			s.emit(Event{Kind: EventRepCounted, Set: s.currentSet, Rep: res.Reps})
		}
		if res.SetComplete {
			s.completeSet(now)
		}
	}
}

// Pause freezes frame consumption without resetting any state.
func (s *Session) Pause(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused || s.state == StateComplete || s.state == StateCanceled {
		return
	}
	s.paused = true
	s.pausedAt = now
}

// Resume continues from the frozen state. All in-flight deadlines shift
// forward by the paused duration so pausing never completes a hold, a
// calibration window, or a rest period.
func (s *Session) Resume(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		return
	}
	d := now.Sub(s.pausedAt)
	if !s.calStart.IsZero() {
		s.calStart = s.calStart.Add(d)
	}
	if !s.restDeadline.IsZero() {
		s.restDeadline = s.restDeadline.Add(d)
	}
	s.det.Shift(d)
	s.paused = false
}

// Cancel synchronously discards all in-flight detector state. No result is
// produced and no further events are emitted. The caller owns stopping the
// frame source and its tick timer; once Cancel returns the session ignores
// both.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateComplete || s.state == StateCanceled {
		return
	}
	s.state = StateCanceled
	s.det.Reset()
	s.restDeadline = time.Time{}
	s.calStart = time.Time{}
}

func (s *Session) finishCalibration() {
	baseline, degraded := s.cal.Baseline()
	s.strat.SetBaseline(baseline)
	if degraded {
		s.degraded = true
	}
	s.state = StateActive
	s.emit(Event{Kind: EventCalibrationDone, Set: s.currentSet, Degraded: degraded})
}

func (s *Session) completeSet(now time.Time) {
	s.repsPerSet = append(s.repsPerSet, s.det.Reps())
	s.emit(Event{Kind: EventSetComplete, Set: s.currentSet, Rep: s.det.Reps()})

	if s.currentSet >= s.def.TargetSets {
		s.finish(now)
		return
	}

	s.state = StateResting
	s.restDeadline = now.Add(s.def.Rest())
	s.lastRestTick = s.def.RestSeconds
	s.emit(Event{Kind: EventRestTick, Set: s.currentSet, RestRemaining: s.def.RestSeconds})
}

// startNextSet re-arms calibration for the next set. The baseline drifts as
// the user repositions between sets, so it is always resampled.
func (s *Session) startNextSet(now time.Time) {
	s.currentSet++
	s.det.Reset()
	s.cal = &Calibrator{}
	s.calStart = now
	s.restDeadline = time.Time{}
	s.state = StateCalibrating
	s.emit(Event{Kind: EventCalibrationStarted, Set: s.currentSet})
}

// finish produces the immutable result exactly once, even if the completion
// condition is met on consecutive frames.
func (s *Session) finish(now time.Time) {
	if s.resultEmitted {
		return
	}
	s.resultEmitted = true
	s.state = StateComplete

	result := aggregateResult(s.ID, s.def, s.repsPerSet, s.degraded, s.startedAt, now)
	s.emit(Event{Kind: EventSessionComplete, Set: s.currentSet, Result: &result})
}

func (s *Session) emit(ev Event) {
	if s.sink != nil {
		s.sink(ev)
	}
}
