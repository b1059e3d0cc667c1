package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Method selects the measurement strategy for an exercise. The set is closed;
// the engine rejects unknown methods at load time.
type Method string

const (
	MethodAxisDelta     Method = "axis_delta"
	MethodAngle         Method = "angle"
	MethodHoldAlternate Method = "hold_alternate"
)

// Axis is the coordinate an axis-delta exercise is counted on.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// Direction is a lateral classification used by hold-and-alternate exercises.
type Direction string

const (
	DirectionCenter Direction = "center"
	DirectionLeft   Direction = "left"
	DirectionRight  Direction = "right"
)

// Opposite returns the other hold side. Center has no opposite.
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionLeft:
		return DirectionRight
	case DirectionRight:
		return DirectionLeft
	}
	return DirectionCenter
}

// ExerciseDefinition is the immutable per-exercise configuration. It is
// loaded once at startup, validated, and never mutated afterwards.
type ExerciseDefinition struct {
	ID     string `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Method Method `yaml:"method" json:"method"`

	// Axis-delta and hold-and-alternate: the joint whose coordinate is
	// measured ("nose", "left_wrist", ...).
	Joint  string `yaml:"joint,omitempty" json:"joint,omitempty"`
	Axis   Axis   `yaml:"axis,omitempty" json:"axis,omitempty"`
	Mirror bool   `yaml:"mirror,omitempty" json:"mirror,omitempty"`

	// DeltaThreshold is the deviation from baseline that arms a rep
	// (axis-delta) or classifies a hold direction (hold-and-alternate).
	DeltaThreshold float64 `yaml:"delta_threshold,omitempty" json:"delta_threshold,omitempty"`

	// Angle method: the joint triple, side-neutral base names ordered
	// a-vertex-c (e.g. [hip, knee, ankle]), evaluated on both sides.
	AngleJoints   []string `yaml:"angle_joints,omitempty" json:"angle_joints,omitempty"`
	EnterBelowDeg float64  `yaml:"enter_below_deg,omitempty" json:"enter_below_deg,omitempty"`
	ExitAboveDeg  float64  `yaml:"exit_above_deg,omitempty" json:"exit_above_deg,omitempty"`

	// Hold-and-alternate tuning. CenterBand defaults to DeltaThreshold/2.
	HoldMillis     int       `yaml:"hold_ms,omitempty" json:"hold_ms,omitempty"`
	CenterBand     float64   `yaml:"center_band,omitempty" json:"center_band,omitempty"`
	FirstDirection Direction `yaml:"first_direction,omitempty" json:"first_direction,omitempty"`

	DebounceFrames int `yaml:"debounce_frames" json:"debounce_frames"`
	CooldownMillis int `yaml:"cooldown_ms" json:"cooldown_ms"`

	TargetSets  int `yaml:"target_sets" json:"target_sets"`
	TargetReps  int `yaml:"target_reps" json:"target_reps"`
	RestSeconds int `yaml:"rest_seconds" json:"rest_seconds"`

	// MinVisibility overrides the session-wide visibility threshold when > 0.
	MinVisibility float64 `yaml:"min_visibility,omitempty" json:"min_visibility,omitempty"`
}

// Cooldown returns the minimum elapsed time between two counted reps.
func (d ExerciseDefinition) Cooldown() time.Duration {
	return time.Duration(d.CooldownMillis) * time.Millisecond
}

// HoldDuration returns the minimum continuous dwell for a hold to count.
func (d ExerciseDefinition) HoldDuration() time.Duration {
	return time.Duration(d.HoldMillis) * time.Millisecond
}

// Rest returns the rest period between sets.
func (d ExerciseDefinition) Rest() time.Duration {
	return time.Duration(d.RestSeconds) * time.Second
}

// Validate checks the definition once at load time so the strategies can
// treat it as trusted, pure configuration.
func (d ExerciseDefinition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("exercise id is required")
	}
	if d.TargetSets <= 0 || d.TargetReps <= 0 {
		return fmt.Errorf("exercise %s: target_sets and target_reps must be positive", d.ID)
	}
	if d.RestSeconds < 0 {
		return fmt.Errorf("exercise %s: rest_seconds must not be negative", d.ID)
	}
	if d.DebounceFrames <= 0 && d.Method != MethodHoldAlternate {
		return fmt.Errorf("exercise %s: debounce_frames must be positive", d.ID)
	}

	switch d.Method {
	case MethodAxisDelta:
		if _, ok := LandmarkIndex(d.Joint); !ok {
			return fmt.Errorf("exercise %s: unknown joint %q", d.ID, d.Joint)
		}
		if d.Axis != AxisX && d.Axis != AxisY {
			return fmt.Errorf("exercise %s: axis must be x or y", d.ID)
		}
		if d.DeltaThreshold <= 0 {
			return fmt.Errorf("exercise %s: delta_threshold must be positive", d.ID)
		}
	case MethodAngle:
		if len(d.AngleJoints) != 3 {
			return fmt.Errorf("exercise %s: angle_joints must name exactly three joints", d.ID)
		}
		for _, j := range d.AngleJoints {
			if _, ok := SideIndex(j, 0); !ok {
				return fmt.Errorf("exercise %s: unknown angle joint %q", d.ID, j)
			}
		}
		if d.EnterBelowDeg <= 0 || d.ExitAboveDeg <= 0 {
			return fmt.Errorf("exercise %s: enter_below_deg and exit_above_deg are required", d.ID)
		}
		if d.EnterBelowDeg >= d.ExitAboveDeg {
			return fmt.Errorf("exercise %s: enter_below_deg must be below exit_above_deg", d.ID)
		}
	case MethodHoldAlternate:
		if _, ok := LandmarkIndex(d.Joint); !ok {
			return fmt.Errorf("exercise %s: unknown joint %q", d.ID, d.Joint)
		}
		if d.DeltaThreshold <= 0 {
			return fmt.Errorf("exercise %s: delta_threshold must be positive", d.ID)
		}
		if d.HoldMillis <= 0 {
			return fmt.Errorf("exercise %s: hold_ms must be positive", d.ID)
		}
		if d.CenterBand >= d.DeltaThreshold {
			return fmt.Errorf("exercise %s: center_band must be narrower than delta_threshold", d.ID)
		}
		switch d.FirstDirection {
		case "", DirectionLeft, DirectionRight:
		default:
			return fmt.Errorf("exercise %s: first_direction must be left or right", d.ID)
		}
	default:
		return fmt.Errorf("exercise %s: unknown method %q", d.ID, d.Method)
	}
	return nil
}

type exerciseFile struct {
	Exercises []ExerciseDefinition `yaml:"exercises"`
}

// LoadExercises reads and validates the exercise catalog from a YAML file.
func LoadExercises(path string) ([]ExerciseDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading exercises file: %w", err)
	}
	var f exerciseFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing exercises file: %w", err)
	}
	if len(f.Exercises) == 0 {
		return nil, fmt.Errorf("exercises file %s defines no exercises", path)
	}
	seen := make(map[string]bool, len(f.Exercises))
	for _, d := range f.Exercises {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("duplicate exercise id %q", d.ID)
		}
		seen[d.ID] = true
	}
	return f.Exercises, nil
}
