package models

import (
	"os"
	"path/filepath"
	"testing"
)

const exercisesYAML = `
exercises:
  - id: arm_raise
    name: Arm Raise
    method: axis_delta
    joint: left_wrist
    axis: y
    delta_threshold: 0.08
    debounce_frames: 3
    cooldown_ms: 500
    target_sets: 3
    target_reps: 10
    rest_seconds: 30
  - id: squat
    name: Squat
    method: angle
    angle_joints: [hip, knee, ankle]
    enter_below_deg: 160
    exit_above_deg: 168
    debounce_frames: 3
    cooldown_ms: 500
    target_sets: 3
    target_reps: 12
    rest_seconds: 45
  - id: side_bend
    name: Side Bend
    method: hold_alternate
    joint: nose
    delta_threshold: 0.04
    center_band: 0.02
    hold_ms: 3000
    debounce_frames: 1
    cooldown_ms: 0
    target_sets: 2
    target_reps: 6
    rest_seconds: 20
`

func writeExercises(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "exercises.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadExercises verifies a well-formed catalog loads all three methods.
func TestLoadExercises(t *testing.T) {
	defs, err := LoadExercises(writeExercises(t, exercisesYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(defs) != 3 {
		t.Fatalf("len = %d, want 3", len(defs))
	}
	if defs[0].Method != MethodAxisDelta || defs[1].Method != MethodAngle || defs[2].Method != MethodHoldAlternate {
		t.Errorf("unexpected methods: %v %v %v", defs[0].Method, defs[1].Method, defs[2].Method)
	}
	if defs[1].EnterBelowDeg != 160 || defs[1].ExitAboveDeg != 168 {
		t.Errorf("squat thresholds = %v/%v", defs[1].EnterBelowDeg, defs[1].ExitAboveDeg)
	}
}

// TestLoadExercisesDuplicateID verifies duplicate ids are rejected at load
// time; strategies dispatch on the id and must be unambiguous.
func TestLoadExercisesDuplicateID(t *testing.T) {
	dup := exercisesYAML + `
  - id: squat
    name: Squat Again
    method: angle
    angle_joints: [hip, knee, ankle]
    enter_below_deg: 150
    exit_above_deg: 165
    debounce_frames: 2
    cooldown_ms: 400
    target_sets: 1
    target_reps: 5
    rest_seconds: 10
`
	if _, err := LoadExercises(writeExercises(t, dup)); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

// TestValidateUnknownMethod verifies the strategy set is closed.
func TestValidateUnknownMethod(t *testing.T) {
	d := ExerciseDefinition{ID: "x", Method: "wiggle", TargetSets: 1, TargetReps: 1, DebounceFrames: 1}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for unknown method")
	}
}

// TestValidateAngleBand verifies the hysteresis band must be ordered:
// enter-down strictly below exit-up.
func TestValidateAngleBand(t *testing.T) {
	d := ExerciseDefinition{
		ID: "squat", Method: MethodAngle,
		AngleJoints:   []string{"hip", "knee", "ankle"},
		EnterBelowDeg: 170, ExitAboveDeg: 160,
		DebounceFrames: 3, TargetSets: 1, TargetReps: 1,
	}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for inverted hysteresis band")
	}
}

// TestValidateHoldCenterBand verifies the center band must be narrower than
// the direction threshold.
func TestValidateHoldCenterBand(t *testing.T) {
	d := ExerciseDefinition{
		ID: "bend", Method: MethodHoldAlternate, Joint: "nose",
		DeltaThreshold: 0.04, CenterBand: 0.05, HoldMillis: 3000,
		TargetSets: 1, TargetReps: 1,
	}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for center_band wider than delta_threshold")
	}
}

// TestValidateUnknownJoint verifies joint names are checked at load time.
func TestValidateUnknownJoint(t *testing.T) {
	d := ExerciseDefinition{
		ID: "x", Method: MethodAxisDelta, Joint: "tail", Axis: AxisY,
		DeltaThreshold: 0.05, DebounceFrames: 3, TargetSets: 1, TargetReps: 1,
	}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for unknown joint")
	}
}

// TestDirectionOpposite verifies side flipping for the alternation machine.
func TestDirectionOpposite(t *testing.T) {
	if DirectionLeft.Opposite() != DirectionRight {
		t.Error("left.Opposite() != right")
	}
	if DirectionRight.Opposite() != DirectionLeft {
		t.Error("right.Opposite() != left")
	}
	if DirectionCenter.Opposite() != DirectionCenter {
		t.Error("center.Opposite() != center")
	}
}
