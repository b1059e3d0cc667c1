package models

import (
	"time"

	"github.com/google/uuid"
)

// ExerciseResult is the immutable record produced once when a session
// completes. It is the row handed to the persistence collaborator.
type ExerciseResult struct {
	ID                  uuid.UUID `json:"id"`
	ExerciseID          string    `json:"exercise_id"`
	CompletedSets       int       `json:"completed_sets"`
	CompletedReps       []int     `json:"completed_reps"`
	TotalReps           int       `json:"total_reps"`
	Accuracy            int       `json:"accuracy"`
	DurationSeconds     float64   `json:"duration_seconds"`
	DegradedCalibration bool      `json:"degraded_calibration"`
	Timestamp           time.Time `json:"timestamp"`
}
