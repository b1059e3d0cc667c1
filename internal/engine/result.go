package engine

import (
	"math"
	"time"

	"github.com/claude/formcoach/internal/models"
	"github.com/google/uuid"
)

// aggregateResult computes the final immutable record at session
// completion: total reps summed across sets, accuracy as the capped
// percentage of the prescribed volume, duration as wall-clock elapsed since
// the first frame of the session.
func aggregateResult(id uuid.UUID, def models.ExerciseDefinition, repsPerSet []int, degraded bool, startedAt, now time.Time) models.ExerciseResult {
	total := 0
	reps := make([]int, len(repsPerSet))
	copy(reps, repsPerSet)
	for _, r := range reps {
		total += r
	}

	target := def.TargetSets * def.TargetReps
	accuracy := 0
	if target > 0 {
		accuracy = int(math.Round(float64(total) / float64(target) * 100))
		if accuracy > 100 {
			accuracy = 100
		}
	}

	var duration float64
	if !startedAt.IsZero() {
		duration = now.Sub(startedAt).Seconds()
	}

	return models.ExerciseResult{
		ID:                  id,
		ExerciseID:          def.ID,
		CompletedSets:       len(reps),
		CompletedReps:       reps,
		TotalReps:           total,
		Accuracy:            accuracy,
		DurationSeconds:     duration,
		DegradedCalibration: degraded,
		Timestamp:           now,
	}
}
