package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/formcoach/internal/models"
)

// ErrNotFound means no result row matched the requested id.
var ErrNotFound = errors.New("result not found")

// InsertExerciseResult persists one completed session result.
func (db *DB) InsertExerciseResult(ctx context.Context, r models.ExerciseResult) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO exercise_results (id, exercise_id, completed_sets, completed_reps,
		 total_reps, accuracy, duration_seconds, degraded_calibration, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO NOTHING`,
		r.ID, r.ExerciseID, r.CompletedSets, r.CompletedReps,
		r.TotalReps, r.Accuracy, r.DurationSeconds, r.DegradedCalibration, r.Timestamp)
	if err != nil {
		return fmt.Errorf("inserting exercise result: %w", err)
	}
	return nil
}

// QueryExerciseResults retrieves results in a time range, newest first.
// exerciseID narrows to one exercise when non-empty.
func (db *DB) QueryExerciseResults(ctx context.Context, start, end time.Time, exerciseID string) ([]models.ExerciseResult, error) {
	query := `SELECT id, exercise_id, completed_sets, completed_reps, total_reps,
		 accuracy, duration_seconds, degraded_calibration, created_at
		 FROM exercise_results
		 WHERE created_at >= $1 AND created_at < $2`
	args := []any{start, end}
	if exerciseID != "" {
		query += ` AND exercise_id = $3`
		args = append(args, exerciseID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying exercise results: %w", err)
	}
	defer rows.Close()

	var result []models.ExerciseResult
	for rows.Next() {
		var r models.ExerciseResult
		if err := rows.Scan(&r.ID, &r.ExerciseID, &r.CompletedSets, &r.CompletedReps,
			&r.TotalReps, &r.Accuracy, &r.DurationSeconds, &r.DegradedCalibration, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning exercise result: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// GetExerciseResult retrieves a single result by id.
func (db *DB) GetExerciseResult(ctx context.Context, id uuid.UUID) (*models.ExerciseResult, error) {
	var r models.ExerciseResult
	err := db.Pool.QueryRow(ctx,
		`SELECT id, exercise_id, completed_sets, completed_reps, total_reps,
		 accuracy, duration_seconds, degraded_calibration, created_at
		 FROM exercise_results WHERE id = $1`, id).
		Scan(&r.ID, &r.ExerciseID, &r.CompletedSets, &r.CompletedReps,
			&r.TotalReps, &r.Accuracy, &r.DurationSeconds, &r.DegradedCalibration, &r.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting exercise result: %w", err)
	}
	return &r, nil
}

// ResultStats aggregates the stored history for one exercise.
type ResultStats struct {
	ExerciseID   string    `json:"exercise_id"`
	Sessions     int       `json:"sessions"`
	TotalReps    int       `json:"total_reps"`
	MeanAccuracy float64   `json:"mean_accuracy"`
	LastSession  time.Time `json:"last_session"`
}

// StatsByExercise summarizes all stored results grouped by exercise.
func (db *DB) StatsByExercise(ctx context.Context) ([]ResultStats, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT exercise_id, COUNT(*), COALESCE(SUM(total_reps), 0),
		 COALESCE(AVG(accuracy), 0), MAX(created_at)
		 FROM exercise_results
		 GROUP BY exercise_id
		 ORDER BY exercise_id`)
	if err != nil {
		return nil, fmt.Errorf("querying result stats: %w", err)
	}
	defer rows.Close()

	var result []ResultStats
	for rows.Next() {
		var s ResultStats
		if err := rows.Scan(&s.ExerciseID, &s.Sessions, &s.TotalReps, &s.MeanAccuracy, &s.LastSession); err != nil {
			return nil, fmt.Errorf("scanning result stats: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
