// Package localstore is the embedded SQLite result store. It implements the
// same repository surface as the PostgreSQL store so single-machine
// deployments and the offline replay tool need no external database.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/claude/formcoach/internal/models"
	"github.com/claude/formcoach/internal/storage"
)

// Store persists exercise results in a local SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite result database at the given path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating result dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening result db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS exercise_results (
		id                   TEXT PRIMARY KEY,
		exercise_id          TEXT NOT NULL,
		completed_sets       INTEGER NOT NULL,
		completed_reps       TEXT NOT NULL,
		total_reps           INTEGER NOT NULL,
		accuracy             INTEGER NOT NULL,
		duration_seconds     INTEGER NOT NULL,
		degraded_calibration INTEGER NOT NULL DEFAULT 0,
		created_at           INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating results table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the result database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertExerciseResult persists one completed session result.
func (s *Store) InsertExerciseResult(ctx context.Context, r models.ExerciseResult) error {
	reps, err := json.Marshal(r.CompletedReps)
	if err != nil {
		return fmt.Errorf("encoding completed reps: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO exercise_results (id, exercise_id, completed_sets,
		 completed_reps, total_reps, accuracy, duration_seconds, degraded_calibration, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.ExerciseID, r.CompletedSets, string(reps),
		r.TotalReps, r.Accuracy, r.DurationSeconds, r.DegradedCalibration, r.Timestamp.Unix())
	if err != nil {
		return fmt.Errorf("inserting exercise result: %w", err)
	}
	return nil
}

// QueryExerciseResults retrieves results in a time range, newest first.
// exerciseID narrows to one exercise when non-empty.
func (s *Store) QueryExerciseResults(ctx context.Context, start, end time.Time, exerciseID string) ([]models.ExerciseResult, error) {
	query := `SELECT id, exercise_id, completed_sets, completed_reps, total_reps,
		 accuracy, duration_seconds, degraded_calibration, created_at
		 FROM exercise_results
		 WHERE created_at >= ? AND created_at < ?`
	args := []any{start.Unix(), end.Unix()}
	if exerciseID != "" {
		query += ` AND exercise_id = ?`
		args = append(args, exerciseID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying exercise results: %w", err)
	}
	defer rows.Close()

	var result []models.ExerciseResult
	for rows.Next() {
		r, err := scanResult(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// GetExerciseResult retrieves a single result by id.
func (s *Store) GetExerciseResult(ctx context.Context, id uuid.UUID) (*models.ExerciseResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, exercise_id, completed_sets, completed_reps, total_reps,
		 accuracy, duration_seconds, degraded_calibration, created_at
		 FROM exercise_results WHERE id = ?`, id.String())
	r, err := scanResult(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// StatsByExercise summarizes all stored results grouped by exercise.
func (s *Store) StatsByExercise(ctx context.Context) ([]storage.ResultStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT exercise_id, COUNT(*), COALESCE(SUM(total_reps), 0),
		 COALESCE(AVG(accuracy), 0), MAX(created_at)
		 FROM exercise_results
		 GROUP BY exercise_id
		 ORDER BY exercise_id`)
	if err != nil {
		return nil, fmt.Errorf("querying result stats: %w", err)
	}
	defer rows.Close()

	var result []storage.ResultStats
	for rows.Next() {
		var (
			st   storage.ResultStats
			last int64
		)
		if err := rows.Scan(&st.ExerciseID, &st.Sessions, &st.TotalReps, &st.MeanAccuracy, &last); err != nil {
			return nil, fmt.Errorf("scanning result stats: %w", err)
		}
		st.LastSession = time.Unix(last, 0).UTC()
		result = append(result, st)
	}
	return result, rows.Err()
}

func scanResult(scan func(dest ...any) error) (models.ExerciseResult, error) {
	var (
		r     models.ExerciseResult
		rawID string
		reps  string
		ts    int64
	)
	if err := scan(&rawID, &r.ExerciseID, &r.CompletedSets, &reps, &r.TotalReps,
		&r.Accuracy, &r.DurationSeconds, &r.DegradedCalibration, &ts); err != nil {
		return models.ExerciseResult{}, err
	}
	r.Timestamp = time.Unix(ts, 0).UTC()
	id, err := uuid.Parse(rawID)
	if err != nil {
		return models.ExerciseResult{}, fmt.Errorf("parsing result id %q: %w", rawID, err)
	}
	r.ID = id
	if err := json.Unmarshal([]byte(reps), &r.CompletedReps); err != nil {
		return models.ExerciseResult{}, fmt.Errorf("decoding completed reps: %w", err)
	}
	return r, nil
}
