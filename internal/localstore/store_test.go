package localstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/claude/formcoach/internal/models"
	"github.com/claude/formcoach/internal/storage"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult(exerciseID string, at time.Time) models.ExerciseResult {
	return models.ExerciseResult{
		ID:              uuid.New(),
		ExerciseID:      exerciseID,
		CompletedSets:   3,
		CompletedReps:   []int{10, 10, 9},
		TotalReps:       29,
		Accuracy:        97,
		DurationSeconds: 312,
		Timestamp:       at,
	}
}

// TestInsertAndGet verifies a stored result round-trips through SQLite,
// including the per-set rep counts.
func TestInsertAndGet(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	want := sampleResult("arm_raise", time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC))
	want.DegradedCalibration = true
	if err := s.InsertExerciseResult(ctx, want); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetExerciseResult(ctx, want.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ExerciseID != want.ExerciseID || got.TotalReps != want.TotalReps ||
		got.Accuracy != want.Accuracy || !got.DegradedCalibration {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if len(got.CompletedReps) != 3 || got.CompletedReps[2] != 9 {
		t.Errorf("completed reps = %v, want [10 10 9]", got.CompletedReps)
	}
}

// TestGetMissing verifies a lookup miss returns the shared not-found error.
func TestGetMissing(t *testing.T) {
	s := openTemp(t)

	_, err := s.GetExerciseResult(context.Background(), uuid.New())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestInsertDuplicateIgnored verifies re-inserting the same result id is a
// no-op, so a retried write cannot duplicate a session.
func TestInsertDuplicateIgnored(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	r := sampleResult("squat", time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC))
	if err := s.InsertExerciseResult(ctx, r); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertExerciseResult(ctx, r); err != nil {
		t.Fatal(err)
	}

	results, err := s.QueryExerciseResults(ctx,
		r.Timestamp.Add(-time.Hour), r.Timestamp.Add(time.Hour), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("results = %d, want 1", len(results))
	}
}

// TestQueryRangeAndFilter verifies the time-range bounds and the optional
// exercise filter.
func TestQueryRangeAndFilter(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	for day := 0; day < 3; day++ {
		if err := s.InsertExerciseResult(ctx, sampleResult("arm_raise", base.AddDate(0, 0, day))); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.InsertExerciseResult(ctx, sampleResult("squat", base.AddDate(0, 0, 1))); err != nil {
		t.Fatal(err)
	}

	// Half-open range: [day 0, day 2) excludes the day-2 result.
	results, err := s.QueryExerciseResults(ctx, base, base.AddDate(0, 0, 2), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results in range = %d, want 3", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Timestamp.After(results[i-1].Timestamp) {
			t.Error("results not ordered newest first")
		}
	}

	filtered, err := s.QueryExerciseResults(ctx, base, base.AddDate(0, 0, 7), "squat")
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 1 || filtered[0].ExerciseID != "squat" {
		t.Errorf("filtered = %+v, want one squat result", filtered)
	}
}

// TestStatsByExercise verifies per-exercise aggregation over stored history.
func TestStatsByExercise(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	for day := 0; day < 2; day++ {
		if err := s.InsertExerciseResult(ctx, sampleResult("arm_raise", base.AddDate(0, 0, day))); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := s.StatsByExercise(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 1 {
		t.Fatalf("stats = %+v, want one exercise", stats)
	}
	st := stats[0]
	if st.ExerciseID != "arm_raise" || st.Sessions != 2 || st.TotalReps != 58 {
		t.Errorf("stats = %+v, want 2 sessions / 58 reps", st)
	}
	if st.MeanAccuracy < 96.9 || st.MeanAccuracy > 97.1 {
		t.Errorf("mean accuracy = %v, want 97", st.MeanAccuracy)
	}
}
