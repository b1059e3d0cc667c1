package mcp

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/claude/formcoach/internal/localstore"
	"github.com/claude/formcoach/internal/models"
	"github.com/claude/formcoach/internal/storage"
)

// DataSource abstracts the result store for MCP tools. The PostgreSQL and
// SQLite stores (local) and HTTPClient (remote via REST API) all satisfy it.
type DataSource interface {
	QueryExerciseResults(ctx context.Context, start, end time.Time, exerciseID string) ([]models.ExerciseResult, error)
	GetExerciseResult(ctx context.Context, id uuid.UUID) (*models.ExerciseResult, error)
	StatsByExercise(ctx context.Context) ([]storage.ResultStats, error)
}

// Compile-time checks: the local stores satisfy DataSource.
var (
	_ DataSource = (*storage.DB)(nil)
	_ DataSource = (*localstore.Store)(nil)
)
