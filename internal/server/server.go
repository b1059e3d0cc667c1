package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/formcoach/internal/engine"
	"github.com/claude/formcoach/internal/models"
	"github.com/claude/formcoach/internal/storage"
)

// ResultStore is the persistence surface the handlers need. Both the
// PostgreSQL and the SQLite store satisfy it.
type ResultStore interface {
	InsertExerciseResult(ctx context.Context, r models.ExerciseResult) error
	QueryExerciseResults(ctx context.Context, start, end time.Time, exerciseID string) ([]models.ExerciseResult, error)
	GetExerciseResult(ctx context.Context, id uuid.UUID) (*models.ExerciseResult, error)
	StatsByExercise(ctx context.Context) ([]storage.ResultStats, error)
}

// Server holds dependencies for HTTP handlers and the session stream.
type Server struct {
	store     ResultStore
	exercises []models.ExerciseDefinition
	session   engine.Config
	cueWindow time.Duration
	log       *slog.Logger
	apiKey    string
	router    chi.Router
}

// New creates a new Server with all routes configured.
func New(store ResultStore, exercises []models.ExerciseDefinition, session engine.Config, cueWindow time.Duration, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:     store,
		exercises: exercises,
		session:   session,
		cueWindow: cueWindow,
		log:       log,
		apiKey:    apiKey,
		router:    chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Exercise catalog (public)
	s.router.Get("/api/v1/exercises", s.handleListExercises)
	s.router.Get("/api/v1/exercises/{id}", s.handleGetExercise)

	// Result history (API key required)
	s.router.Route("/api/v1/results", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Get("/", s.handleQueryResults)
		r.Get("/stats", s.handleResultStats)
		r.Get("/{id}", s.handleGetResult)
	})

	// Live session stream. Browser dials pass the key as api_key query
	// parameter; the middleware accepts both forms.
	s.router.With(APIKeyAuth(s.apiKey)).Get("/api/v1/sessions/stream", s.handleSessionStream)
}

func (s *Server) findExercise(id string) (models.ExerciseDefinition, bool) {
	for _, def := range s.exercises {
		if def.ID == id {
			return def, true
		}
	}
	return models.ExerciseDefinition{}, false
}
