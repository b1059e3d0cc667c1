package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/formcoach/internal/models"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, exercises []models.ExerciseDefinition, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("FormCoach", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("FormCoach exercise session server. Query the exercise catalog, completed session results, and per-exercise training history."),
	)

	h := &handlers{ds: ds, exercises: exercises, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetResults, Handler: h.getResults},
		server.ServerTool{Tool: toolGetResult, Handler: h.getResult},
		server.ServerTool{Tool: toolGetResultSummary, Handler: h.getResultSummary},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
		server.ServerResource{Resource: resRecentResults, Handler: h.recentResults},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds        DataSource
	exercises []models.ExerciseDefinition
	log       *slog.Logger
}

// --- Resource definitions ---

var resExerciseCatalog = mcp.NewResource(
	"formcoach://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("All configured exercises with their detection method, thresholds, and set/rep targets"),
	mcp.WithMIMEType("application/json"),
)

var resRecentResults = mcp.NewResource(
	"formcoach://recent_results",
	"Recent Results",
	mcp.WithResourceDescription("Completed exercise sessions from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) exerciseCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(h.exercises)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) recentResults(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -14)

	results, err := h.ds.QueryExerciseResults(ctx, start, end, "")
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(results)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
