package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/poesyliang/poesy-blog/internal/client"
	"github.com/poesyliang/poesy-blog/internal/models"
)

// maxListedFailures bounds the failures included in a summary result.
const maxListedFailures = 20

// Failure is one failed record in a summary result.
type Failure struct {
	Title      string        `json:"title"`
	Source     models.Origin `json:"source"`
	OriginalID string        `json:"original_id"`
	Error      string        `json:"error"`
}

// SummaryResult is the compact view of a migration summary. The per-record
// payloads are left out; migration_summary with the run ID and the HTTP API
// return them in full.
type SummaryResult struct {
	RunID          string    `json:"run_id"`
	Timestamp      string    `json:"timestamp"`
	TotalProcessed int       `json:"total_processed"`
	Successful     int       `json:"successful"`
	Failed         int       `json:"failed"`
	Failures       []Failure `json:"failures,omitempty"`
	MoreFailures   int       `json:"more_failures,omitempty"`
}

func newSummaryResult(s *models.MigrationSummary) SummaryResult {
	out := SummaryResult{
		RunID:          s.RunID,
		Timestamp:      s.Timestamp,
		TotalProcessed: s.TotalProcessed,
		Successful:     s.Successful,
		Failed:         s.Failed,
	}
	for i, f := range s.FailedData {
		if i == maxListedFailures {
			out.MoreFailures = len(s.FailedData) - maxListedFailures
			break
		}
		out.Failures = append(out.Failures, Failure{
			Title:      f.Title,
			Source:     f.Source,
			OriginalID: f.OriginalID,
			Error:      f.Error,
		})
	}
	return out
}

// MigrateInput defines the input schema for the migrate tool.
type MigrateInput struct {
	Async bool `json:"async,omitempty" jsonschema:"Start the run in the background and return its job"`
}

// NewMigrateHandler creates the migrate tool handler.
func NewMigrateHandler(deps *Dependencies) mcp.ToolHandlerFor[MigrateInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input MigrateInput) (*mcp.CallToolResult, any, error) {
		if input.Async {
			job, err := deps.API.MigrateAsync(ctx)
			if err != nil {
				return migrateErrorResult(deps, err), nil, nil
			}
			deps.Logger.Info("migration job started", "job_id", job.ID, "run_id", job.RunID)
			return JSONResult(job), nil, nil
		}

		summary, err := deps.API.Migrate(ctx)
		if err != nil {
			return migrateErrorResult(deps, err), nil, nil
		}
		deps.Logger.Info("migration completed",
			"run_id", summary.RunID,
			"successful", summary.Successful,
			"failed", summary.Failed)
		return JSONResult(newSummaryResult(summary)), nil, nil
	}
}

func migrateErrorResult(deps *Dependencies, err error) *mcp.CallToolResult {
	if errors.Is(err, client.ErrConflict) {
		return ErrorResult("A migration is already running", "Use get_job or migration_summary to follow it")
	}
	deps.Logger.Error("migration failed", "error", err)
	return ErrorResult(apiMessage(err, "Migration failed"), "Check migration_summary; the legacy sites may be unreachable")
}

// GetJobInput defines the input schema for the get_job tool.
type GetJobInput struct {
	ID string `json:"id" jsonschema:"Job ID returned by migrate async=true"`
}

// NewGetJobHandler creates the get_job tool handler.
func NewGetJobHandler(deps *Dependencies) mcp.ToolHandlerFor[GetJobInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetJobInput) (*mcp.CallToolResult, any, error) {
		id := strings.TrimSpace(input.ID)
		if id == "" {
			return ErrorResult("ID cannot be empty", "Provide a job ID"), nil, nil
		}

		job, err := deps.API.GetJob(ctx, id)
		if errors.Is(err, client.ErrNotFound) {
			return ErrorResult(fmt.Sprintf("Job not found: %s", id), "Jobs are kept until poesy-api restarts"), nil, nil
		}
		if err != nil {
			deps.Logger.Error("get job failed", "id", id, "error", err)
			return ErrorResult(apiMessage(err, "Failed to fetch job"), hintAPIDown), nil, nil
		}
		return JSONResult(job), nil, nil
	}
}

// MigrationSummaryInput defines the input schema for the migration_summary tool.
type MigrationSummaryInput struct {
	RunID string `json:"run_id,omitempty" jsonschema:"Run ID, the last run if omitted"`
}

// NewMigrationSummaryHandler creates the migration_summary tool handler.
func NewMigrationSummaryHandler(deps *Dependencies) mcp.ToolHandlerFor[MigrationSummaryInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input MigrationSummaryInput) (*mcp.CallToolResult, any, error) {
		runID := strings.TrimSpace(input.RunID)

		summary, err := deps.API.Summary(ctx, runID)
		if errors.Is(err, client.ErrNotFound) {
			return ErrorResult(fmt.Sprintf("Migration run not found: %s", runID), "Omit run_id for the last run"), nil, nil
		}
		if err != nil {
			deps.Logger.Error("get summary failed", "run_id", runID, "error", err)
			return ErrorResult(apiMessage(err, "Failed to load migration summary"), hintAPIDown), nil, nil
		}
		if summary == nil {
			return TextResult("No migration has been run yet"), nil, nil
		}
		return JSONResult(newSummaryResult(summary)), nil, nil
	}
}
