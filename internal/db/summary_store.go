package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/poesyliang/poesy-blog/internal/models"
)

// migrationRun is the stored form of a summary.
type migrationRun struct {
	ID             *surrealmodels.RecordID `json:"id,omitempty"`
	RunID          string                  `json:"run_id"`
	Timestamp      string                  `json:"timestamp"`
	TotalProcessed int                     `json:"total_processed"`
	Successful     int                     `json:"successful"`
	Failed         int                     `json:"failed"`
	Payload        string                  `json:"payload"`
	CreatedAt      time.Time               `json:"created_at"`
}

func (r migrationRun) summary() (*models.MigrationSummary, error) {
	if r.ID != nil {
		if _, err := models.RecordIDString(*r.ID); err != nil {
			return nil, fmt.Errorf("migration_run %s: %w", r.RunID, err)
		}
	}
	var s models.MigrationSummary
	if err := json.Unmarshal([]byte(r.Payload), &s); err != nil {
		return nil, fmt.Errorf("decode migration_run %s: %w", r.RunID, err)
	}
	return &s, nil
}

// SummaryStore keeps migration summaries in the migration_run table.
type SummaryStore struct {
	client *Client
}

// NewSummaryStore creates a store on an initialized client.
func NewSummaryStore(client *Client) *SummaryStore {
	return &SummaryStore{client: client}
}

// Save upserts the summary under its run ID.
func (s *SummaryStore) Save(ctx context.Context, summary *models.MigrationSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	_, err = surrealdb.Query[any](ctx, s.client.db, `
		UPSERT type::record("migration_run", $run_id) CONTENT {
			run_id: $run_id,
			timestamp: $timestamp,
			total_processed: $total_processed,
			successful: $successful,
			failed: $failed,
			payload: $payload,
			created_at: time::now()
		}
	`, map[string]any{
		"run_id":          summary.RunID,
		"timestamp":       summary.Timestamp,
		"total_processed": summary.TotalProcessed,
		"successful":      summary.Successful,
		"failed":          summary.Failed,
		"payload":         string(payload),
	})
	if err != nil {
		return fmt.Errorf("save migration run: %w", wrapQueryError(err))
	}
	return nil
}

// Latest returns the most recently saved summary, or nil.
func (s *SummaryStore) Latest(ctx context.Context) (*models.MigrationSummary, error) {
	results, err := surrealdb.Query[[]migrationRun](ctx, s.client.db, `
		SELECT * FROM migration_run ORDER BY created_at DESC LIMIT 1
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("latest migration run: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return (*results)[0].Result[0].summary()
}

// Run returns the summary of runID or ErrNotFound.
func (s *SummaryStore) Run(ctx context.Context, runID string) (*models.MigrationSummary, error) {
	results, err := surrealdb.Query[[]migrationRun](ctx, s.client.db, `
		SELECT * FROM type::record("migration_run", $run_id)
	`, map[string]any{"run_id": runID})
	if err != nil {
		return nil, fmt.Errorf("get migration run: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("migration run %s: %w", runID, ErrNotFound)
	}
	return (*results)[0].Result[0].summary()
}

// Get returns the summary of runID, or nil when there is none.
func (s *SummaryStore) Get(ctx context.Context, runID string) (*models.MigrationSummary, error) {
	summary, err := s.Run(ctx, runID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return summary, err
}

// Count returns how many runs are stored.
func (s *SummaryStore) Count(ctx context.Context) (int, error) {
	results, err := surrealdb.Query[[]struct {
		Count int `json:"count"`
	}](ctx, s.client.db, `SELECT count() AS count FROM migration_run GROUP ALL`, nil)
	if err != nil {
		return 0, fmt.Errorf("count migration runs: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].Count, nil
}
