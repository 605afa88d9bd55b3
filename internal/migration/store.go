package migration

import (
	"context"
	"sync"

	"github.com/poesyliang/poesy-blog/internal/models"
)

// SummaryStore keeps migration summaries. Latest returns the most recently
// saved summary; both getters return nil when nothing matches.
type SummaryStore interface {
	Save(ctx context.Context, s *models.MigrationSummary) error
	Latest(ctx context.Context) (*models.MigrationSummary, error)
	Get(ctx context.Context, runID string) (*models.MigrationSummary, error)
}

// MemoryStore is a process-lifetime SummaryStore.
type MemoryStore struct {
	mu     sync.RWMutex
	latest *models.MigrationSummary
	byID   map[string]*models.MigrationSummary
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*models.MigrationSummary)}
}

// Save replaces the latest summary and indexes it by run ID.
func (m *MemoryStore) Save(_ context.Context, s *models.MigrationSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = s
	m.byID[s.RunID] = s
	return nil
}

// Latest returns the last saved summary.
func (m *MemoryStore) Latest(_ context.Context) (*models.MigrationSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest, nil
}

// Get returns the summary of runID.
func (m *MemoryStore) Get(_ context.Context, runID string) (*models.MigrationSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byID[runID], nil
}
