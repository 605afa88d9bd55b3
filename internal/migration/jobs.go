package migration

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/poesyliang/poesy-blog/internal/models"
)

// JobStatus represents the state of a background migration.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Job is one migration run started in the background.
type Job struct {
	ID          string                   `json:"id"`
	RunID       string                   `json:"run_id"`
	Status      JobStatus                `json:"status"`
	Progress    int                      `json:"progress"`
	Total       int                      `json:"total"`
	Successful  int                      `json:"successful"`
	Failed      int                      `json:"failed"`
	Summary     *models.MigrationSummary `json:"summary,omitempty"`
	Error       string                   `json:"error,omitempty"`
	StartedAt   time.Time                `json:"started_at"`
	CompletedAt *time.Time               `json:"completed_at,omitempty"`

	mu sync.RWMutex
}

// Done reports whether the job reached a terminal state. Call it on a Snapshot.
func (j *Job) Done() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// Snapshot returns a thread-safe copy of job state.
func (j *Job) Snapshot() Job {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return Job{
		ID:          j.ID,
		RunID:       j.RunID,
		Status:      j.Status,
		Progress:    j.Progress,
		Total:       j.Total,
		Successful:  j.Successful,
		Failed:      j.Failed,
		Summary:     j.Summary,
		Error:       j.Error,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
}

// JobManager tracks background runs of a Runner.
type JobManager struct {
	runner *Runner
	logger *slog.Logger
	jobs   map[string]*Job
	mu     sync.RWMutex
}

// NewJobManager creates a job manager for runner.
func NewJobManager(runner *Runner, logger *slog.Logger) *JobManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobManager{
		runner: runner,
		logger: logger,
		jobs:   make(map[string]*Job),
	}
}

// Start launches a run in the background. It fails with ErrRunInProgress
// when any run, synchronous or not, is active.
func (m *JobManager) Start() (*Job, error) {
	if !m.runner.acquire() {
		return nil, ErrRunInProgress
	}

	job := &Job{
		ID:        uuid.New().String()[:8],
		RunID:     uuid.New().String(),
		Status:    JobStatusPending,
		StartedAt: time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	m.logger.Info("job created", "job_id", job.ID, "run_id", job.RunID)

	go func() {
		defer m.runner.release()
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("migration job panicked", "job_id", job.ID, "panic", r)
				m.fail(job, fmt.Errorf("internal panic: %v", r))
			}
		}()

		summary, err := m.runner.execute(context.Background(), job.RunID, func(ev Event) {
			m.track(job, ev)
		})
		if err != nil {
			m.fail(job, err)
			return
		}
		m.complete(job, summary)
	}()

	return job, nil
}

// Get retrieves a job by ID.
func (m *JobManager) Get(id string) *Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

// List returns all jobs, most recent first.
func (m *JobManager) List() []*Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := make([]*Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job)
	}
	slices.SortFunc(jobs, func(a, b *Job) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	return jobs
}

func (m *JobManager) track(job *Job, ev Event) {
	job.mu.Lock()
	defer job.mu.Unlock()
	switch ev.Type {
	case EventRunStarted:
		job.Status = JobStatusRunning
	case EventRecordSucceeded, EventRecordFailed:
		job.Progress = ev.Successful + ev.Failed
		job.Total = ev.Total
		job.Successful = ev.Successful
		job.Failed = ev.Failed
	}
}

func (m *JobManager) complete(job *Job, summary *models.MigrationSummary) {
	job.mu.Lock()
	job.Status = JobStatusCompleted
	job.Summary = summary
	job.Progress = summary.TotalProcessed
	job.Total = summary.TotalProcessed
	job.Successful = summary.Successful
	job.Failed = summary.Failed
	now := time.Now()
	job.CompletedAt = &now
	job.mu.Unlock()

	m.logger.Info("job completed", "job_id", job.ID, "successful", summary.Successful, "failed", summary.Failed)
}

func (m *JobManager) fail(job *Job, err error) {
	job.mu.Lock()
	job.Status = JobStatusFailed
	job.Error = err.Error()
	now := time.Now()
	job.CompletedAt = &now
	job.mu.Unlock()

	m.logger.Error("job failed", "job_id", job.ID, "error", err)
}
