// Package migration moves wp_posts from both origins into the blog store.
package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/poesyliang/poesy-blog/internal/metrics"
	"github.com/poesyliang/poesy-blog/internal/models"
	"github.com/poesyliang/poesy-blog/internal/transform"
	"github.com/poesyliang/poesy-blog/internal/upstream"
)

// ErrRunInProgress is returned when a run is requested while another is active.
var ErrRunInProgress = errors.New("migration already in progress")

// timestampLayout matches the millisecond ISO-8601 form the summary has always used.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// SourceFetcher fetches every wp_post of one origin.
type SourceFetcher interface {
	Origin() models.Origin
	All(ctx context.Context) upstream.Result[models.WpPost]
}

// Inserter writes one blog to the target store. A non-nil error means the
// write failed in flight; a result with Success false means the store
// rejected it.
type Inserter interface {
	Create(ctx context.Context, b models.BlogPost) (upstream.InsertResult, error)
}

// Runner executes migration runs. At most one run is active at a time.
type Runner struct {
	com         SourceFetcher
	net         SourceFetcher
	inserter    Inserter
	store       SummaryStore
	logger      *slog.Logger
	metrics     *metrics.Collector
	concurrency int
	observers   []Observer
	now         func() time.Time

	running atomic.Bool
	emitMu  sync.Mutex
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics records run and summary-save timings.
func WithMetrics(m *metrics.Collector) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithConcurrency bounds in-flight inserts. Values below 1 mean sequential.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		r.concurrency = max(n, 1)
	}
}

// WithObserver registers an event observer.
func WithObserver(o Observer) Option {
	return func(r *Runner) {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
}

// WithClock overrides the time source for summary timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner creates a runner over the two origins. Records from com sort
// ahead of net records with the same date.
func NewRunner(com, net SourceFetcher, inserter Inserter, store SummaryStore, opts ...Option) *Runner {
	r := &Runner{
		com:         com,
		net:         net,
		inserter:    inserter,
		store:       store,
		logger:      slog.Default(),
		concurrency: 1,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Running reports whether a run is active.
func (r *Runner) Running() bool {
	return r.running.Load()
}

// Store returns the summary store runs are saved to.
func (r *Runner) Store() SummaryStore {
	return r.store
}

// Run performs one synchronous migration and returns its summary.
func (r *Runner) Run(ctx context.Context) (*models.MigrationSummary, error) {
	if !r.acquire() {
		return nil, ErrRunInProgress
	}
	defer r.release()
	return r.execute(ctx, uuid.New().String(), nil)
}

func (r *Runner) acquire() bool {
	return r.running.CompareAndSwap(false, true)
}

func (r *Runner) release() {
	r.running.Store(false)
}

// outcome is the result of migrating one record. Exactly one field is set.
type outcome struct {
	ok     *models.MigratedEntry
	failed *models.FailedEntry
}

func (r *Runner) execute(ctx context.Context, runID string, extra Observer) (summary *models.MigrationSummary, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe(metrics.OpMigrationRun, start, err)
	}()

	r.emit(extra, Event{Type: EventRunStarted, RunID: runID})
	r.logger.Info("starting migration", "run_id", runID)

	com := r.com.All(ctx)
	if !com.OK() {
		return nil, r.fail(extra, runID, fmt.Errorf("fetch %s wp_posts: %w", r.com.Origin(), com.Err))
	}
	net := r.net.All(ctx)
	if !net.OK() {
		return nil, r.fail(extra, runID, fmt.Errorf("fetch %s wp_posts: %w", r.net.Origin(), net.Err))
	}
	r.logger.Info("fetched wp_posts",
		"run_id", runID,
		string(r.com.Origin()), len(com.Records),
		string(r.net.Origin()), len(net.Records))

	records := transform.CombineAndSort(com.Records, net.Records)
	total := len(records)
	r.logger.Info("combined and sorted records", "run_id", runID, "total", total)

	outcomes := make([]outcome, total)
	var (
		progressMu sync.Mutex
		succeeded  int
		failed     int
	)
	migrate := func(i int) {
		o := r.migrateOne(ctx, runID, i, total, records[i])
		outcomes[i] = o

		progressMu.Lock()
		ev := Event{RunID: runID, Index: i + 1, Total: total, Source: records[i].Source, OriginalID: records[i].OriginalID}
		if o.ok != nil {
			succeeded++
			ev.Type = EventRecordSucceeded
			ev.Title = o.ok.Title
			ev.BlogID = o.ok.ID
		} else {
			failed++
			ev.Type = EventRecordFailed
			ev.Title = o.failed.Title
			ev.Error = o.failed.Error
		}
		ev.Successful, ev.Failed = succeeded, failed
		r.emit(extra, ev)
		progressMu.Unlock()
	}

	if r.concurrency <= 1 {
		for i := range records {
			migrate(i)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(r.concurrency)
		for i := range records {
			g.Go(func() error {
				migrate(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	summary = &models.MigrationSummary{
		RunID:          runID,
		Timestamp:      r.now().UTC().Format(timestampLayout),
		TotalProcessed: total,
		SuccessData:    make([]models.MigratedEntry, 0, succeeded),
		FailedData:     make([]models.FailedEntry, 0, failed),
	}
	for _, o := range outcomes {
		if o.ok != nil {
			summary.SuccessData = append(summary.SuccessData, *o.ok)
		} else {
			summary.FailedData = append(summary.FailedData, *o.failed)
		}
	}
	summary.Successful = len(summary.SuccessData)
	summary.Failed = len(summary.FailedData)

	r.saveSummary(ctx, summary)

	r.logger.Info("migration completed",
		"run_id", runID,
		"total", summary.TotalProcessed,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"duration", time.Since(start))
	r.emit(extra, Event{
		Type:       EventRunCompleted,
		RunID:      runID,
		Total:      total,
		Successful: summary.Successful,
		Failed:     summary.Failed,
	})
	return summary, nil
}

// saveSummary persists the summary. A store failure is logged; the run
// itself already happened and its result is still returned.
func (r *Runner) saveSummary(ctx context.Context, s *models.MigrationSummary) {
	if r.store == nil {
		return
	}
	start := time.Now()
	err := r.store.Save(ctx, s)
	r.metrics.Observe(metrics.OpSummarySave, start, err)
	if err != nil {
		r.logger.Error("failed to save migration summary", "run_id", s.RunID, "error", err)
	}
}

func (r *Runner) fail(extra Observer, runID string, err error) error {
	r.logger.Error("migration failed", "run_id", runID, "error", err)
	r.emit(extra, Event{Type: EventRunFailed, RunID: runID, Error: err.Error()})
	return err
}

func (r *Runner) migrateOne(ctx context.Context, runID string, i, total int, rec models.BlogPostWithSource) (o outcome) {
	blog := rec.Strip()
	debug := models.NewDebugInfo(blog)

	r.logger.Info("inserting blog",
		"run_id", runID,
		"progress", fmt.Sprintf("[%d/%d]", i+1, total),
		"title", blog.BlogTitle,
		"source", rec.Source,
		"original_id", rec.OriginalID)

	failure := func(msg, details string) outcome {
		r.logger.Error("failed to insert blog",
			"run_id", runID,
			"title", blog.BlogTitle,
			"source", rec.Source,
			"original_id", rec.OriginalID,
			"error", msg)
		return outcome{failed: &models.FailedEntry{
			Title:           blog.BlogTitle,
			Date:            blog.BlogDate,
			Source:          rec.Source,
			OriginalID:      rec.OriginalID,
			OriginalData:    rec.OriginalData,
			TransformedData: blog,
			Error:           msg,
			ErrorDetails:    details,
			DebugInfo:       debug,
		}}
	}

	defer func() {
		if p := recover(); p != nil {
			msg := fmt.Sprintf("internal panic: %v", p)
			o = failure(msg, msg)
		}
	}()

	res, err := r.inserter.Create(ctx, blog)
	switch {
	case err != nil:
		return failure(err.Error(), errorDetails(err))
	case !res.Success:
		msg := res.Message
		if msg == "" {
			msg = "Unknown error"
		}
		return failure(msg, fmt.Sprintf("Failed to insert blog %q: %s", blog.BlogTitle, msg))
	}

	return outcome{ok: &models.MigratedEntry{
		ID:              res.ID,
		Title:           blog.BlogTitle,
		Date:            blog.BlogDate,
		Source:          rec.Source,
		OriginalID:      rec.OriginalID,
		OriginalData:    rec.OriginalData,
		TransformedData: blog,
		DebugInfo:       debug,
	}}
}

// errorDetails renders the wrapped chain of err, one cause per line.
func errorDetails(err error) string {
	var b strings.Builder
	for depth := 0; err != nil; depth++ {
		if depth > 0 {
			b.WriteString("\ncaused by: ")
		}
		fmt.Fprintf(&b, "%T: %v", err, err)
		err = errors.Unwrap(err)
	}
	return b.String()
}

func (r *Runner) emit(extra Observer, ev Event) {
	if len(r.observers) == 0 && extra == nil {
		return
	}
	ev.Time = time.Now()
	r.emitMu.Lock()
	defer r.emitMu.Unlock()
	for _, o := range r.observers {
		o(ev)
	}
	if extra != nil {
		extra(ev)
	}
}
