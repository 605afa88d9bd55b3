package migration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poesyliang/poesy-blog/internal/metrics"
	"github.com/poesyliang/poesy-blog/internal/models"
	"github.com/poesyliang/poesy-blog/internal/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSource struct {
	origin models.Origin
	posts  []models.WpPost
	err    error
}

func (f *fakeSource) Origin() models.Origin { return f.origin }

func (f *fakeSource) All(context.Context) upstream.Result[models.WpPost] {
	if f.err != nil {
		return upstream.Result[models.WpPost]{Requests: 1, Err: f.err}
	}
	return upstream.Result[models.WpPost]{Records: f.posts, Requests: 1}
}

// fakeInserter rejects titles listed in reject, errors on titles in fail,
// and accepts everything else with sequential ids.
type fakeInserter struct {
	mu      sync.Mutex
	calls   int
	titles  []string
	reject  map[string]string
	fail    map[string]error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeInserter) Create(_ context.Context, b models.BlogPost) (upstream.InsertResult, error) {
	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.titles = append(f.titles, b.BlogTitle)

	if err, ok := f.fail[b.BlogTitle]; ok {
		return upstream.InsertResult{}, err
	}
	if msg, ok := f.reject[b.BlogTitle]; ok {
		return upstream.InsertResult{Success: false, Message: msg}, nil
	}
	return upstream.InsertResult{Success: true, Message: "Blog created successfully", ID: strconv.Itoa(f.calls)}, nil
}

func (f *fakeInserter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func post(id, title, date string) models.WpPost {
	return models.WpPost{
		ID:            id,
		PostTitle:     title,
		PostName:      "slug-" + id,
		PostDate:      date,
		PostContent:   "<p>" + title + "</p>",
		PostStatus:    "publish",
		CommentStatus: "open",
		PingStatus:    "closed",
	}
}

func fixtures() (*fakeSource, *fakeSource) {
	com := &fakeSource{origin: models.OriginCom, posts: []models.WpPost{
		post("1", "com-a", "2020-01-02 00:00:00"),
		post("2", "com-b", "2019-05-01 10:00:00"),
		post("3", "com-c", "2021-07-07 07:07:07"),
	}}
	net := &fakeSource{origin: models.OriginNet, posts: []models.WpPost{
		post("10", "net-a", "2020-06-01 00:00:00"),
		post("11", "net-b", "2018-01-01 00:00:00"),
	}}
	return com, net
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 4, 5, 6, 7, 8_000_000, time.UTC)
}

func TestRunMigratesInDateOrder(t *testing.T) {
	com, net := fixtures()
	ins := &fakeInserter{}
	store := NewMemoryStore()
	r := NewRunner(com, net, ins, store, WithLogger(quietLogger()), WithClock(fixedClock))

	summary, err := r.Run(t.Context())
	require.NoError(t, err)

	assert.Equal(t, []string{"net-b", "com-b", "com-a", "net-a", "com-c"}, ins.titles)
	assert.Equal(t, 5, summary.TotalProcessed)
	assert.Equal(t, 5, summary.Successful)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, "2024-03-04T05:06:07.008Z", summary.Timestamp)
	assert.NotEmpty(t, summary.RunID)
	assert.NotNil(t, summary.FailedData, "failed_data should encode as [] not null")

	first := summary.SuccessData[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "net-b", first.Title)
	assert.Equal(t, "2018-01-01 00:00:00", first.Date)
	assert.Equal(t, models.OriginNet, first.Source)
	assert.Equal(t, "11", first.OriginalID)
	assert.Equal(t, "11", first.OriginalData.ID)
	assert.Equal(t, "slug-11", first.TransformedData.BlogName)
	assert.Equal(t, models.StatusPublish, first.DebugInfo.BlogStatus)
	assert.Equal(t, models.NotifyNone, first.DebugInfo.NotificationStatus)
	assert.True(t, first.DebugInfo.HasContent)
	assert.Equal(t, len("<p>net-b</p>"), first.DebugInfo.ContentLength)
}

func TestRunRecordsFailuresWithPayloads(t *testing.T) {
	com, net := fixtures()
	ins := &fakeInserter{
		reject: map[string]string{"com-a": "Missing required fields"},
		fail:   map[string]error{"net-a": fmt.Errorf("insert blog: %w", &upstream.HTTPError{StatusCode: 500, Status: "500 Internal Server Error", URL: "http://x/blogs"})},
	}
	r := NewRunner(com, net, ins, NewMemoryStore(), WithLogger(quietLogger()))

	summary, err := r.Run(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 5, summary.TotalProcessed)
	assert.Equal(t, 3, summary.Successful)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, summary.TotalProcessed, summary.Successful+summary.Failed)
	require.Len(t, summary.FailedData, 2)

	rejected := summary.FailedData[0]
	assert.Equal(t, "com-a", rejected.Title)
	assert.Equal(t, "Missing required fields", rejected.Error)
	assert.Equal(t, `Failed to insert blog "com-a": Missing required fields`, rejected.ErrorDetails)
	assert.Equal(t, "1", rejected.OriginalData.ID)
	assert.Equal(t, "com-a", rejected.TransformedData.BlogTitle)
	assert.Equal(t, models.VisibilityPrivate, rejected.TransformedData.BlogVisibility)

	errored := summary.FailedData[1]
	assert.Equal(t, "net-a", errored.Title)
	assert.Contains(t, errored.Error, "500 Internal Server Error")
	assert.Contains(t, errored.ErrorDetails, "caused by: *upstream.HTTPError")
	assert.Equal(t, models.OriginNet, errored.Source)
}

func TestRunRejectionWithoutMessage(t *testing.T) {
	com := &fakeSource{origin: models.OriginCom, posts: []models.WpPost{post("1", "x", "2020-01-01")}}
	net := &fakeSource{origin: models.OriginNet}
	ins := &fakeInserter{reject: map[string]string{"x": ""}}
	r := NewRunner(com, net, ins, NewMemoryStore(), WithLogger(quietLogger()))

	summary, err := r.Run(t.Context())
	require.NoError(t, err)
	require.Len(t, summary.FailedData, 1)
	assert.Equal(t, "Unknown error", summary.FailedData[0].Error)
}

func TestRunSourceFailure(t *testing.T) {
	cause := errors.New("connection refused")
	tests := []struct {
		name string
		com  error
		net  error
	}{
		{name: "com unreachable", com: cause},
		{name: "net unreachable", net: cause},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			com, net := fixtures()
			com.err, net.err = tt.com, tt.net
			ins := &fakeInserter{}
			store := NewMemoryStore()
			var events []EventType
			r := NewRunner(com, net, ins, store,
				WithLogger(quietLogger()),
				WithObserver(func(ev Event) { events = append(events, ev.Type) }))

			summary, err := r.Run(t.Context())
			require.ErrorIs(t, err, cause)
			assert.Nil(t, summary)
			assert.Zero(t, ins.Calls(), "nothing is inserted when a source fails")

			latest, err := store.Latest(t.Context())
			require.NoError(t, err)
			assert.Nil(t, latest)
			assert.Equal(t, []EventType{EventRunStarted, EventRunFailed}, events)
			assert.False(t, r.Running())
		})
	}
}

func TestRunEmptySources(t *testing.T) {
	r := NewRunner(
		&fakeSource{origin: models.OriginCom},
		&fakeSource{origin: models.OriginNet},
		&fakeInserter{}, NewMemoryStore(), WithLogger(quietLogger()))

	summary, err := r.Run(t.Context())
	require.NoError(t, err)
	assert.Zero(t, summary.TotalProcessed)
	assert.Empty(t, summary.SuccessData)
	assert.Empty(t, summary.FailedData)
}

func TestRunSavesLatestSummary(t *testing.T) {
	com, net := fixtures()
	store := NewMemoryStore()
	r := NewRunner(com, net, &fakeInserter{}, store, WithLogger(quietLogger()))

	summary, err := r.Run(t.Context())
	require.NoError(t, err)

	latest, err := store.Latest(t.Context())
	require.NoError(t, err)
	assert.Same(t, summary, latest)

	byID, err := store.Get(t.Context(), summary.RunID)
	require.NoError(t, err)
	assert.Same(t, summary, byID)
}

func TestRunIsNotIdempotent(t *testing.T) {
	com, net := fixtures()
	ins := &fakeInserter{}
	store := NewMemoryStore()
	r := NewRunner(com, net, ins, store, WithLogger(quietLogger()))

	first, err := r.Run(t.Context())
	require.NoError(t, err)
	second, err := r.Run(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 10, ins.Calls(), "a second run re-inserts every record")
	assert.NotEqual(t, first.RunID, second.RunID)

	latest, err := store.Latest(t.Context())
	require.NoError(t, err)
	assert.Same(t, second, latest)
}

func TestRunRejectsConcurrentRun(t *testing.T) {
	com, net := fixtures()
	ins := &fakeInserter{block: make(chan struct{}), started: make(chan struct{}, 1)}
	r := NewRunner(com, net, ins, NewMemoryStore(), WithLogger(quietLogger()))

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background())
		done <- err
	}()

	<-ins.started
	assert.True(t, r.Running())

	_, err := r.Run(t.Context())
	require.ErrorIs(t, err, ErrRunInProgress)

	close(ins.block)
	require.NoError(t, <-done)
	assert.False(t, r.Running())
	assert.Equal(t, 5, ins.Calls())
}

func TestRunConcurrentInsertsKeepOrder(t *testing.T) {
	com, net := fixtures()
	var inFlight, peak atomic.Int32
	ins := &trackingInserter{inFlight: &inFlight, peak: &peak}
	r := NewRunner(com, net, ins, NewMemoryStore(), WithLogger(quietLogger()), WithConcurrency(3))

	summary, err := r.Run(t.Context())
	require.NoError(t, err)

	var titles []string
	for _, e := range summary.SuccessData {
		titles = append(titles, e.Title)
	}
	assert.Equal(t, []string{"net-b", "com-b", "com-a", "net-a", "com-c"}, titles)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

type trackingInserter struct {
	inFlight *atomic.Int32
	peak     *atomic.Int32
}

func (t *trackingInserter) Create(_ context.Context, b models.BlogPost) (upstream.InsertResult, error) {
	n := t.inFlight.Add(1)
	defer t.inFlight.Add(-1)
	for {
		p := t.peak.Load()
		if n <= p || t.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return upstream.InsertResult{Success: true, ID: b.BlogName}, nil
}

func TestRunRecoversInserterPanic(t *testing.T) {
	com := &fakeSource{origin: models.OriginCom, posts: []models.WpPost{post("1", "boom", "2020-01-01")}}
	r := NewRunner(com, &fakeSource{origin: models.OriginNet}, panicInserter{}, NewMemoryStore(), WithLogger(quietLogger()))

	summary, err := r.Run(t.Context())
	require.NoError(t, err)
	require.Len(t, summary.FailedData, 1)
	assert.Contains(t, summary.FailedData[0].Error, "internal panic")
}

type panicInserter struct{}

func (panicInserter) Create(context.Context, models.BlogPost) (upstream.InsertResult, error) {
	panic("store exploded")
}

func TestRunEmitsEvents(t *testing.T) {
	com, net := fixtures()
	ins := &fakeInserter{reject: map[string]string{"com-b": "duplicate"}}
	var events []Event
	r := NewRunner(com, net, ins, NewMemoryStore(),
		WithLogger(quietLogger()),
		WithObserver(func(ev Event) { events = append(events, ev) }))

	summary, err := r.Run(t.Context())
	require.NoError(t, err)

	require.Len(t, events, 7)
	assert.Equal(t, EventRunStarted, events[0].Type)
	assert.Equal(t, EventRecordSucceeded, events[1].Type)
	assert.Equal(t, EventRecordFailed, events[2].Type)
	assert.Equal(t, "duplicate", events[2].Error)
	assert.Equal(t, 2, events[2].Index)
	assert.Equal(t, 5, events[2].Total)

	last := events[6]
	assert.Equal(t, EventRunCompleted, last.Type)
	assert.Equal(t, summary.RunID, last.RunID)
	assert.Equal(t, 4, last.Successful)
	assert.Equal(t, 1, last.Failed)
}

func TestRunRecordsMetrics(t *testing.T) {
	com, net := fixtures()
	m := metrics.NewCollector()
	r := NewRunner(com, net, &fakeInserter{}, NewMemoryStore(), WithLogger(quietLogger()), WithMetrics(m))

	_, err := r.Run(t.Context())
	require.NoError(t, err)

	snap := m.Snapshot()
	require.NotNil(t, snap.MigrationRun)
	assert.Equal(t, int64(1), snap.MigrationRun.Count)
	require.NotNil(t, snap.SummarySave)
	assert.Equal(t, int64(1), snap.SummarySave.Count)
}

type failingStore struct{ MemoryStore }

func (*failingStore) Save(context.Context, *models.MigrationSummary) error {
	return errors.New("disk full")
}

func TestRunSurvivesSummaryStoreFailure(t *testing.T) {
	com, net := fixtures()
	r := NewRunner(com, net, &fakeInserter{}, &failingStore{}, WithLogger(quietLogger()))

	summary, err := r.Run(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Successful)
}
