package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/poesyliang/poesy-blog/internal/migration"
	"github.com/poesyliang/poesy-blog/internal/models"
	"github.com/poesyliang/poesy-blog/internal/server"
	"github.com/poesyliang/poesy-blog/internal/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubSource struct {
	origin models.Origin
	posts  []models.WpPost
}

func (s stubSource) Origin() models.Origin { return s.origin }

func (s stubSource) Page(_ context.Context, limit, offset int) ([]models.WpPost, error) {
	if offset >= len(s.posts) {
		return nil, nil
	}
	return s.posts[offset:min(offset+limit, len(s.posts))], nil
}

func (s stubSource) All(context.Context) upstream.Result[models.WpPost] {
	return upstream.Result[models.WpPost]{Records: s.posts, Requests: 1}
}

// memBlogs is an in-memory blog store with sequential ids.
type memBlogs struct {
	mu    sync.Mutex
	blogs []models.BlogPost
}

func (m *memBlogs) List(_ context.Context, limit, offset int) []models.BlogPost {
	m.mu.Lock()
	defer m.mu.Unlock()
	if offset >= len(m.blogs) {
		return nil
	}
	return append([]models.BlogPost(nil), m.blogs[offset:min(offset+limit, len(m.blogs))]...)
}

func (m *memBlogs) Get(_ context.Context, id string) *models.BlogPost {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.blogs {
		if b.ID.String() == id {
			return &b
		}
	}
	return nil
}

func (m *memBlogs) Insert(ctx context.Context, b models.BlogPost) upstream.InsertResult {
	res, _ := m.Create(ctx, b)
	return res
}

func (m *memBlogs) Create(_ context.Context, b models.BlogPost) (upstream.InsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.BlogTitle == "" {
		return upstream.InsertResult{Success: false, Message: "Missing required fields"}, nil
	}
	b.ID = models.RecordKey(strconv.Itoa(len(m.blogs) + 1))
	m.blogs = append(m.blogs, b)
	return upstream.InsertResult{Success: true, ID: b.ID.String()}, nil
}

type apiFixture struct {
	client *Client
	blogs  *memBlogs
	hub    *server.Hub
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	com := stubSource{origin: models.OriginCom, posts: []models.WpPost{
		{ID: "1", PostTitle: "Alpha", PostName: "alpha", PostDate: "2020-01-01 00:00:00"},
		{ID: "2", PostTitle: "", PostName: "untitled", PostDate: "2020-02-01 00:00:00"},
	}}
	net := stubSource{origin: models.OriginNet, posts: []models.WpPost{
		{ID: "5", PostTitle: "Beta", PostName: "beta", PostDate: "2019-01-01 00:00:00"},
	}}
	blogs := &memBlogs{}
	hub := server.NewHub(quietLogger())
	runner := migration.NewRunner(com, net, blogs, migration.NewMemoryStore(),
		migration.WithLogger(quietLogger()),
		migration.WithObserver(hub.Publish))
	jobs := migration.NewJobManager(runner, quietLogger())

	srv := httptest.NewServer(server.New([]server.WpPager{com, net}, blogs, runner,
		server.WithLogger(quietLogger()),
		server.WithHub(hub),
		server.WithJobs(jobs)).Handler())
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return &apiFixture{client: New(srv.URL), blogs: blogs, hub: hub}
}

func TestBlogRoundTrip(t *testing.T) {
	api := newAPI(t)
	ctx := t.Context()

	id, err := api.client.CreateBlog(ctx, models.BlogPost{BlogName: "hello", BlogTitle: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "1", id)

	got, err := api.client.GetBlog(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.BlogTitle)

	_, err = api.client.GetBlog(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = api.client.CreateBlog(ctx, models.BlogPost{BlogName: "no-title"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Missing required fields", apiErr.Message)
}

func TestAllBlogsPagesUntilShort(t *testing.T) {
	api := newAPI(t)
	for i := range 5 {
		_, err := api.client.CreateBlog(t.Context(), models.BlogPost{BlogTitle: strings.Repeat("t", i+1)})
		require.NoError(t, err)
	}

	all, err := api.client.AllBlogs(t.Context(), 2)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestListWpPosts(t *testing.T) {
	api := newAPI(t)

	posts, err := api.client.ListWpPosts(t.Context(), models.OriginCom, 1, 1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "2", posts[0].ID)
}

func TestMigrateAndSummary(t *testing.T) {
	api := newAPI(t)
	ctx := t.Context()

	none, err := api.client.Summary(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, none)

	summary, err := api.client.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalProcessed)
	assert.Equal(t, 2, summary.Successful)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, "Beta", summary.SuccessData[0].Title)

	latest, err := api.client.Summary(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, summary, latest)

	byID, err := api.client.Summary(ctx, summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, summary, byID)

	_, err = api.client.Summary(ctx, "unknown-run")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMigrateAsyncAndJobs(t *testing.T) {
	api := newAPI(t)
	ctx := t.Context()

	job, err := api.client.MigrateAsync(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)

	require.Eventually(t, func() bool {
		got, err := api.client.GetJob(context.Background(), job.ID)
		return err == nil && got.Status == migration.JobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	jobs, err := api.client.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, job.ID, jobs[0].ID)

	_, err = api.client.GetJob(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestWatchMigration(t *testing.T) {
	api := newAPI(t)
	ctx := t.Context()

	events := make(chan migration.Event, 16)
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- api.client.WatchMigration(ctx, nil, func(ev migration.Event) error {
			events <- ev
			return nil
		})
	}()
	require.Eventually(t, func() bool { return api.hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	_, err := api.client.Migrate(ctx)
	require.NoError(t, err)

	select {
	case err := <-watchErr:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return after run completed")
	}
	close(events)

	var last migration.Event
	n := 0
	for ev := range events {
		last = ev
		n++
	}
	assert.Equal(t, 5, n)
	assert.Equal(t, migration.EventRunCompleted, last.Type)
}

func TestWatchMigrationFollowsStartedRun(t *testing.T) {
	api := newAPI(t)
	ctx := t.Context()

	var runID string
	start := func(ctx context.Context) (string, error) {
		// A finished run whose events reach the stream first.
		if _, err := api.client.Migrate(ctx); err != nil {
			return "", err
		}
		job, err := api.client.MigrateAsync(ctx)
		if err != nil {
			return "", err
		}
		runID = job.RunID
		return job.RunID, nil
	}

	var events []migration.Event
	err := api.client.WatchMigration(ctx, start, func(ev migration.Event) error {
		events = append(events, ev)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, events, 5)
	for _, ev := range events {
		assert.Equal(t, runID, ev.RunID)
	}
	assert.Equal(t, migration.EventRunStarted, events[0].Type)
	assert.Equal(t, migration.EventRunCompleted, events[4].Type)
}

func TestWatchMigrationStartError(t *testing.T) {
	api := newAPI(t)

	boom := errors.New("boom")
	err := api.client.WatchMigration(t.Context(), func(context.Context) (string, error) {
		return "", boom
	}, func(migration.Event) error { return nil })
	require.ErrorIs(t, err, boom)
}

func TestWatchMigrationCancel(t *testing.T) {
	api := newAPI(t)
	ctx, cancel := context.WithCancel(t.Context())

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- api.client.WatchMigration(ctx, nil, func(migration.Event) error { return nil })
	}()
	require.Eventually(t, func() bool { return api.hub.Clients() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-watchErr:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop on cancel")
	}
}

func TestResolveURL(t *testing.T) {
	dir := t.TempDir()
	portFile := filepath.Join(dir, ".api-port.json")
	data, err := json.Marshal(models.PortInfo{Port: 3021, URL: "http://localhost:3021"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(portFile, data, 0o644))

	assert.Equal(t, "http://api.example", ResolveURL("http://api.example", portFile))
	assert.Equal(t, "http://localhost:3021", ResolveURL("", portFile))
	assert.Equal(t, DefaultURL, ResolveURL("", filepath.Join(dir, "missing.json")))
	assert.Equal(t, DefaultURL, ResolveURL("", ""))
}

func TestReadPortFileDerivesURL(t *testing.T) {
	portFile := filepath.Join(t.TempDir(), "port.json")
	require.NoError(t, os.WriteFile(portFile, []byte(`{"port":3031}`), 0o644))

	info, err := ReadPortFile(portFile)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3031", info.URL)
}

func TestAPIErrorSentinels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success":false,"error":"Migration already in progress"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Migrate(t.Context())
	require.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "Migration already in progress")
}
