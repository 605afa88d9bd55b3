//go:build integration

package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/poesyliang/poesy-blog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDB *Client
var testContainer testcontainers.Container

// TestMain starts one SurrealDB container for the package.
func TestMain(m *testing.M) {
	// Ryuk fails to start in some CI sandboxes.
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	var err error
	testContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	host, err := testContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := testContainer.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	testDB, err = NewClient(ctx, Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := testDB.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	code := m.Run()

	_ = testDB.Close(ctx)
	_ = testContainer.Terminate(ctx)

	os.Exit(code)
}

func sampleSummary(runID string, ok, failed int) *models.MigrationSummary {
	s := &models.MigrationSummary{
		RunID:          runID,
		Timestamp:      "2024-03-04T05:06:07.008Z",
		TotalProcessed: ok + failed,
		Successful:     ok,
		Failed:         failed,
		SuccessData:    []models.MigratedEntry{},
		FailedData:     []models.FailedEntry{},
	}
	for i := range ok {
		s.SuccessData = append(s.SuccessData, models.MigratedEntry{
			ID:         fmt.Sprint(i + 1),
			Title:      fmt.Sprintf("post %d", i),
			Source:     models.OriginCom,
			OriginalID: fmt.Sprint(100 + i),
			OriginalData: models.WpPost{
				ID:        fmt.Sprint(100 + i),
				PostTitle: fmt.Sprintf("post %d", i),
			},
			TransformedData: models.BlogPost{BlogTitle: fmt.Sprintf("post %d", i), BlogVisibility: models.VisibilityPrivate},
		})
	}
	for i := range failed {
		s.FailedData = append(s.FailedData, models.FailedEntry{
			Title:        fmt.Sprintf("bad %d", i),
			Source:       models.OriginNet,
			Error:        "Missing required fields",
			ErrorDetails: `Failed to insert blog "bad": Missing required fields`,
		})
	}
	return s
}

func TestSummaryStoreRoundTrip(t *testing.T) {
	ctx := t.Context()
	require.NoError(t, testDB.WipeData(ctx))
	store := NewSummaryStore(testDB)

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest, "empty table has no latest run")

	saved := sampleSummary("run-a", 2, 1)
	require.NoError(t, store.Save(ctx, saved))

	got, err := store.Get(ctx, "run-a")
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	latest, err = store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, latest)
}

func TestSummaryStoreLatestWins(t *testing.T) {
	ctx := t.Context()
	require.NoError(t, testDB.WipeData(ctx))
	store := NewSummaryStore(testDB)

	require.NoError(t, store.Save(ctx, sampleSummary("first", 1, 0)))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, store.Save(ctx, sampleSummary("second", 0, 3)))

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "second", latest.RunID)
	assert.Equal(t, 3, latest.Failed)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSummaryStoreMissingRun(t *testing.T) {
	ctx := t.Context()
	store := NewSummaryStore(testDB)

	got, err := store.Get(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = store.Run(ctx, "does-not-exist")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSummaryStoreUpsertSameRun(t *testing.T) {
	ctx := t.Context()
	require.NoError(t, testDB.WipeData(ctx))
	store := NewSummaryStore(testDB)

	require.NoError(t, store.Save(ctx, sampleSummary("same", 1, 0)))
	require.NoError(t, store.Save(ctx, sampleSummary("same", 2, 0)))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := store.Get(ctx, "same")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Successful)
}
