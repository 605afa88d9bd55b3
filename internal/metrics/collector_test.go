package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecordsTimings(t *testing.T) {
	c := NewCollector()

	c.record(OpStoreInsert, 10*time.Millisecond, false)
	c.record(OpStoreInsert, 30*time.Millisecond, false)
	c.record(OpStoreInsert, 20*time.Millisecond, true)

	snap := c.Snapshot()
	require.NotNil(t, snap.StoreInsert)
	assert.Equal(t, int64(3), snap.StoreInsert.Count)
	assert.Equal(t, int64(1), snap.StoreInsert.Failures)
	assert.Equal(t, int64(60), snap.StoreInsert.TotalTimeMs)
	assert.Equal(t, int64(10), snap.StoreInsert.MinTimeMs)
	assert.Equal(t, int64(30), snap.StoreInsert.MaxTimeMs)
	assert.InDelta(t, 20.0, snap.StoreInsert.AvgTimeMs, 0.001)

	assert.Nil(t, snap.UpstreamFetch, "untouched operations are omitted")
}

func TestCollectorObserve(t *testing.T) {
	c := NewCollector()

	c.Observe(OpUpstreamFetch, time.Now(), nil)
	c.Observe(OpUpstreamFetch, time.Now(), errors.New("boom"))

	snap := c.Snapshot()
	require.NotNil(t, snap.UpstreamFetch)
	assert.Equal(t, int64(2), snap.UpstreamFetch.Count)
	assert.Equal(t, int64(1), snap.UpstreamFetch.Failures)
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.record(OpMigrationRun, time.Second, false)
	assert.Equal(t, Snapshot{}, c.Snapshot())
}

func TestCollectorConcurrentUse(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.record(OpStoreRead, time.Millisecond, false)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), c.Snapshot().StoreRead.Count)
}
