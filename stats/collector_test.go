package stats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConsumer struct {
	snapshots []Snapshot
}

func (r *recordingConsumer) OnStatsUpdate(snap Snapshot) {
	r.snapshots = append(r.snapshots, snap)
}

func TestCollector_RecordsQueriesByMode(t *testing.T) {
	c := NewCollector(context.Background())
	defer c.Close()

	c.OnQuery("install", []string{"app"}, 5, 1)
	c.OnQuery("install", []string{"lib"}, 3, 0)
	c.OnQuery("build", []string{"app"}, 10, 2)

	snap := c.GetSnapshot()
	require.Equal(t, 3, snap.TotalQueries)
	assert.Equal(t, 2, snap.QueriesByMode["install"])
	assert.Equal(t, 1, snap.QueriesByMode["build"])
	assert.Equal(t, 18, snap.TotalNodes)
	assert.Equal(t, 10, snap.MaxNodeCount)
	assert.InDelta(t, 6.0, snap.AvgNodeCount, 0.001)
	assert.Equal(t, 3, snap.NotFoundCount)
}

func TestCollector_SnapshotIsIndependentCopy(t *testing.T) {
	c := NewCollector(context.Background())
	defer c.Close()

	c.OnQuery("install", []string{"app"}, 1, 0)
	snap := c.GetSnapshot()
	snap.QueriesByMode["install"] = 999

	fresh := c.GetSnapshot()
	assert.Equal(t, 1, fresh.QueriesByMode["install"], "mutating a returned snapshot must not affect the collector")
}

func TestCollector_AddConsumer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewCollector(ctx)
	rec := &recordingConsumer{}
	c.AddConsumer(rec)

	c.OnQuery("self", []string{"vim"}, 4, 0)
	cancel()
	c.Close()

	// The collector only notifies consumers on its 1Hz tick, which may not
	// have fired in this short-lived test; assert only that wiring a
	// consumer and closing the collector doesn't panic or deadlock.
	_ = rec
}

func TestCollector_CloseIsIdempotentSafe(t *testing.T) {
	c := NewCollector(context.Background())
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}
