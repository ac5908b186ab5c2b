package stats

import (
	"context"
	"sync"
	"time"

	"go-depsolve/resolve"
)

// Collector collects real-time query statistics with 1 Hz sampling. It
// maintains a 60-second sliding window for query-rate calculation and
// notifies registered consumers on each tick. It implements
// resolve.Observer, so a query-serving process can attach it directly to a
// resolve.Facade via SetObserver.
//
// Thread-safe for concurrent access from query workers and the sampling
// goroutine.
type Collector struct {
	mu            sync.RWMutex
	snapshot      Snapshot
	rateBuckets   [60]int // ring buffer: 1-second buckets for rate calculation
	currentBucket int
	bucketStart   time.Time
	startTime     time.Time
	ticker        *time.Ticker
	consumers     []Consumer
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// NewCollector creates a Collector and starts its 1 Hz sampling loop. The
// collector runs until Close is called or ctx is cancelled.
func NewCollector(ctx context.Context) *Collector {
	collectorCtx, cancel := context.WithCancel(ctx)
	now := time.Now()

	c := &Collector{
		snapshot: Snapshot{
			QueriesByMode: make(map[string]int),
			StartTime:     now,
		},
		bucketStart: now,
		startTime:   now,
		ticker:      time.NewTicker(1 * time.Second),
		ctx:         collectorCtx,
		cancel:      cancel,
	}

	c.wg.Add(1)
	go c.run()

	return c
}

// OnQuery implements resolve.Observer: one call per completed query.
func (c *Collector) OnQuery(mode string, inputs []string, nodeCount int, notFoundCount int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.advanceBucketLocked(time.Now())

	c.snapshot.QueriesByMode[mode]++
	c.snapshot.TotalQueries++
	c.snapshot.TotalNodes += nodeCount
	c.snapshot.NotFoundCount += notFoundCount
	if nodeCount > c.snapshot.MaxNodeCount {
		c.snapshot.MaxNodeCount = nodeCount
	}
	if c.snapshot.TotalQueries > 0 {
		c.snapshot.AvgNodeCount = float64(c.snapshot.TotalNodes) / float64(c.snapshot.TotalQueries)
	}

	c.rateBuckets[c.currentBucket]++
}

// GetSnapshot returns a thread-safe copy of the current Snapshot.
func (c *Collector) GetSnapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyLocked()
}

// AddConsumer registers a stats consumer to receive updates on each tick.
func (c *Collector) AddConsumer(consumer Consumer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consumers = append(c.consumers, consumer)
}

// Close stops the sampling loop and waits for its goroutine to finish.
func (c *Collector) Close() error {
	c.cancel()
	c.ticker.Stop()
	c.wg.Wait()
	return nil
}

func (c *Collector) run() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ticker.C:
			c.tick()
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Collector) tick() {
	now := time.Now()

	c.mu.Lock()
	c.advanceBucketLocked(now)
	c.snapshot.Elapsed = now.Sub(c.startTime)
	c.snapshot.QueriesPerSec = c.calculateRateLocked()
	snapshot := c.copyLocked()
	consumers := c.consumers
	c.mu.Unlock()

	for _, consumer := range consumers {
		consumer.OnStatsUpdate(snapshot)
	}
}

// copyLocked returns a value copy of the snapshot with its own map, so
// consumers can't mutate the collector's internal state. Must be called
// with the lock held.
func (c *Collector) copyLocked() Snapshot {
	cp := c.snapshot
	cp.QueriesByMode = make(map[string]int, len(c.snapshot.QueriesByMode))
	for k, v := range c.snapshot.QueriesByMode {
		cp.QueriesByMode[k] = v
	}
	return cp
}

// advanceBucketLocked advances the ring buffer bucket index, clearing each
// bucket it passes through so a gap in queries produces a correctly-decayed
// rate rather than a stale one. Must be called with the lock held.
func (c *Collector) advanceBucketLocked(now time.Time) {
	elapsed := now.Sub(c.bucketStart)
	for elapsed >= time.Second {
		c.currentBucket = (c.currentBucket + 1) % 60
		c.rateBuckets[c.currentBucket] = 0
		c.bucketStart = c.bucketStart.Add(time.Second)
		elapsed = now.Sub(c.bucketStart)
	}
}

// calculateRateLocked calculates queries/sec from the 60-second window.
// Must be called with the lock held.
func (c *Collector) calculateRateLocked() float64 {
	sum := 0
	for _, count := range c.rateBuckets {
		sum += count
	}
	return float64(sum) / 60.0
}

var _ resolve.Observer = (*Collector)(nil)
