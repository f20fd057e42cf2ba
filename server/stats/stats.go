// Package stats keeps a periodically refreshed summary of the task journal.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hrygo/duebot/store"
)

// DefaultInterval is how often the journal summary is refreshed.
const DefaultInterval = time.Minute

// Source is the part of *store.Store the collector reads.
type Source interface {
	Stats(ctx context.Context) (*store.JournalStats, error)
	ListTaskRecords(ctx context.Context, find *store.FindTaskRecord) ([]*store.TaskRecord, error)
}

// Stats represents journal statistics.
type Stats struct {
	TotalCreated int64      `json:"total_created"`
	TotalFailed  int64      `json:"total_failed"`
	LastTaskTime *time.Time `json:"last_task_time,omitempty"`
	LastUpdated  time.Time  `json:"last_updated"`
}

// Collector collects and caches journal statistics.
type Collector struct {
	source   Source
	interval time.Duration
	stats    *Stats
	mu       sync.Mutex
	tickStop chan struct{}
	stopOnce sync.Once
}

// NewCollector creates a new statistics collector. interval <= 0 uses DefaultInterval.
func NewCollector(source Source, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Collector{
		source:   source,
		interval: interval,
		stats:    &Stats{},
		tickStop: make(chan struct{}),
	}
}

// Start collects once, then refreshes every interval until ctx is done or
// Stop is called.
func (c *Collector) Start(ctx context.Context) {
	c.collect(ctx)

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.collect(ctx)
			case <-ctx.Done():
				return
			case <-c.tickStop:
				return
			}
		}
	}()
}

// Stop stops the statistics collector.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.tickStop) })
}

// GetStats returns a copy of current statistics.
func (c *Collector) GetStats() *Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := *c.stats
	if c.stats.LastTaskTime != nil {
		last := *c.stats.LastTaskTime
		cp.LastTaskTime = &last
	}
	return &cp
}

// collect gathers current statistics from the journal. On error the previous
// values are kept.
func (c *Collector) collect(ctx context.Context) {
	totals, err := c.source.Stats(ctx)
	if err != nil {
		slog.Warn("failed to collect journal stats", slog.String("error", err.Error()))
		return
	}

	created := store.TaskStatusCreated
	latest, err := c.source.ListTaskRecords(ctx, &store.FindTaskRecord{Status: &created, Limit: 1})
	if err != nil {
		slog.Warn("failed to read latest task record", slog.String("error", err.Error()))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.TotalCreated = totals.Created
	c.stats.TotalFailed = totals.Failed
	if len(latest) > 0 {
		last := time.Unix(latest[0].CreatedTs, 0)
		c.stats.LastTaskTime = &last
	}
	c.stats.LastUpdated = time.Now()
}

// GetSummary returns a one-line human-readable summary.
func (s *Stats) GetSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tasks created: %d, failed: %d", s.TotalCreated, s.TotalFailed)
	if s.LastTaskTime != nil {
		fmt.Fprintf(&b, ", last: %s", s.LastTaskTime.UTC().Format(time.RFC3339))
	}
	return b.String()
}
