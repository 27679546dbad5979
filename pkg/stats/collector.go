// Package stats tracks runtime usage counters: tool invocations, skill
// content loads, and a bounded history of recent searches. Counters live
// in memory behind a single mutex; the search history can additionally
// be persisted to SQLite via SearchLog.
package stats

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/skillstack/skillmcp/pkg/logger"
	"github.com/skillstack/skillmcp/pkg/types/skills"
)

// SearchHistorySize bounds the in-memory ring of recent searches.
const SearchHistorySize = 100

// Collector accumulates usage counters for the lifetime of the process.
type Collector struct {
	mu         sync.RWMutex
	toolCalls  map[string]uint64
	skillLoads map[string]uint64
	searches   []skills.SearchEntry
	startTime  time.Time

	log *SearchLog
}

// Option configures a Collector.
type Option func(*Collector)

// WithSearchLog attaches a persistent search log. Recorded searches are
// written through; persistence failures are logged and never surface to
// the caller.
func WithSearchLog(log *SearchLog) Option {
	return func(c *Collector) {
		c.log = log
	}
}

// NewCollector creates a collector with the start time set to now.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		toolCalls:  make(map[string]uint64),
		skillLoads: make(map[string]uint64),
		searches:   make([]skills.SearchEntry, 0, SearchHistorySize),
		startTime:  time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RecordToolCall increments the counter for a named tool.
func (c *Collector) RecordToolCall(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toolCalls[name]++
}

// RecordSkillLoad increments the load counter for a skill.
func (c *Collector) RecordSkillLoad(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skillLoads[name]++
}

// RecordSearch appends a search to the bounded history, evicting the
// oldest entry once the ring is full.
func (c *Collector) RecordSearch(ctx context.Context, query string, resultCount int) {
	entry := skills.SearchEntry{
		ID:          uuid.NewString(),
		Query:       query,
		Timestamp:   time.Now(),
		ResultCount: resultCount,
	}

	c.mu.Lock()
	if len(c.searches) >= SearchHistorySize {
		c.searches = c.searches[1:]
	}
	c.searches = append(c.searches, entry)
	c.mu.Unlock()

	if c.log != nil {
		if err := c.log.Insert(ctx, entry); err != nil {
			logger.G(ctx).WithError(err).Warn("failed to persist search entry")
		}
	}
}

// Snapshot returns a copy of the current counters with formatted uptime
// and the current resident set size.
func (c *Collector) Snapshot(ctx context.Context) skills.UsageStats {
	c.mu.RLock()
	stats := skills.UsageStats{
		ToolCalls:  make(map[string]uint64, len(c.toolCalls)),
		SkillLoads: make(map[string]uint64, len(c.skillLoads)),
		Searches:   make([]skills.SearchEntry, len(c.searches)),
		StartTime:  c.startTime,
	}
	for name, count := range c.toolCalls {
		stats.ToolCalls[name] = count
	}
	for name, count := range c.skillLoads {
		stats.SkillLoads[name] = count
	}
	copy(stats.Searches, c.searches)
	c.mu.RUnlock()

	stats.Uptime = skills.FormatUptime(time.Since(stats.StartTime))
	stats.MemoryRSS = residentSetSize(ctx)
	return stats
}

func residentSetSize(ctx context.Context) uint64 {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logger.G(ctx).WithError(err).Debug("failed to inspect process")
		return 0
	}
	mem, err := proc.MemoryInfo()
	if err != nil {
		logger.G(ctx).WithError(err).Debug("failed to read memory info")
		return 0
	}
	return mem.RSS
}
