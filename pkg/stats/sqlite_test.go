package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillstack/skillmcp/pkg/types/skills"
)

func newTestSearchLog(t *testing.T) *SearchLog {
	t.Helper()
	log, err := OpenSearchLog(context.Background(), filepath.Join(t.TempDir(), "stats", "search.db"))
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })
	return log
}

func TestSearchLogInsertAndRecent(t *testing.T) {
	ctx := context.Background()
	log := newTestSearchLog(t)

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		entry := skills.SearchEntry{
			ID:          uuid.NewString(),
			Query:       "query",
			Timestamp:   base.Add(time.Duration(i) * time.Second),
			ResultCount: i,
		}
		require.NoError(t, log.Insert(ctx, entry))
	}

	entries, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first.
	assert.Equal(t, 2, entries[0].ResultCount)
	assert.Equal(t, 0, entries[2].ResultCount)
	assert.True(t, entries[0].Timestamp.Equal(base.Add(2*time.Second)))
}

func TestSearchLogTimestampRoundTrip(t *testing.T) {
	ctx := context.Background()
	log := newTestSearchLog(t)

	// Sub-second precision must survive the DATETIME column.
	stamp := time.Date(2026, 8, 26, 18, 35, 53, 664274000, time.UTC)
	require.NoError(t, log.Insert(ctx, skills.SearchEntry{
		ID:        uuid.NewString(),
		Query:     "precise",
		Timestamp: stamp,
	}))

	entries, err := log.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Timestamp.Equal(stamp),
		"got %s, want %s", entries[0].Timestamp, stamp)
}

func TestSearchLogRecentLimit(t *testing.T) {
	ctx := context.Background()
	log := newTestSearchLog(t)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		require.NoError(t, log.Insert(ctx, skills.SearchEntry{
			ID:        uuid.NewString(),
			Query:     "q",
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}

	entries, err := log.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSearchLogPersistsThroughCollector(t *testing.T) {
	ctx := context.Background()
	log := newTestSearchLog(t)
	c := NewCollector(WithSearchLog(log))

	c.RecordSearch(ctx, "terraform modules", 4)

	entries, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "terraform modules", entries[0].Query)
	assert.Equal(t, 4, entries[0].ResultCount)
}
