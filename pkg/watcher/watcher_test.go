package watcher

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillstack/skillmcp/pkg/index"
	"github.com/skillstack/skillmcp/pkg/types/skills"
)

func writeSkill(t *testing.T, root string, meta skills.SkillMeta, content string) {
	t.Helper()
	dir := filepath.Join(root, meta.Name)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	data, err := json.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, index.MetaFileName), data, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, index.SkillFileName), []byte(content), 0o644))
}

func hasSkill(store *index.Store, name string) bool {
	for _, meta := range store.SkillIndex().Skills {
		if meta.Name == name {
			return true
		}
	}
	return false
}

func startWatcher(t *testing.T, root string) (*index.Store, *Watcher) {
	t.Helper()
	store := index.NewStore(root)
	require.NoError(t, store.Rebuild(context.Background()))

	w, err := New(store, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Watch(root))

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	t.Cleanup(func() {
		cancel()
		w.Close()
	})
	return store, w
}

func TestWatcherIndexesNewSkill(t *testing.T) {
	root := t.TempDir()
	store, _ := startWatcher(t, root)

	writeSkill(t, root, skills.SkillMeta{Name: "fresh", Description: "d"}, "# Fresh")

	require.Eventually(t, func() bool {
		return hasSkill(store, "fresh")
	}, 5*time.Second, 25*time.Millisecond, "new skill never appeared in the index")
}

func TestWatcherPicksUpContentChanges(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, skills.SkillMeta{Name: "living", Description: "d"}, "initial body")
	store, _ := startWatcher(t, root)

	require.NoError(t, os.WriteFile(
		filepath.Join(root, "living", index.SkillFileName),
		[]byte("rewritten body with fsnotify keyword"), 0o644))

	require.Eventually(t, func() bool {
		entry, ok := store.ContentIndex().Get("living")
		return ok && entry.CountMatches("fsnotify") > 0
	}, 5*time.Second, 25*time.Millisecond, "content change never reached the index")
}

func TestWatcherRemovesDeletedSkill(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, skills.SkillMeta{Name: "doomed", Description: "d"}, "# Doomed")
	store, _ := startWatcher(t, root)
	require.True(t, hasSkill(store, "doomed"))

	require.NoError(t, os.RemoveAll(filepath.Join(root, "doomed")))

	require.Eventually(t, func() bool {
		return !hasSkill(store, "doomed")
	}, 5*time.Second, 25*time.Millisecond, "deleted skill never left the index")
}

func TestWatcherRebuildsOnUnattributedChange(t *testing.T) {
	root := t.TempDir()
	store, _ := startWatcher(t, root)

	// A skill written while events were lost: simulate by dropping the
	// directory in place, then touching a root-level file so the change
	// cannot be attributed to any skill and forces a full rebuild.
	writeSkill(t, root, skills.SkillMeta{Name: "recovered", Description: "d"}, "# R")
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("stray"), 0o644))

	require.Eventually(t, func() bool {
		return hasSkill(store, "recovered")
	}, 5*time.Second, 25*time.Millisecond, "rebuild never indexed the skill")
}

func TestDebounceDrainsInflightSendsOnInputClose(t *testing.T) {
	store := index.NewStore(t.TempDir())
	w, err := New(store, WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	input := make(chan change)
	output := make(chan change)
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.debounceChanges(context.Background(), input, output)
	}()

	input <- change{skill: "alpha"}
	// Let the timer fire and block on the unconsumed output channel
	// before the input closes underneath it.
	time.Sleep(50 * time.Millisecond)
	close(input)

	c, ok := <-output
	require.True(t, ok)
	assert.Equal(t, "alpha", c.skill)

	_, ok = <-output
	assert.False(t, ok, "output should close once inflight sends drain")

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("debouncer never returned after input close")
	}
}

func TestDebounceCoalescesBursts(t *testing.T) {
	store := index.NewStore(t.TempDir())
	w, err := New(store, WithDebounce(30*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	input := make(chan change)
	output := make(chan change, 16)
	go w.debounceChanges(context.Background(), input, output)

	for i := 0; i < 5; i++ {
		input <- change{skill: "burst"}
	}
	// Let the coalesced timer fire before shutdown cancels it.
	time.Sleep(150 * time.Millisecond)
	close(input)

	var got []change
	for c := range output {
		got = append(got, c)
	}
	require.Len(t, got, 1)
	assert.Equal(t, "burst", got[0].skill)
}

func TestWatcherCloseIsClean(t *testing.T) {
	root := t.TempDir()
	store := index.NewStore(root)
	require.NoError(t, store.Rebuild(context.Background()))

	w, err := New(store, WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Watch(root))

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	cancel()
	assert.NoError(t, w.Close())
}

func TestWatchMissingPath(t *testing.T) {
	store := index.NewStore(t.TempDir())
	w, err := New(store)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	err = w.Watch(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)

	var werr *Error
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, KindWatch, werr.Kind)
}
