package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T, root string, ignoreHidden bool) *Watcher {
	t.Helper()
	w, err := New(root, 50*time.Millisecond, ignoreHidden, nil)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func waitTrigger(t *testing.T, w *Watcher, timeout time.Duration) bool {
	t.Helper()
	select {
	case <-w.Triggers():
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestWatcherTriggersAfterQuietPeriod(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root, false)

	require.NoError(t, os.WriteFile(filepath.Join(root, "new.txt"), []byte("x"), 0644))

	assert.True(t, waitTrigger(t, w, 2*time.Second), "expected a trigger after the tree went quiet")
}

func TestWatcherCoalescesBursts(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root, false)

	for i := 0; i < 5; i++ {
		name := filepath.Join(root, "burst", "file"+string(rune('a'+i))+".txt")
		require.NoError(t, os.MkdirAll(filepath.Dir(name), 0755))
		require.NoError(t, os.WriteFile(name, []byte("x"), 0644))
	}

	require.True(t, waitTrigger(t, w, 2*time.Second))

	// The burst collapses into the one trigger above.
	assert.False(t, waitTrigger(t, w, 200*time.Millisecond), "burst should coalesce into a single trigger")
}

func TestWatcherSeesNewSubdirectories(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root, false)

	sub := filepath.Join(root, "later")
	require.NoError(t, os.Mkdir(sub, 0755))
	require.True(t, waitTrigger(t, w, 2*time.Second), "directory creation itself should trigger")

	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "inside.txt"), []byte("x"), 0644))
	assert.True(t, waitTrigger(t, w, 2*time.Second), "files in new subdirectories should trigger")
}

func TestWatcherIgnoresHidden(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0755))
	w := newTestWatcher(t, root, true)

	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "index"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden.txt"), []byte("x"), 0644))

	assert.False(t, waitTrigger(t, w, 300*time.Millisecond), "hidden paths should not trigger")

	require.NoError(t, os.WriteFile(filepath.Join(root, "visible.txt"), []byte("x"), 0644))
	assert.True(t, waitTrigger(t, w, 2*time.Second), "visible paths should still trigger")
}

func TestWatcherMissingRoot(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "nope"), time.Second, false, nil)
	// A nonexistent root simply has nothing to watch; creation succeeds
	// and the first trigger never fires.
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	w := newTestWatcher(t, t.TempDir(), false)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}

func TestWatcherRoot(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root, false)
	assert.Equal(t, root, w.Root())
}
