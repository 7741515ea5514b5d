package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, version int) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "cache.db"), version)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, 1)
	mtime := time.Unix(1700000000, 123)

	_, ok, err := store.Get(ctx, "a.py", mtime)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "a.py", mtime, []byte(`{"classes":[]}`)))
	payload, ok, err := store.Get(ctx, "a.py", mtime)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"classes":[]}`, string(payload))

	// a changed file is a miss
	_, ok, err = store.Get(ctx, "a.py", mtime.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "a.py", mtime.Add(time.Second), []byte(`{}`)))
	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_FormatVersionMismatch(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")
	mtime := time.Unix(10, 0)

	old, err := Open(path, 1)
	require.NoError(t, err)
	require.NoError(t, old.Put(ctx, "a.py", mtime, []byte(`{}`)))
	require.NoError(t, old.Close())

	current, err := Open(path, 2)
	require.NoError(t, err)
	defer current.Close()

	_, ok, err := current.Get(ctx, "a.py", mtime)
	require.NoError(t, err)
	assert.False(t, ok)

	removed, err := current.Prune(ctx, func(string) bool { return true })
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestStore_DeleteAndPrune(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, 1)
	mtime := time.Unix(10, 0)

	for _, p := range []string{"a.py", "b.py", "c.py"} {
		require.NoError(t, store.Put(ctx, p, mtime, []byte(`{}`)))
	}
	require.NoError(t, store.Delete(ctx, "a.py"))

	removed, err := store.Prune(ctx, func(p string) bool { return p == "b.py" })
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpen_Validation(t *testing.T) {
	_, err := Open("  ", 1)
	assert.Error(t, err)

	_, err = Open(t.TempDir(), 1)
	assert.Error(t, err)
}
