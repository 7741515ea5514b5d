package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsNilCallback(t *testing.T) {
	w, err := New(100*time.Millisecond, nil, nil, nil)
	assert.ErrorIs(t, err, os.ErrInvalid)
	assert.Nil(t, w)
}

func TestNew_RejectsBadGlob(t *testing.T) {
	_, err := New(100*time.Millisecond, []string{"[unterminated"}, nil, func([]Change) {})
	assert.Error(t, err)
}

func waitForChanges(t *testing.T, ch <-chan []Change, timeout time.Duration) []Change {
	t.Helper()
	select {
	case changes := <-ch:
		return changes
	case <-time.After(timeout):
		t.Fatal("timed out waiting for watcher callback")
		return nil
	}
}

func findChange(changes []Change, path string) (Change, bool) {
	for _, c := range changes {
		if c.Path == path {
			return c, true
		}
	}
	return Change{}, false
}

func TestWatcher_ReportsPythonChanges(t *testing.T) {
	dir := t.TempDir()

	changed := make(chan []Change, 4)
	w, err := New(50*time.Millisecond, []string{"__pycache__"}, []string{"conftest.py"}, func(c []Change) {
		changed <- c
	})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch([]string{dir}))

	source := filepath.Join(dir, "test_login.py")
	require.NoError(t, os.WriteFile(source, []byte("class A:\n    pass\n"), 0o644))

	changes := waitForChanges(t, changed, 2*time.Second)
	c, ok := findChange(changes, source)
	require.True(t, ok, "expected %s in %v", source, changes)
	assert.False(t, c.Removed)

	require.NoError(t, os.Remove(source))
	deadline := time.After(2 * time.Second)
	for {
		select {
		case changes := <-changed:
			if c, ok := findChange(changes, source); ok && c.Removed {
				return
			}
		case <-deadline:
			t.Fatalf("no removal reported for %s", source)
		}
	}
}

func TestWatcher_IgnoresExcludedAndForeignFiles(t *testing.T) {
	dir := t.TempDir()

	changed := make(chan []Change, 4)
	w, err := New(50*time.Millisecond, nil, []string{"conftest.py"}, func(c []Change) {
		changed <- c
	})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch([]string{dir}))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "conftest.py"), []byte("x = 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi\n"), 0o644))

	select {
	case changes := <-changed:
		t.Fatalf("unexpected callback: %v", changes)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_PicksUpNewDirectories(t *testing.T) {
	dir := t.TempDir()

	changed := make(chan []Change, 4)
	w, err := New(50*time.Millisecond, nil, nil, func(c []Change) {
		changed <- c
	})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch([]string{dir}))

	sub := filepath.Join(dir, "pages")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	time.Sleep(100 * time.Millisecond)

	nested := filepath.Join(sub, "home.py")
	require.NoError(t, os.WriteFile(nested, []byte("x = 1\n"), 0o644))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case changes := <-changed:
			if _, ok := findChange(changes, nested); ok {
				return
			}
		case <-deadline:
			t.Fatalf("no change reported for %s", nested)
		}
	}
}

func TestWatcher_SkipsExcludedDirectories(t *testing.T) {
	w, err := New(time.Millisecond, []string{"__pycache__", ".*"}, nil, func([]Change) {})
	require.NoError(t, err)
	defer w.Close()

	assert.True(t, w.excludedDir(filepath.Join("a", "__pycache__")))
	assert.True(t, w.excludedDir(filepath.Join("a", ".git")))
	assert.False(t, w.excludedDir(filepath.Join("a", "cases")))
}
