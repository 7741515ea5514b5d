package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"casemeta/internal/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeSource(t, dir, "cases/login.py", loginSource)
	writeSource(t, dir, "cases/broken.py", "def broken(:\n")
	writeSource(t, dir, "cases/star.py", "from pages import *\n")
	writeSource(t, dir, "pages/home.py", `"""Home page."""`+"\n")
	writeSource(t, dir, "__pycache__/stale.py", "x = 1\n")
	writeSource(t, dir, "README.md", "# suite\n")
	return dir
}

func TestDiscover(t *testing.T) {
	a := newTestApp(t, false)
	dir := scanFixture(t)

	files, err := a.Discover(dir)
	require.NoError(t, err)

	rel := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.Equal(t, []string{"cases/broken.py", "cases/login.py", "cases/star.py", "pages/home.py"}, rel)
}

func TestDiscover_BadRoot(t *testing.T) {
	a := newTestApp(t, false)

	_, err := a.Discover(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))

	file := writeSource(t, t.TempDir(), "one.py", "x = 1\n")
	_, err = a.Discover(file)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestScan(t *testing.T) {
	a := newTestApp(t, true)
	a.Config.Scan.Workers = 2
	dir := scanFixture(t)

	report, err := a.Scan(context.Background(), dir)
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Files, 4)

	docs := report.Documents()
	assert.Len(t, docs, 3)
	assert.Contains(t, string(docs["cases/login.py"]), `"name":"LoginTest"`)
	assert.Contains(t, string(docs["cases/broken.py"]), `"errors":[{"lineno":`)

	failures := report.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "cases/star.py", failures[0].Path)
	assert.True(t, errors.IsCode(failures[0].Err, errors.CodeUnsupportedConstruct))
}

func TestScan_PrunesDeletedFiles(t *testing.T) {
	a := newTestApp(t, true)
	dir := scanFixture(t)

	_, err := a.Scan(context.Background(), dir)
	require.NoError(t, err)
	before, err := a.store.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, before)

	require.NoError(t, os.Remove(filepath.Join(dir, "pages", "home.py")))
	_, err = a.Scan(context.Background(), dir)
	require.NoError(t, err)
	after, err := a.store.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, after)
}

func TestScan_Cancelled(t *testing.T) {
	a := newTestApp(t, false)
	dir := scanFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Scan(ctx, dir)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	a := newTestApp(t, false)
	report, err := a.Scan(context.Background(), scanFixture(t))
	require.NoError(t, err)

	s, err := Summarize(report)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Files)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.SyntaxErrors)
	assert.Equal(t, 2, s.Classes)
	assert.Equal(t, 1, s.TestCases)
	assert.Equal(t, 1, s.Controls)
	assert.Equal(t, 2, s.Steps)
	assert.Len(t, s.Rows, 4)
}
