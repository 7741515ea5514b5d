package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"casemeta/internal/core/app"
	"casemeta/internal/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const caseSource = `"""Smoke suite."""
from pages.base import TestCase


class SmokeTest(TestCase):
    """Opens the home page."""
    owner = 'qa'
    timeout = 10
    priority = 'Normal'
    status = 'Ready'

    def run_test(self):
        self.start_step('open home')
`

type harness struct {
	dir        string
	configPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "casemeta.toml")
	content := fmt.Sprintf("[cache]\npath = '%s'\n", filepath.Join(dir, "cache", "results.db"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	return &harness{dir: dir, configPath: cfgPath}
}

func (h *harness) write(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func (h *harness) run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	full := append([]string{"--config", h.configPath}, args...)
	code := Run(context.Background(), full, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_ExtractsFile(t *testing.T) {
	h := newHarness(t)
	path := h.write(t, "smoke.py", caseSource)

	code, stdout, stderr := h.run(path)
	require.Equal(t, 0, code, stderr)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "Smoke suite.", doc["docstring"])
	classes := doc["classes"].([]any)
	require.Len(t, classes, 1)
	assert.Equal(t, true, classes[0].(map[string]any)["is_testcase"])
	assert.True(t, strings.HasSuffix(stdout, "}\n"))
}

func TestRun_FileNamedLikeSubcommand(t *testing.T) {
	h := newHarness(t)
	h.write(t, "scan", caseSource)
	t.Chdir(h.dir)

	code, stdout, stderr := h.run("--", "scan")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, `"SmokeTest"`)

	var stdoutHelp bytes.Buffer
	require.Equal(t, 0, Run(context.Background(), []string{"--help"}, &stdoutHelp, io.Discard))
	assert.Contains(t, stdoutHelp.String(), "casemeta -- <file>")
}

func TestRun_WritesOutputFile(t *testing.T) {
	h := newHarness(t)
	path := h.write(t, "smoke.py", caseSource)
	out := filepath.Join(h.dir, "out", "smoke.json")

	code, stdout, _ := h.run(path, "--output", out)
	require.Equal(t, 0, code)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestRun_UsageErrors(t *testing.T) {
	h := newHarness(t)

	cases := []struct {
		name string
		args []string
	}{
		{name: "MissingPath", args: nil},
		{name: "TooManyPaths", args: []string{"a.py", "b.py"}},
		{name: "UnknownFlag", args: []string{"--bogus"}},
		{name: "ScanWithoutDir", args: []string{"scan"}},
		{name: "QueryConflictingFlags", args: []string{"query", "x.py", "--classes", "--functions"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, stdout, stderr := h.run(tc.args...)
			assert.Equal(t, 2, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "Usage:")
		})
	}
}

func TestRun_MissingFile(t *testing.T) {
	h := newHarness(t)
	code, stdout, stderr := h.run(filepath.Join(h.dir, "gone.py"))

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "not exist")
}

func TestRun_UnsupportedConstruct(t *testing.T) {
	h := newHarness(t)
	path := h.write(t, "star.py", "from pages import *\n")

	code, stdout, stderr := h.run(path)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "UNSUPPORTED_CONSTRUCT")
}

func TestRun_SyntaxErrorIsADocument(t *testing.T) {
	h := newHarness(t)
	path := h.write(t, "broken.py", "class Broken(:\n    pass\n")

	code, stdout, _ := h.run(path)
	require.Equal(t, 0, code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.NotContains(t, doc, "docstring")
	assert.Len(t, doc["errors"], 1)
}

func TestRun_Query(t *testing.T) {
	h := newHarness(t)
	path := h.write(t, "smoke.py", caseSource)

	code, stdout, _ := h.run("query", path)
	require.Equal(t, 0, code)
	assert.Equal(t, "Smoke suite.\n", stdout)

	code, stdout, _ = h.run("query", path, "SmokeTest")
	require.Equal(t, 0, code)
	assert.Equal(t, "Opens the home page.\n", stdout)

	code, stdout, _ = h.run("query", path, "--classes")
	require.Equal(t, 0, code)
	assert.Equal(t, "SmokeTest\n", stdout)

	code, stdout, _ = h.run("query", path, "SmokeTest", "--functions")
	require.Equal(t, 0, code)
	assert.Equal(t, "run_test\n", stdout)

	code, _, stderr := h.run("query", path, "Nope")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "NOT_FOUND")
}

func TestRun_Scan(t *testing.T) {
	h := newHarness(t)
	h.write(t, "suite/cases/smoke.py", caseSource)
	h.write(t, "suite/pages/home.py", `"""Home."""`+"\n")

	code, stdout, stderr := h.run("scan", filepath.Join(h.dir, "suite"))
	require.Equal(t, 0, code, stderr)

	var docs map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(stdout), &docs))
	assert.Contains(t, docs, "cases/smoke.py")
	assert.Contains(t, docs, "pages/home.py")

	code, stdout, _ = h.run("scan", "--summary", filepath.Join(h.dir, "suite"))
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "2 files, 1 classes, 1 test cases, 0 controls, 1 steps")
}

func TestRun_ScanReportsFailures(t *testing.T) {
	h := newHarness(t)
	h.write(t, "suite/ok.py", caseSource)
	h.write(t, "suite/star.py", "from pages import *\n")

	code, stdout, stderr := h.run("scan", filepath.Join(h.dir, "suite"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, `"ok.py"`)
	assert.Contains(t, stderr, "failed: star.py")
	assert.Contains(t, stderr, "1 of 2 files failed")
}

func TestRun_Version(t *testing.T) {
	h := newHarness(t)
	code, stdout, _ := h.run("version")
	assert.Equal(t, 0, code)
	assert.Equal(t, fmt.Sprintf("casemeta v%s (document format %d)\n", versionString, documentFormat), stdout)
}

func TestObservabilityServer(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Cache.Path = filepath.Join(t.TempDir(), "cache.db")
	a, err := app.New(cfg)
	require.NoError(t, err)
	defer a.Close(context.Background())

	server := NewObservabilityServer("127.0.0.1:0", app.NewHealthService(a))
	require.NoError(t, server.Start(context.Background()))
	defer server.Stop(context.Background())

	resp, err := http.Get("http://" + server.Addr() + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status app.HealthStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "up", status.Status)

	metrics, err := http.Get("http://" + server.Addr() + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	body, err := io.ReadAll(metrics.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "casemeta_cache_misses_total")
}
