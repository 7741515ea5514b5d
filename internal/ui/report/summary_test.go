package report

import (
	"bytes"
	"testing"

	"casemeta/internal/core/app"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSummary(t *testing.T) {
	s := &app.Summary{
		RunID:        "run-1",
		Root:         "/suite",
		Files:        2,
		Failed:       1,
		SyntaxErrors: 0,
		Classes:      3,
		TestCases:    1,
		Controls:     4,
		Steps:        2,
		Rows: []app.SummaryRow{
			{Path: "cases/login.py", Classes: 3, TestCases: 1, Steps: 2},
			{Path: "cases/star.py", Problem: "star import"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, s))
	out := buf.String()

	assert.Contains(t, out, "Scan /suite")
	assert.Contains(t, out, "cases/login.py")
	assert.Contains(t, out, "star import")
	assert.Contains(t, out, "2 files, 3 classes, 1 test cases, 4 controls, 2 steps")
	assert.Contains(t, out, "1 failed, 0 syntax errors")
	assert.Contains(t, out, "run run-1")
}

func TestWriteSummary_Clean(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, &app.Summary{RunID: "r", Root: "/empty"}))
	assert.Contains(t, buf.String(), "0 files, 0 classes")
	assert.NotContains(t, buf.String(), "failed")
}
