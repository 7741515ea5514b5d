package report

import (
	"fmt"
	"io"
	"strconv"

	"casemeta/internal/core/app"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)

	problemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

// WriteSummary renders a scan summary: one row per file, then totals.
func WriteSummary(w io.Writer, s *app.Summary) error {
	rows := make([][]string, 0, len(s.Rows))
	for _, r := range s.Rows {
		problem := ""
		if r.Problem != "" {
			problem = problemStyle.Render(r.Problem)
		}
		rows = append(rows, []string{
			r.Path,
			strconv.Itoa(r.Classes),
			strconv.Itoa(r.TestCases),
			strconv.Itoa(r.Steps),
			problem,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("FILE", "CLASSES", "TEST CASES", "STEPS", "PROBLEM").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	totals := fmt.Sprintf("%d files, %d classes, %d test cases, %d controls, %d steps",
		s.Files, s.Classes, s.TestCases, s.Controls, s.Steps)
	if s.Failed == 0 && s.SyntaxErrors == 0 {
		totals = successStyle.Render(totals)
	} else {
		totals += problemStyle.Render(fmt.Sprintf(" (%d failed, %d syntax errors)", s.Failed, s.SyntaxErrors))
	}

	_, err := fmt.Fprintf(w, "%s\n%s\n%s\n%s\n",
		titleStyle.Render("Scan "+s.Root),
		t.Render(),
		totals,
		statusStyle.Render("run "+s.RunID),
	)
	return err
}
