package app

// Summary aggregates a scan for the report renderer.
type Summary struct {
	RunID        string
	Root         string
	Files        int
	Failed       int
	SyntaxErrors int
	Classes      int
	TestCases    int
	Controls     int
	Steps        int
	Rows         []SummaryRow
}

// SummaryRow is one file line of the report.
type SummaryRow struct {
	Path      string
	Classes   int
	TestCases int
	Steps     int
	Problem   string
}

// Summarize decodes every document of report into counts.
func Summarize(report *ScanReport) (*Summary, error) {
	s := &Summary{RunID: report.RunID, Root: report.Root, Files: len(report.Files)}
	for _, f := range report.Files {
		row := SummaryRow{Path: f.Path}
		if f.Err != nil {
			s.Failed++
			row.Problem = f.Err.Error()
			s.Rows = append(s.Rows, row)
			continue
		}
		o, err := DecodeOutline(f.Document)
		if err != nil {
			return nil, err
		}
		if len(o.Errors) > 0 {
			s.SyntaxErrors++
			row.Problem = syntaxFailure(f.Path, o.Errors[0]).Error()
		}
		for _, c := range o.Classes {
			row.Classes++
			s.Controls += len(c.Controls)
			if c.IsTestCase {
				row.TestCases++
			}
			for _, fn := range c.Functions {
				row.Steps += len(fn.Steps)
			}
		}
		s.Classes += row.Classes
		s.TestCases += row.TestCases
		s.Steps += row.Steps
		s.Rows = append(s.Rows, row)
	}
	return s, nil
}
