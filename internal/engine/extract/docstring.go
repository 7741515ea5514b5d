package extract

import (
	"strings"
	"unicode"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// docstring returns the first non-blank line of the docstring of a module,
// class or function body, stripped. Empty when there is none.
func (c *extractionContext) docstring(body *sitter.Node) string {
	stmts := statements(body)
	if len(stmts) == 0 || stmts[0].Kind() != "expression_statement" {
		return ""
	}
	expr := stmts[0]
	if expr.NamedChildCount() != 1 {
		return ""
	}
	doc, ok := c.stringLiteral(firstNamed(expr))
	if !ok {
		return ""
	}
	return firstDocLine(doc)
}

func firstDocLine(doc string) string {
	for _, line := range strings.Split(expandTabs(doc, 8), "\n") {
		if line = strings.TrimFunc(line, isPySpace); line != "" {
			return line
		}
	}
	return ""
}

// expandTabs replaces tabs with spaces up to the next multiple of size,
// restarting the column at every line break.
func expandTabs(s string, size int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			n := size - col%size
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case '\n', '\r':
			b.WriteRune(r)
			col = 0
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}

// isPySpace matches the characters str.strip() removes.
func isPySpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
