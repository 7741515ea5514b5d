package parser

import (
	"bytes"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// The grammar is more permissive than CPython: it keeps Python 2 statements
// and recovers from bad indentation without an ERROR node. findSyntaxError
// reports the earliest line CPython would reject.
func findSyntaxError(root *sitter.Node, src []byte) *SyntaxError {
	line := 0
	keep := func(l int) {
		if l > 0 && (line == 0 || l < line) {
			line = l
		}
	}
	if root.HasError() {
		if bad := firstUnexpected(root); bad != nil {
			keep(int(bad.StartPosition().Row) + 1)
		}
	}
	keep(checkStatements(root, 0, src))
	if line == 0 {
		return nil
	}
	return &SyntaxError{Line: line, Text: sourceLine(src, line)}
}

// firstUnexpected returns the first token the parser had to skip (a leaf
// other than a comment directly under an ERROR node) or the first MISSING
// token.
func firstUnexpected(node *sitter.Node) *sitter.Node {
	if node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if node.IsError() && isSkippedToken(child) {
			return child
		}
		if found := firstUnexpected(child); found != nil {
			return found
		}
	}
	if node.IsError() {
		return node
	}
	return nil
}

func isSkippedToken(node *sitter.Node) bool {
	return node.ChildCount() == 0 && node.StartByte() != node.EndByte() && node.Kind() != "comment"
}

// checkStatements validates the statements directly under a module or block:
// every statement opening a line sits at column, and nested suites are
// indented past their header. It returns the first offending line or 0.
func checkStatements(parent *sitter.Node, column uint, src []byte) int {
	prevEnd := -1
	for i := uint(0); i < parent.ChildCount(); i++ {
		stmt := parent.Child(i)
		if !isStatement(stmt) {
			continue
		}
		row := int(stmt.StartPosition().Row)
		// Statements chained with ';' share the line their predecessor ends on.
		if row != prevEnd && stmt.StartPosition().Column != column {
			return row + 1
		}
		prevEnd = int(stmt.EndPosition().Row)
		if line := checkStatement(stmt, src); line > 0 {
			return line
		}
	}
	return 0
}

func checkStatement(stmt *sitter.Node, src []byte) int {
	switch stmt.Kind() {
	case "print_statement":
		// `print >>f, x` is a valid shift expression in a tuple.
		if first := stmt.NamedChild(0); first != nil && first.Kind() == "chevron" {
			return 0
		}
		return int(stmt.StartPosition().Row) + 1
	case "exec_statement":
		return int(stmt.StartPosition().Row) + 1
	}

	header := stmt.StartPosition()
	for i := uint(0); i < stmt.ChildCount(); i++ {
		child := stmt.Child(i)
		switch {
		case child.Kind() == "block":
			if line := checkSuite(child, header, src); line > 0 {
				return line
			}
		case isClause(child.Kind()):
			// else/elif/except/finally opening a line align with their statement.
			if child.StartPosition().Row != header.Row && child.StartPosition().Column != header.Column {
				return int(child.StartPosition().Row) + 1
			}
			if line := checkStatement(child, src); line > 0 {
				return line
			}
		case stmt.Kind() == "decorated_definition" && child.Kind() != "decorator" && isStatement(child):
			if line := checkStatement(child, src); line > 0 {
				return line
			}
		}
	}
	return 0
}

// checkSuite validates the block following header's colon.
func checkSuite(block *sitter.Node, header sitter.Point, src []byte) int {
	var first *sitter.Node
	for i := uint(0); i < block.ChildCount(); i++ {
		if child := block.Child(i); isStatement(child) {
			first = child
			break
		}
	}
	colon := block.PrevSibling()
	colonRow := header.Row
	if colon != nil {
		colonRow = colon.EndPosition().Row
	}
	if first == nil {
		return nextCodeLine(src, int(colonRow)+1)
	}
	start := first.StartPosition()
	if start.Row == colonRow {
		// Simple suite on the header line.
		return 0
	}
	if start.Column <= header.Column {
		return int(start.Row) + 1
	}
	return checkStatements(block, start.Column, src)
}

// isStatement reports whether node is a member of a suite. case_clause counts:
// it is what a match block holds.
func isStatement(node *sitter.Node) bool {
	if node == nil || !node.IsNamed() || node.IsError() {
		return false
	}
	switch node.Kind() {
	case "comment", "line_continuation", "block":
		return false
	}
	return !isClause(node.Kind())
}

func isClause(kind string) bool {
	switch kind {
	case "elif_clause", "else_clause", "except_clause", "finally_clause":
		return true
	}
	return false
}

// nextCodeLine returns the first line after `after` (1-based) holding code,
// or the line following `after` when only blanks and comments remain.
func nextCodeLine(src []byte, after int) int {
	lines := bytes.Split(src, []byte("\n"))
	for i := after; i < len(lines); i++ {
		text := bytes.TrimSpace(lines[i])
		if len(text) > 0 && text[0] != '#' {
			return i + 1
		}
	}
	return after + 1
}
