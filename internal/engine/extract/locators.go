package extract

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

var locatorRegistrations = map[string]bool{
	"updateLocator":  true,
	"update_locator": true,
}

// extractControls collects the controls registered by every
// updateLocator/update_locator call among the initializer's own statements.
func (c *extractionContext) extractControls(body *sitter.Node) []Control {
	stmts := statements(body)
	var controls []Control
	for i, stmt := range stmts {
		call := expressionCall(stmt)
		if call == nil {
			continue
		}
		if name, ok := c.calleeAttribute(call); !ok || !locatorRegistrations[name] {
			continue
		}
		args := positionalArgs(call)
		if len(args) == 0 {
			continue
		}
		source := unwrapParens(args[0])
		if source.Kind() != "dictionary" {
			source = c.resolveReference(stmts, i, source)
		}
		if source == nil || source.Kind() != "dictionary" {
			continue
		}
		controls = append(controls, c.parseLocatorDict(source)...)
	}
	return controls
}

// resolveReference finds the dictionary a locator source name refers to.
// The statements after the registration call are searched first, in order:
// the first assignment to the reference decides, and an assignment whose
// value is itself a reference keeps being followed. When that yields no
// dictionary the whole body is followed the same way from its first
// statement, so an assignment before the call is found too, earliest first.
// Only the initializer's own statements are searched, never nested blocks.
func (c *extractionContext) resolveReference(stmts []*sitter.Node, call int, ref *sitter.Node) *sitter.Node {
	if found := c.followAssignments(stmts[call+1:], ref); found.Kind() == "dictionary" {
		return found
	}
	if found := c.followAssignments(stmts, ref); found.Kind() == "dictionary" {
		return found
	}
	return nil
}

// followAssignments walks stmts in order, replacing ref by the value of each
// assignment whose target matches it. Once ref is a dictionary nothing else
// can match.
func (c *extractionContext) followAssignments(stmts []*sitter.Node, ref *sitter.Node) *sitter.Node {
	current := ref
	for _, stmt := range stmts {
		c.eachAssignment(stmt, func(target, value *sitter.Node) {
			if c.sameReference(target, current) {
				current = unwrapParens(value)
			}
		})
	}
	return current
}

// eachAssignment calls fn for every target of a plain assignment statement.
func (c *extractionContext) eachAssignment(stmt *sitter.Node, fn func(target, value *sitter.Node)) {
	assign := assignmentOf(stmt)
	if assign == nil {
		return
	}
	targets, value := assignmentTargets(assign)
	if value == nil {
		return
	}
	for _, target := range targets {
		fn(target, value)
	}
}

// sameReference compares two targets syntactically: names by identifier,
// attribute accesses by their final attribute name.
func (c *extractionContext) sameReference(a, b *sitter.Node) bool {
	if a == nil || b == nil || a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case "identifier":
		return c.Text(a) == c.Text(b)
	case "attribute":
		return c.Text(a.ChildByFieldName("attribute")) == c.Text(b.ChildByFieldName("attribute"))
	}
	return false
}

// parseLocatorDict turns {'name': {'attr': value, ...}, ...} into controls.
// Entries without a string key or without a dict value are skipped.
func (c *extractionContext) parseLocatorDict(dict *sitter.Node) []Control {
	var controls []Control
	for _, entry := range statements(dict) {
		if entry.Kind() != "pair" {
			continue
		}
		key := unwrapParens(entry.ChildByFieldName("key"))
		name, ok := c.tree.StringLiteral(key)
		if !ok {
			continue
		}
		value := unwrapParens(entry.ChildByFieldName("value"))
		if value == nil || value.Kind() != "dictionary" {
			continue
		}

		line := c.Line(key)
		control := Control{
			Name:    name,
			Line:    line,
			EndLine: c.tokens.FindControlEndLine(line),
			Attrs:   newAttrs(),
		}
		for _, attr := range statements(value) {
			if attr.Kind() != "pair" {
				continue
			}
			attrName, ok := c.stringLiteral(attr.ChildByFieldName("key"))
			if !ok {
				continue
			}
			if v, ok := c.classifyValue(attr.ChildByFieldName("value")); ok {
				control.Attrs.Set(attrName, v)
			}
		}
		controls = append(controls, control)
	}
	return controls
}
