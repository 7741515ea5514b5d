package extract

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// bodyField names the field that holds the primary statement block of each
// compound statement. else/except/finally branches are not followed.
var bodyField = map[string]string{
	"class_definition":    "body",
	"function_definition": "body",
	"if_statement":        "consequence",
	"for_statement":       "body",
	"while_statement":     "body",
	"with_statement":      "body",
	"try_statement":       "body",
}

// endLine approximates where a construct ends by descending into the last
// statement of its body until reaching a simple statement, and returning that
// statement's starting line. A multi-line final statement therefore reports
// its first line, not its last; consumers depend on these exact values.
func (c *extractionContext) endLine(node *sitter.Node) int {
	node = unwrapDecorated(node)
	field, ok := bodyField[node.Kind()]
	if !ok {
		return c.Line(node)
	}
	body := statements(node.ChildByFieldName(field))
	if len(body) == 0 {
		return c.Line(node)
	}
	return c.endLine(body[len(body)-1])
}
