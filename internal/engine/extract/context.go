package extract

import (
	"casemeta/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// extractionContext carries the per-file state every component reads: the
// parsed tree, the import table and the token index. It is never shared
// between files.
type extractionContext struct {
	tree    *parser.Tree
	imports ImportTable
	tokens  *TokenIndex
}

func (c *extractionContext) Text(node *sitter.Node) string {
	return c.tree.Text(node)
}

func (c *extractionContext) Line(node *sitter.Node) int {
	return c.tree.Line(node)
}

func (c *extractionContext) stringLiteral(node *sitter.Node) (string, bool) {
	return c.tree.StringLiteral(unwrapParens(node))
}

// statements returns the statements of a module or block, skipping comments.
func statements(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || child.IsExtra() || child.Kind() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

// unwrapParens strips redundant parentheses: `('x')` is the string 'x'.
func unwrapParens(node *sitter.Node) *sitter.Node {
	for node != nil && node.Kind() == "parenthesized_expression" {
		inner := firstNamed(node)
		if inner == nil {
			return node
		}
		node = inner
	}
	return node
}

// unwrapDecorated returns the class or function behind a decorated definition.
func unwrapDecorated(node *sitter.Node) *sitter.Node {
	if node != nil && node.Kind() == "decorated_definition" {
		if def := node.ChildByFieldName("definition"); def != nil {
			return def
		}
	}
	return node
}

func firstNamed(node *sitter.Node) *sitter.Node {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child != nil && !child.IsExtra() && child.Kind() != "comment" {
			return child
		}
	}
	return nil
}

// expressionCall returns the call of an expression statement such as
// `self.start_step('x')`, or nil.
func expressionCall(stmt *sitter.Node) *sitter.Node {
	if stmt.Kind() != "expression_statement" {
		return nil
	}
	expr := firstNamed(stmt)
	if expr == nil || expr.Kind() != "call" {
		return nil
	}
	return expr
}

// calleeAttribute returns the attribute name of a call like `obj.name(...)`.
// ok is false when the callee is not an attribute access.
func (c *extractionContext) calleeAttribute(call *sitter.Node) (string, bool) {
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Kind() != "attribute" {
		return "", false
	}
	return c.Text(fn.ChildByFieldName("attribute")), true
}

// positionalArgs returns the positional arguments of a call. Keyword
// arguments and **kwargs are excluded; *args count as positional.
func positionalArgs(call *sitter.Node) []*sitter.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.Kind() != "argument_list" {
		return nil
	}
	var out []*sitter.Node
	for _, arg := range statements(args) {
		switch arg.Kind() {
		case "keyword_argument", "dictionary_splat":
			continue
		}
		out = append(out, arg)
	}
	return out
}

// isFunctionDef reports whether node is a plain (non-async) def.
func isFunctionDef(node *sitter.Node) bool {
	if node == nil || node.Kind() != "function_definition" {
		return false
	}
	first := node.Child(0)
	return first == nil || first.Kind() != "async"
}

// assignmentOf returns the plain assignment wrapped by an expression
// statement. Annotated and augmented assignments are not plain.
func assignmentOf(stmt *sitter.Node) *sitter.Node {
	if stmt.Kind() != "expression_statement" {
		return nil
	}
	assign := firstNamed(stmt)
	if assign == nil || assign.Kind() != "assignment" {
		return nil
	}
	if assign.ChildByFieldName("type") != nil || assign.ChildByFieldName("right") == nil {
		return nil
	}
	return assign
}

// assignmentTargets flattens `a = b = value` into its targets and value.
func assignmentTargets(assign *sitter.Node) ([]*sitter.Node, *sitter.Node) {
	var targets []*sitter.Node
	node := assign
	for {
		targets = append(targets, node.ChildByFieldName("left"))
		right := node.ChildByFieldName("right")
		if right == nil || right.Kind() != "assignment" {
			return targets, right
		}
		if right.ChildByFieldName("type") != nil || right.ChildByFieldName("right") == nil {
			return targets, nil
		}
		node = right
	}
}
