package extract

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// classifyValue maps a locator attribute's value to its classified form.
// ok=false is the Omitted outcome: the shape is not understood and the
// attribute is left out of the mapping. It is never an error.
func (c *extractionContext) classifyValue(node *sitter.Node) (Value, bool) {
	node = unwrapParens(node)
	if node == nil {
		return nil, false
	}
	switch node.Kind() {
	case "call":
		return c.classifyCall(node)
	case "identifier":
		return c.classifyName(c.Text(node)), true
	case "attribute":
		return c.classifyName(c.Text(node.ChildByFieldName("attribute"))), true
	case "string", "concatenated_string":
		if s, ok := c.tree.StringLiteral(node); ok {
			return StringValue(s), true
		}
	case "integer", "float":
		if n, ok := c.tree.NumberLiteral(node); ok && n.JSON != "" {
			return NumberValue(n.JSON), true
		}
	}
	return nil, false
}

// classifyCall accepts `strategy('arg')` and `module.strategy('arg')`:
// exactly one positional argument, and it must be a string literal.
func (c *extractionContext) classifyCall(call *sitter.Node) (Value, bool) {
	args := positionalArgs(call)
	if len(args) != 1 {
		return nil, false
	}
	arg, ok := c.stringLiteral(args[0])
	if !ok {
		return nil, false
	}

	fn := call.ChildByFieldName("function")
	var name string
	switch fn.Kind() {
	case "identifier":
		name = c.Text(fn)
	case "attribute":
		name = c.Text(fn.ChildByFieldName("attribute"))
	default:
		return nil, false
	}
	return LocatorCall{Func: name, Arg: arg}, true
}

// classifyName resolves a bare name, or the final name of an attribute
// access. `self` refers to the control's container.
func (c *extractionContext) classifyName(name string) Value {
	if name == "self" {
		return RootRef{}
	}
	return c.resolveSymbol(name)
}

func (c *extractionContext) resolveSymbol(name string) SymbolRef {
	if module, ok := c.imports.Lookup(name); ok {
		return SymbolRef{Module: module, Name: name}
	}
	return SymbolRef{Name: name}
}
