package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Token is one leaf of the syntax tree. Leaves in document order stand in for
// the lexer's token stream: punctuation, keywords, names and literal parts.
type Token struct {
	Kind string
	Line int
	// InInterpolation marks braces and other leaves that belong to an
	// f-string replacement field rather than to ordinary code.
	InInterpolation bool
}

// IsCloseBrace reports whether the token is a `}` operator of ordinary code.
func (t Token) IsCloseBrace() bool {
	return t.Kind == "}" && !t.InInterpolation
}

func collectTokens(root *sitter.Node) []Token {
	var tokens []Token
	var walk func(node *sitter.Node, interp bool)
	walk = func(node *sitter.Node, interp bool) {
		if node == nil {
			return
		}
		if node.Kind() == "interpolation" {
			interp = true
		}
		count := node.ChildCount()
		if count == 0 {
			// Zero-width MISSING leaves were never typed by the author.
			if node.StartByte() == node.EndByte() {
				return
			}
			tokens = append(tokens, Token{
				Kind:            node.Kind(),
				Line:            int(node.StartPosition().Row) + 1,
				InInterpolation: interp,
			})
			return
		}
		for i := uint(0); i < count; i++ {
			walk(node.Child(i), interp)
		}
	}
	walk(root, false)
	return tokens
}
