package extract

import (
	"context"
	"testing"

	"casemeta/internal/engine/parser"

	"github.com/stretchr/testify/require"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

func newTestContext(t *testing.T, src string) *extractionContext {
	t.Helper()
	tree, err := parser.New().Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	require.Nil(t, tree.Syntax, "fixture must parse cleanly")

	c := &extractionContext{tree: tree, tokens: NewTokenIndex(tree.Tokens)}
	c.imports = newImportTable()
	for _, stmt := range statements(tree.Root()) {
		require.NoError(t, c.imports.bind(c, stmt))
	}
	return c
}

// topLevel returns the n-th top-level statement, unwrapping decorators.
func topLevel(t *testing.T, c *extractionContext, n int) *sitter.Node {
	t.Helper()
	stmts := statements(c.tree.Root())
	require.Greater(t, len(stmts), n)
	return unwrapDecorated(stmts[n])
}
