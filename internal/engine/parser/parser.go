package parser

import (
	"bytes"
	"context"
	"time"

	"casemeta/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// SyntaxError describes the first line CPython would refuse to compile.
type SyntaxError struct {
	Line int
	Text string
}

// Tree pairs a parsed module with its source and flat token stream.
type Tree struct {
	Source []byte
	Tokens []Token
	Syntax *SyntaxError

	tree *sitter.Tree
}

// Root returns the module node.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	if t != nil && t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Text returns the exact source text covered by node.
func (t *Tree) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(t.Source[node.StartByte():node.EndByte()])
}

// Line returns the 1-based starting line of node.
func (t *Tree) Line(node *sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// Parser turns Python sources into trees using pooled tree-sitter parsers.
type Parser struct {
	pool        *ParserPool
	maxFileSize int64
}

type Option func(*Parser)

// WithMaxFileSize overrides DefaultMaxFileSize. Zero or less disables the check.
func WithMaxFileSize(n int64) Option {
	return func(p *Parser) { p.maxFileSize = n }
}

func New(opts ...Option) *Parser {
	p := &Parser{
		pool:        NewParserPool(PythonLanguage()),
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Leases reports how many pooled parsers are checked out and for how long the
// oldest has been held.
func (p *Parser) Leases(now time.Time) (int, time.Duration) {
	return p.pool.Stats(), p.pool.OldestLease(now)
}

// ParseFile reads, decodes and parses the file at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Tree, error) {
	src, err := ReadSource(path, p.maxFileSize)
	if err != nil {
		return nil, err
	}
	tree, err := p.Parse(ctx, src)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return tree, nil
}

// Parse parses UTF-8 source. Syntax errors are reported through Tree.Syntax,
// never as a returned error.
func (p *Parser) Parse(ctx context.Context, src []byte) (*Tree, error) {
	src = normalizeNewlines(src)

	sp, err := p.pool.Get()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "configure parser")
	}
	defer p.pool.Put(sp)

	var st *sitter.Tree
	if ctx != nil && ctx.Done() != nil {
		st = sp.ParseCtx(ctx, src, nil)
	} else {
		st = sp.Parse(src, nil)
	}
	if st == nil {
		if ctx != nil && ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), errors.CodeInternal, "parse cancelled")
		}
		return nil, errors.New(errors.CodeInternal, "tree-sitter returned no tree")
	}

	t := &Tree{Source: src, tree: st}
	root := st.RootNode()
	t.Tokens = collectTokens(root)
	t.Syntax = findSyntaxError(root, src)
	return t, nil
}

// sourceLine returns line (1-based) including its trailing newline, matching
// the text CPython attaches to a SyntaxError.
func sourceLine(src []byte, line int) string {
	start := 0
	for n := 1; n < line; n++ {
		idx := bytes.IndexByte(src[start:], '\n')
		if idx < 0 {
			return ""
		}
		start += idx + 1
	}
	end := bytes.IndexByte(src[start:], '\n')
	if end < 0 {
		return string(src[start:])
	}
	return string(src[start : start+end+1])
}

func normalizeNewlines(src []byte) []byte {
	if bytes.IndexByte(src, '\r') < 0 {
		return src
	}
	src = bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(src, []byte("\r"), []byte("\n"))
}
