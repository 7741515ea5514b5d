package extract

import (
	"context"
	"sort"

	"casemeta/internal/engine/parser"
)

// Extractor reads Python test sources and builds their documents.
type Extractor struct {
	parser *parser.Parser
}

func New(p *parser.Parser) *Extractor {
	if p == nil {
		p = parser.New()
	}
	return &Extractor{parser: p}
}

// ExtractFile reads and extracts one file. A missing file is reported as a
// NOT_FOUND error before any parsing happens.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (*Result, error) {
	tree, err := e.parser.ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	return Extract(tree)
}

// ExtractSource extracts already-decoded UTF-8 source.
func (e *Extractor) ExtractSource(ctx context.Context, src []byte) (*Result, error) {
	tree, err := e.parser.Parse(ctx, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	return Extract(tree)
}

// Extract assembles the document for a parsed file. A syntax error yields a
// document holding only that error. Unsupported structural constructs abort
// with an UNSUPPORTED_CONSTRUCT error.
func Extract(tree *parser.Tree) (*Result, error) {
	result := &Result{
		Classes:   []Class{},
		Functions: []Function{},
		Errors:    []ParseError{},
	}
	if tree.Syntax != nil {
		result.Errors = append(result.Errors, ParseError{Line: tree.Syntax.Line, Text: tree.Syntax.Text})
		return result, nil
	}

	root := tree.Root()
	c := &extractionContext{tree: tree, tokens: NewTokenIndex(tree.Tokens)}
	imports := newImportTable()

	result.Docstring = strPtr(c.docstring(root))
	// Top-level statements are taken in order: a class only sees the imports
	// that precede it.
	for _, stmt := range statements(root) {
		if err := imports.bind(c, stmt); err != nil {
			return nil, err
		}
		def := unwrapDecorated(stmt)
		switch {
		case def.Kind() == "class_definition":
			c.imports = imports.snapshot()
			class, err := c.extractClass(def)
			if err != nil {
				return nil, err
			}
			result.Classes = append(result.Classes, class)
		case isFunctionDef(def):
			result.Functions = append(result.Functions, c.describeFunction(def))
		}
	}

	sort.SliceStable(result.Classes, func(i, j int) bool {
		return result.Classes[i].Name < result.Classes[j].Name
	})
	sortFunctions(result.Functions)
	return result, nil
}

