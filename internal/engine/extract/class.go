package extract

import (
	"slices"
	"sort"

	"casemeta/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// extractClass builds the descriptor of one top-level class.
func (c *extractionContext) extractClass(node *sitter.Node) (Class, error) {
	body := node.ChildByFieldName("body")
	class := Class{
		Name:         c.Text(node.ChildByFieldName("name")),
		Docstring:    c.docstring(body),
		Line:         c.Line(node),
		EndLine:      c.endLine(node),
		Bases:        []SymbolRef{},
		Controls:     []Control{},
		StaticFields: []StaticField{},
		Functions:    []Function{},
	}

	bases, err := c.extractBases(node.ChildByFieldName("superclasses"))
	if err != nil {
		return Class{}, err
	}
	class.Bases = bases

	for _, stmt := range statements(body) {
		if field, ok := c.staticField(stmt); ok {
			class.StaticFields = append(class.StaticFields, field)
			continue
		}

		def := unwrapDecorated(stmt)
		if !isFunctionDef(def) {
			continue
		}
		fn := c.describeFunction(def)
		defBody := def.ChildByFieldName("body")
		switch {
		case fn.Name == "__init__":
			class.Controls = append(class.Controls, c.extractControls(defBody)...)
		case slices.Contains(EntryMethods, fn.Name):
			steps, err := c.extractSteps(defBody)
			if err != nil {
				return Class{}, errors.AddContext(err, "class", class.Name)
			}
			fn.Steps = steps
		}
		class.Functions = append(class.Functions, fn)
	}

	sortFunctions(class.Functions)
	class.IsTestCase = IsTestCase(class)
	return class, nil
}

// extractBases resolves base classes. `Base` is local; `mod.Base` is looked
// up by the object's text in the import table. Keyword arguments such as
// metaclass= are not bases. Any other expression is unsupported.
func (c *extractionContext) extractBases(superclasses *sitter.Node) ([]SymbolRef, error) {
	bases := []SymbolRef{}
	for _, arg := range statements(superclasses) {
		switch arg.Kind() {
		case "keyword_argument", "dictionary_splat":
			continue
		case "identifier":
			bases = append(bases, SymbolRef{Name: c.Text(arg)})
		case "attribute":
			ref := SymbolRef{Name: c.Text(arg.ChildByFieldName("attribute"))}
			if module, ok := c.imports.Lookup(c.Text(arg.ChildByFieldName("object"))); ok {
				ref.Module = module
			}
			bases = append(bases, ref)
		default:
			return nil, errors.UnsupportedConstruct("base class expression "+arg.Kind(), c.Line(arg))
		}
	}
	return bases, nil
}

// staticField recognizes `name = value` in a class body. Reserved names take
// string, number or attribute values; any other name needs a string.
func (c *extractionContext) staticField(stmt *sitter.Node) (StaticField, bool) {
	assign := assignmentOf(stmt)
	if assign == nil {
		return StaticField{}, false
	}
	targets, value := assignmentTargets(assign)
	if len(targets) != 1 || value == nil || targets[0] == nil || targets[0].Kind() != "identifier" {
		return StaticField{}, false
	}
	name := c.Text(targets[0])
	value = unwrapParens(value)
	line := c.Line(stmt)

	if s, ok := c.tree.StringLiteral(value); ok {
		return StaticField{Name: name, Value: s, Line: line}, true
	}
	if !slices.Contains(ReservedFields, name) {
		return StaticField{}, false
	}
	switch value.Kind() {
	case "integer", "float":
		if n, ok := c.tree.NumberLiteral(value); ok {
			return StaticField{Name: name, Value: n.Str, Line: line}, true
		}
	case "attribute":
		return StaticField{Name: name, Value: c.Text(value.ChildByFieldName("attribute")), Line: line}, true
	}
	return StaticField{}, false
}

func (c *extractionContext) describeFunction(def *sitter.Node) Function {
	return Function{
		Name:      c.Text(def.ChildByFieldName("name")),
		Docstring: c.docstring(def.ChildByFieldName("body")),
		Line:      c.Line(def),
		EndLine:   c.endLine(def),
		Steps:     []Step{},
	}
}

func sortFunctions(fns []Function) {
	sort.SliceStable(fns, func(i, j int) bool { return fns[i].Name < fns[j].Name })
}
