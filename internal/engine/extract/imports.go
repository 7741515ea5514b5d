package extract

import (
	"strings"

	"casemeta/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ImportTable maps a locally bound name to the module it was imported from.
// A nil module means the current package (`from . import x`).
type ImportTable struct {
	bindings map[string]*string
}

// Lookup returns the module bound to name.
func (t ImportTable) Lookup(name string) (*string, bool) {
	module, ok := t.bindings[name]
	return module, ok
}

func newImportTable() ImportTable {
	return ImportTable{bindings: make(map[string]*string)}
}

// bind adds the names stmt imports. Other statements are ignored.
func (t ImportTable) bind(c *extractionContext, stmt *sitter.Node) error {
	switch stmt.Kind() {
	case "import_statement":
		bindPlainImport(c, t, stmt)
	case "import_from_statement":
		return bindFromImport(c, t, stmt)
	case "future_import_statement":
		bindNames(c, t, stmt, strPtr("__future__"))
	}
	return nil
}

// snapshot returns a copy that later bindings do not affect.
func (t ImportTable) snapshot() ImportTable {
	out := newImportTable()
	for name, module := range t.bindings {
		out.bindings[name] = module
	}
	return out
}

// bindPlainImport handles `import a.b` and `import a.b as c`.
func bindPlainImport(c *extractionContext, table ImportTable, stmt *sitter.Node) {
	cursor := stmt.Walk()
	defer cursor.Close()
	for _, name := range stmt.ChildrenByFieldName("name", cursor) {
		switch name.Kind() {
		case "aliased_import":
			module := c.Text(name.ChildByFieldName("name"))
			table.bindings[c.Text(name.ChildByFieldName("alias"))] = strPtr(module)
		default:
			module := c.Text(&name)
			table.bindings[module] = strPtr(module)
		}
	}
}

// bindFromImport handles `from m import x [as y]`, including relative forms.
func bindFromImport(c *extractionContext, table ImportTable, stmt *sitter.Node) error {
	for i := uint(0); i < stmt.NamedChildCount(); i++ {
		if stmt.NamedChild(i).Kind() == "wildcard_import" {
			return errors.UnsupportedConstruct("star import", c.Line(stmt))
		}
	}
	bindNames(c, table, stmt, fromModule(c, stmt.ChildByFieldName("module_name")))
	return nil
}

func bindNames(c *extractionContext, table ImportTable, stmt *sitter.Node, module *string) {
	cursor := stmt.Walk()
	defer cursor.Close()
	for _, name := range stmt.ChildrenByFieldName("name", cursor) {
		switch name.Kind() {
		case "aliased_import":
			table.bindings[c.Text(name.ChildByFieldName("alias"))] = module
		default:
			table.bindings[c.Text(&name)] = module
		}
	}
}

// fromModule returns the module path of a from-import. Leading dots of a
// relative import are dropped; `from . import x` has no module.
func fromModule(c *extractionContext, node *sitter.Node) *string {
	if node == nil {
		return nil
	}
	if node.Kind() != "relative_import" {
		return strPtr(c.Text(node))
	}
	path := strings.TrimLeft(c.Text(node), ".")
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	return &path
}
