package extract

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// FormatVersion changes whenever the document shape or extraction rules
// change in a way that invalidates previously cached documents.
const FormatVersion = 3

// Result is the document emitted for one source file.
type Result struct {
	// Docstring is nil when a syntax error was captured.
	Docstring *string      `json:"docstring,omitempty"`
	Classes   []Class      `json:"classes"`
	Functions []Function   `json:"functions"`
	Errors    []ParseError `json:"errors"`
}

// Class describes one top-level class definition.
type Class struct {
	Name         string        `json:"name"`
	Docstring    string        `json:"docstring"`
	Line         int           `json:"line"`
	EndLine      int           `json:"endline"`
	IsTestCase   bool          `json:"is_testcase"`
	Bases        []SymbolRef   `json:"bases"`
	Controls     []Control     `json:"controls"`
	StaticFields []StaticField `json:"static_fields"`
	Functions    []Function    `json:"functions"`
}

// Function describes a method or a top-level function. Steps is only ever
// populated for an entry method.
type Function struct {
	Name      string `json:"name"`
	Docstring string `json:"docstring"`
	Line      int    `json:"line"`
	EndLine   int    `json:"endline"`
	Steps     []Step `json:"steps"`
}

// Step is one start_step/startStep registration inside an entry method.
type Step struct {
	Name      string `json:"name"`
	Docstring string `json:"docstring"`
	Line      int    `json:"line"`
	EndLine   int    `json:"endline"`
}

// Control is one entry of a locator dictionary. Attrs keeps declaration order.
type Control struct {
	Name    string                                `json:"name"`
	Line    int                                   `json:"line"`
	EndLine int                                   `json:"endline"`
	Attrs   *orderedmap.OrderedMap[string, Value] `json:"attrs"`
}

// StaticField is a recognized class-body assignment, emitted as
// [name, value, line].
type StaticField struct {
	Name  string
	Value string
	Line  int
}

func (f StaticField) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{f.Name, f.Value, f.Line})
}

// ParseError is the single syntax failure recorded for a file.
type ParseError struct {
	Line int    `json:"lineno"`
	Text string `json:"text"`
}

// Value is the classified form of a locator attribute. The set of variants is
// closed: RootRef, SymbolRef, LocatorCall, StringValue and NumberValue.
type Value interface {
	json.Marshaler
	isValue()
}

// RootRef marks an attribute bound to `self`, the control's own container.
type RootRef struct{}

// SymbolRef names a symbol and the module it was imported from. A nil Module
// means the symbol is defined in the current file (or a relative package).
type SymbolRef struct {
	Module *string
	Name   string
}

// LocatorCall is a locator-strategy call with a single string argument.
type LocatorCall struct {
	Func string
	Arg  string
}

// StringValue is a plain string literal.
type StringValue string

// NumberValue is a numeric literal in its JSON rendering.
type NumberValue string

func (RootRef) isValue()     {}
func (SymbolRef) isValue()   {}
func (LocatorCall) isValue() {}
func (StringValue) isValue() {}
func (NumberValue) isValue() {}

func (RootRef) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

func (r SymbolRef) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{r.Module, r.Name})
}

func (c LocatorCall) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{c.Func, c.Arg})
}

func (s StringValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (n NumberValue) MarshalJSON() ([]byte, error) {
	return []byte(n), nil
}

func newAttrs() *orderedmap.OrderedMap[string, Value] {
	return orderedmap.New[string, Value]()
}

func strPtr(s string) *string {
	return &s
}
