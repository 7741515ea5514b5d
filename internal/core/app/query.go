package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"casemeta/internal/core/errors"
)

// Outline is the subset of a document needed for queries and summaries.
// Attribute values are not decoded: their JSON form is not self-describing.
type Outline struct {
	Docstring *string        `json:"docstring"`
	Classes   []ClassOutline `json:"classes"`
	Functions []FuncOutline  `json:"functions"`
	Errors    []ErrorOutline `json:"errors"`
}

type ClassOutline struct {
	Name       string        `json:"name"`
	Docstring  string        `json:"docstring"`
	IsTestCase bool          `json:"is_testcase"`
	Controls   []struct{}    `json:"controls"`
	Functions  []FuncOutline `json:"functions"`
}

type FuncOutline struct {
	Name      string     `json:"name"`
	Docstring string     `json:"docstring"`
	Steps     []struct{} `json:"steps"`
}

type ErrorOutline struct {
	Line int    `json:"lineno"`
	Text string `json:"text"`
}

// DecodeOutline reads the query view of a document.
func DecodeOutline(payload []byte) (*Outline, error) {
	var o Outline
	if err := json.Unmarshal(payload, &o); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "decode document")
	}
	return &o, nil
}

// Outline extracts path (through the cache) and decodes its query view.
func (a *App) Outline(ctx context.Context, path string) (*Outline, error) {
	payload, err := a.ExtractFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return DecodeOutline(payload)
}

func (o *Outline) class(name string) *ClassOutline {
	for i := range o.Classes {
		if o.Classes[i].Name == name {
			return &o.Classes[i]
		}
	}
	return nil
}

func findFunc(funcs []FuncOutline, name string) *FuncOutline {
	for i := range funcs {
		if funcs[i].Name == name {
			return &funcs[i]
		}
	}
	return nil
}

// Docstring resolves name against the document of path. An empty name is the
// module itself; "A.b" is method b of class A; a bare name is tried as a class
// first and then as a top-level function.
func (a *App) Docstring(ctx context.Context, path, name string) (string, error) {
	o, err := a.Outline(ctx, path)
	if err != nil {
		return "", err
	}
	if len(o.Errors) > 0 {
		return "", syntaxFailure(path, o.Errors[0])
	}

	name = strings.TrimSpace(name)
	if name == "" {
		if o.Docstring == nil {
			return "", nil
		}
		return *o.Docstring, nil
	}

	if className, method, ok := strings.Cut(name, "."); ok {
		class := o.class(className)
		if class == nil {
			return "", notFound(path, "class", className)
		}
		fn := findFunc(class.Functions, method)
		if fn == nil {
			return "", notFound(path, "method", name)
		}
		return fn.Docstring, nil
	}

	if class := o.class(name); class != nil {
		return class.Docstring, nil
	}
	if fn := findFunc(o.Functions, name); fn != nil {
		return fn.Docstring, nil
	}
	return "", notFound(path, "symbol", name)
}

// ClassNames lists the classes of path in document order.
func (a *App) ClassNames(ctx context.Context, path string) ([]string, error) {
	o, err := a.Outline(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(o.Errors) > 0 {
		return nil, syntaxFailure(path, o.Errors[0])
	}
	names := make([]string, 0, len(o.Classes))
	for _, c := range o.Classes {
		names = append(names, c.Name)
	}
	return names, nil
}

// FunctionNames lists the top-level functions of path, or the methods of
// className when it is not empty.
func (a *App) FunctionNames(ctx context.Context, path, className string) ([]string, error) {
	o, err := a.Outline(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(o.Errors) > 0 {
		return nil, syntaxFailure(path, o.Errors[0])
	}

	funcs := o.Functions
	if className != "" {
		class := o.class(className)
		if class == nil {
			return nil, notFound(path, "class", className)
		}
		funcs = class.Functions
	}
	names := make([]string, 0, len(funcs))
	for _, fn := range funcs {
		names = append(names, fn.Name)
	}
	return names, nil
}

func notFound(path, kind, name string) error {
	err := errors.New(errors.CodeNotFound, fmt.Sprintf("%s %s not found", kind, name))
	return errors.AddContext(err, errors.CtxPath, path)
}

func syntaxFailure(path string, e ErrorOutline) error {
	err := errors.New(errors.CodeValidationError, fmt.Sprintf("syntax error at line %d: %s", e.Line, strings.TrimRight(e.Text, "\n")))
	return errors.AddContext(err, errors.CtxPath, path)
}
