package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const classifyFixture = `from locators import ById
from . import local_finder
import qt4c.qpath as qpath

values = {
    'xpath': XPath('//div'),
    'dotted_call': By.id('x'),
    'paren_arg': XPath(('//p')),
    'keyword_ignored': QPath('/Name="ok"', timeout=3),
    'two_args': Foo('a', 'b'),
    'no_args': Foo(),
    'number_arg': Foo(1),
    'name_arg': Foo(bar),
    'splat_arg': Foo(*args),
    'subscript_callee': table['x']('y'),
    'self': self,
    'self_attr': self.parent,
    'imported': ById,
    'imported_attr': gf.ById,
    'relative': local_finder,
    'aliased_module': qpath,
    'local': Unknown,
    'string': 'text',
    'concat': 'a' 'b',
    'fstring': f'{x}',
    'bytes': b'x',
    'int': 42,
    'float': 1.5,
    'huge_float': 1e999,
    'complex': 2j,
    'none': None,
    'bool': True,
    'list': [1, 2],
    'negative': -1,
    'lambda': lambda: 1,
}
`

func TestClassifyValue(t *testing.T) {
	want := map[string]string{
		"xpath":            `["XPath","//div"]`,
		"dotted_call":      `["id","x"]`,
		"paren_arg":        `["XPath","//p"]`,
		"keyword_ignored":  `["QPath","/Name=\"ok\""]`,
		"self":             `null`,
		"self_attr":        `[null,"parent"]`,
		"imported":         `["locators","ById"]`,
		"imported_attr":    `["locators","ById"]`,
		"relative":         `[null,"local_finder"]`,
		"aliased_module":   `["qt4c.qpath","qpath"]`,
		"local":            `[null,"Unknown"]`,
		"string":           `"text"`,
		"concat":           `"ab"`,
		"int":              `42`,
		"float":            `1.5`,
	}

	c := newTestContext(t, classifyFixture)
	assign := assignmentOf(topLevel(t, c, 3))
	require.NotNil(t, assign)
	dict := assign.ChildByFieldName("right")
	require.Equal(t, "dictionary", dict.Kind())

	seen := 0
	for _, pair := range statements(dict) {
		key, ok := c.stringLiteral(pair.ChildByFieldName("key"))
		require.True(t, ok)
		seen++

		value, ok := c.classifyValue(pair.ChildByFieldName("value"))
		expected, supported := want[key]
		if !supported {
			assert.False(t, ok, "%s should be omitted", key)
			continue
		}
		if assert.True(t, ok, "%s should be classified", key) {
			assert.Equal(t, expected, marshal(t, value), key)
		}
	}
	assert.Equal(t, 30, seen)
}

func TestClassifyValue_Variants(t *testing.T) {
	c := newTestContext(t, "from locators import ById\nx = {'a': self, 'b': ById, 'c': XPath('p'), 'd': 's', 'e': 7}\n")
	dict := assignmentOf(topLevel(t, c, 1)).ChildByFieldName("right")

	var got []Value
	for _, pair := range statements(dict) {
		v, ok := c.classifyValue(pair.ChildByFieldName("value"))
		require.True(t, ok)
		got = append(got, v)
	}
	assert.Equal(t, []Value{
		RootRef{},
		SymbolRef{Module: strPtr("locators"), Name: "ById"},
		LocatorCall{Func: "XPath", Arg: "p"},
		StringValue("s"),
		NumberValue("7"),
	}, got)
}
