package parser

import (
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"
	"golang.org/x/text/unicode/runenames"
)

// StringLiteral decodes a `string` or `concatenated_string` node to the value
// Python would bind at runtime. ok is false for byte strings, f-strings and
// every other node kind: none of those are plain str constants.
func (t *Tree) StringLiteral(node *sitter.Node) (string, bool) {
	if node == nil {
		return "", false
	}
	switch node.Kind() {
	case "string":
		return t.decodeString(node)
	case "concatenated_string":
		var b strings.Builder
		for i := uint(0); i < node.NamedChildCount(); i++ {
			part := node.NamedChild(i)
			if part.Kind() != "string" {
				continue
			}
			s, ok := t.decodeString(part)
			if !ok {
				return "", false
			}
			b.WriteString(s)
		}
		return b.String(), true
	}
	return "", false
}

func (t *Tree) decodeString(node *sitter.Node) (string, bool) {
	var start, end *sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "string_start":
			start = child
		case "string_end":
			end = child
		case "interpolation":
			return "", false
		}
	}
	if start == nil || end == nil || end.IsMissing() {
		return "", false
	}

	opener := t.Text(start)
	prefix := strings.TrimRight(opener, `'"`)
	raw := false
	for _, r := range strings.ToLower(prefix) {
		switch r {
		case 'r':
			raw = true
		case 'u':
		default:
			// b, f and t prefixes do not produce str constants.
			return "", false
		}
	}

	body := string(t.Source[start.EndByte():end.StartByte()])
	if raw {
		return body, true
	}
	return unescape(body), true
}

// unescape applies Python's str escape rules. Unknown escapes are kept
// verbatim, backslash included.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			i++
			continue
		}
		next := s[i+1]
		i += 2
		switch next {
		case '\n':
		case '\\', '\'', '"':
			b.WriteByte(next)
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i - 1
			for j < len(s) && j < i+2 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			v, _ := strconv.ParseUint(s[i-1:j], 8, 32)
			b.WriteRune(rune(v))
			i = j
		case 'x', 'u', 'U':
			width := 2
			switch next {
			case 'u':
				width = 4
			case 'U':
				width = 8
			}
			if i+width > len(s) {
				b.WriteByte('\\')
				b.WriteByte(next)
				continue
			}
			v, err := strconv.ParseUint(s[i:i+width], 16, 32)
			if err != nil || !utf8.ValidRune(rune(v)) {
				b.WriteByte('\\')
				b.WriteByte(next)
				continue
			}
			b.WriteRune(rune(v))
			i += width
		case 'N':
			if i < len(s) && s[i] == '{' {
				if end := strings.IndexByte(s[i:], '}'); end > 0 {
					if r, ok := runeByName(s[i+1 : i+end]); ok {
						b.WriteRune(r)
						i += end + 1
						continue
					}
				}
			}
			b.WriteString(`\N`)
		default:
			b.WriteByte('\\')
			b.WriteByte(next)
		}
	}
	return b.String()
}

var (
	runeNamesOnce sync.Once
	runeNames     map[string]rune
)

// runeByName resolves a \N{...} escape. The reverse table is built on first
// use since \N escapes are rare in test sources.
func runeByName(name string) (rune, bool) {
	runeNamesOnce.Do(func() {
		runeNames = make(map[string]rune, 40000)
		for r := rune(0); r <= utf8.MaxRune; r++ {
			if r >= 0xD800 && r <= 0xDFFF {
				continue
			}
			n := runenames.Name(r)
			if n == "" || strings.HasPrefix(n, "<") {
				continue
			}
			runeNames[n] = r
		}
	})
	r, ok := runeNames[strings.ToUpper(name)]
	return r, ok
}
