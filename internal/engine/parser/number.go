package parser

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Number is a numeric literal rendered the way Python prints it.
type Number struct {
	// Str is the str() form, e.g. "31" for 0x1F or "1e+16" for 1e16.
	Str string
	// JSON is the JSON number form. It is empty for values JSON cannot hold.
	JSON string
}

// NumberLiteral decodes an `integer` or `float` node. Imaginary literals such
// as 1j decode to their str() form with an empty JSON form.
func (t *Tree) NumberLiteral(node *sitter.Node) (Number, bool) {
	if node == nil {
		return Number{}, false
	}
	kind := node.Kind()
	if kind != "integer" && kind != "float" {
		return Number{}, false
	}
	text := t.Text(node)
	switch {
	case strings.ContainsAny(text, "jJ"):
		return parseImaginary(text)
	case kind == "integer":
		return parseInteger(text)
	default:
		return parseFloat(text)
	}
}

// parseImaginary renders a pure imaginary literal like Python's complex repr:
// the imaginary part without a trailing ".0", then "j".
func parseImaginary(text string) (Number, bool) {
	digits := strings.ReplaceAll(strings.TrimRight(text, "jJ"), "_", "")
	f, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		var numErr *strconv.NumError
		if !errors.As(err, &numErr) || numErr.Err != strconv.ErrRange {
			return Number{}, false
		}
	}
	if math.IsInf(f, 0) {
		return Number{Str: "infj"}, true
	}
	return Number{Str: strings.TrimSuffix(FormatFloat(f), ".0") + "j"}, true
}

func parseInteger(text string) (Number, bool) {
	text = strings.TrimRight(text, "lL")

	n := new(big.Int)
	var ok bool
	if len(text) > 1 && text[0] == '0' && strings.ContainsRune("xXoObB", rune(text[1])) {
		_, ok = n.SetString(text, 0)
	} else {
		_, ok = n.SetString(strings.ReplaceAll(text, "_", ""), 10)
	}
	if !ok {
		return Number{}, false
	}
	s := n.String()
	return Number{Str: s, JSON: s}, true
}

func parseFloat(text string) (Number, bool) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	if err != nil {
		var numErr *strconv.NumError
		if !errors.As(err, &numErr) || numErr.Err != strconv.ErrRange {
			return Number{}, false
		}
	}
	if math.IsInf(f, 0) {
		return Number{Str: "inf"}, true
	}
	s := FormatFloat(f)
	return Number{Str: s, JSON: s}, true
}

// FormatFloat renders f like Python's float repr: the shortest digits that
// round-trip, positional when the decimal exponent is in [-4, 16), scientific
// with a signed two-digit exponent otherwise.
func FormatFloat(f float64) string {
	if f == 0 {
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, expPart, _ := strings.Cut(sci, "e")
	exp, _ := strconv.Atoi(expPart)
	if exp < -4 || exp >= 16 {
		return sci
	}

	sign := ""
	if strings.HasPrefix(mantissa, "-") {
		sign = "-"
		mantissa = mantissa[1:]
	}
	digits := strings.Replace(mantissa, ".", "", 1)
	point := exp + 1

	var out string
	switch {
	case point <= 0:
		out = "0." + strings.Repeat("0", -point) + digits
	case point >= len(digits):
		out = digits + strings.Repeat("0", point-len(digits)) + ".0"
	default:
		out = digits[:point] + "." + digits[point:]
	}
	return sign + out
}
