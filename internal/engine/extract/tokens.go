package extract

import (
	"casemeta/internal/engine/parser"
)

// TokenIndex maps each source line to the positions of the tokens that start
// on it.
type TokenIndex struct {
	tokens []parser.Token
	byLine map[int][]int
}

func NewTokenIndex(tokens []parser.Token) *TokenIndex {
	ix := &TokenIndex{tokens: tokens, byLine: make(map[int][]int)}
	for i, tok := range tokens {
		ix.byLine[tok.Line] = append(ix.byLine[tok.Line], i)
	}
	return ix
}

// FindControlEndLine returns the line of the first closing brace at or after
// the first token on start. Nested dictionaries close first, so for a control
// whose attributes sit in an inner dict this is the inner dict's last line.
// With no closing brace left in the stream it falls back to the last line seen.
func (ix *TokenIndex) FindControlEndLine(start int) int {
	positions := ix.byLine[start]
	if len(positions) == 0 {
		return start
	}
	last := start
	for _, tok := range ix.tokens[positions[0]:] {
		if tok.IsCloseBrace() {
			return tok.Line
		}
		last = tok.Line
	}
	return last
}
