package internal

import (
	"strings"
	"unicode"
)

// ApplyWhitespaceControl returns a copy of tokens with trim markers applied.
//
// A TrimLeft marker strips all trailing whitespace from the text token right
// before the marked token; a TrimRight marker strips all leading whitespace
// from the text token right after it. Whitespace is any Unicode space
// character, and the trim is greedy over the contiguous run. Text tokens left
// empty are dropped. The input slice is not modified.
func ApplyWhitespaceControl(tokens []Token) []Token {
	out := make([]Token, len(tokens))
	copy(out, tokens)

	for i, tok := range out {
		if tok.IsText() {
			continue
		}
		if tok.TrimLeft && i > 0 && out[i-1].IsText() {
			out[i-1].Value = strings.TrimRightFunc(out[i-1].Value, unicode.IsSpace)
		}
		if tok.TrimRight && i+1 < len(out) && out[i+1].IsText() {
			next := out[i+1]
			trimmed := strings.TrimLeftFunc(next.Value, unicode.IsSpace)
			next.Position = advancePosition(next.Position, next.Value[:len(next.Value)-len(trimmed)])
			next.Value = trimmed
			out[i+1] = next
		}
	}

	result := out[:0]
	for _, tok := range out {
		if tok.IsText() && tok.Value == "" {
			continue
		}
		result = append(result, tok)
	}
	return result
}

// advancePosition moves pos past the consumed text
func advancePosition(pos Position, consumed string) Position {
	for i := 0; i < len(consumed); i++ {
		pos.Offset++
		if consumed[i] == CharNewline {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}
	return pos
}
