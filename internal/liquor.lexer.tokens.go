package internal

import "fmt"

// Position represents a location in the source template
type Position struct {
	Offset int // Byte offset from start
	Line   int // 1-indexed line number
	Column int // 1-indexed column number
}

// String returns a human-readable position string
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Token represents a lexical token produced by the lexer.
// Tokens are values and are never mutated once produced.
type Token struct {
	Kind      TokenKind // Text, output or tag
	Value     string    // Literal text, or the trimmed inner content of a delimiter pair
	Position  Position  // Source position of the token start
	End       int       // Byte offset just past the token
	TrimLeft  bool      // "-" right after the opening delimiter
	TrimRight bool      // "-" right before the closing delimiter
}

// String returns a human-readable representation of the token
func (t Token) String() string {
	return fmt.Sprintf("Token{%s: %q @ %s}", t.Kind, t.Value, t.Position)
}

// IsText returns true if this is a literal text token
func (t Token) IsText() bool {
	return t.Kind == TokenKindText
}

// IsOutput returns true if this is an output token
func (t Token) IsOutput() bool {
	return t.Kind == TokenKindOutput
}

// IsTag returns true if this is a tag token
func (t Token) IsTag() bool {
	return t.Kind == TokenKindTag
}

// NewTextToken creates a text token with the given content
func NewTextToken(content string, pos Position) Token {
	return Token{
		Kind:     TokenKindText,
		Value:    content,
		Position: pos,
		End:      pos.Offset + len(content),
	}
}
