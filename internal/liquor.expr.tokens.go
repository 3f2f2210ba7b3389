package internal

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ExprTokenType represents the type of an expression token
type ExprTokenType string

// Expression token type constants
const (
	ExprTokenTypeIdentifier ExprTokenType = "IDENT"
	ExprTokenTypeString     ExprTokenType = "STRING"
	ExprTokenTypeNumber     ExprTokenType = "NUMBER"
	ExprTokenTypeDot        ExprTokenType = "DOT"
	ExprTokenTypeRange      ExprTokenType = "RANGE"
	ExprTokenTypePipe       ExprTokenType = "PIPE"
	ExprTokenTypeColon      ExprTokenType = "COLON"
	ExprTokenTypeComma      ExprTokenType = "COMMA"
	ExprTokenTypeAssign     ExprTokenType = "ASSIGN"
	ExprTokenTypeLBracket   ExprTokenType = "LBRACKET"
	ExprTokenTypeRBracket   ExprTokenType = "RBRACKET"
	ExprTokenTypeLParen     ExprTokenType = "LPAREN"
	ExprTokenTypeRParen     ExprTokenType = "RPAREN"
	ExprTokenTypeCompare    ExprTokenType = "COMPARE"
	ExprTokenTypeEOF        ExprTokenType = "EOF"
)

// Comparison operators
const (
	ExprOpEq  = "=="
	ExprOpNeq = "!="
	ExprOpLtg = "<>"
	ExprOpLt  = "<"
	ExprOpGt  = ">"
	ExprOpLte = "<="
	ExprOpGte = ">="
)

// ExprToken represents a token in an expression
type ExprToken struct {
	Type    ExprTokenType
	Value   string
	Pos     int
	Literal any // Parsed value for string and number literals
}

// String returns the string representation of the token
func (t ExprToken) String() string {
	if t.Value != "" {
		return fmt.Sprintf("%s(%s)", t.Type, t.Value)
	}
	return string(t.Type)
}

// Is reports whether the token is an identifier with the given text
func (t ExprToken) Is(word string) bool {
	return t.Type == ExprTokenTypeIdentifier && t.Value == word
}

// ExprTokenizer tokenizes expression strings
type ExprTokenizer struct {
	input string
	pos   int
	len   int
}

// NewExprTokenizer creates a new expression tokenizer
func NewExprTokenizer(input string) *ExprTokenizer {
	return &ExprTokenizer{
		input: input,
		len:   len(input),
	}
}

// Tokenize converts the input string into a slice of tokens ending in EOF
func (t *ExprTokenizer) Tokenize() ([]ExprToken, error) {
	var tokens []ExprToken

	for {
		t.skipWhitespace()

		if t.pos >= t.len {
			tokens = append(tokens, ExprToken{Type: ExprTokenTypeEOF, Pos: t.pos})
			break
		}

		token, err := t.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}

	return tokens, nil
}

// nextToken reads the next token from the input
func (t *ExprTokenizer) nextToken() (ExprToken, error) {
	startPos := t.pos
	ch := t.peek()

	if ch == CharDoubleQuote || ch == CharSingleQuote {
		return t.readString()
	}

	if isDigit(ch) || (ch == CharDash && isDigit(t.peekAt(1))) {
		return t.readNumber()
	}

	if isIdentStart(ch) {
		return t.readIdentifier(), nil
	}

	if t.pos+1 < t.len {
		twoChar := t.input[t.pos : t.pos+2]
		switch twoChar {
		case "..":
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeRange, Value: twoChar, Pos: startPos}, nil
		case ExprOpEq, ExprOpNeq, ExprOpLtg, ExprOpLte, ExprOpGte:
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeCompare, Value: twoChar, Pos: startPos}, nil
		}
	}

	t.pos++
	switch ch {
	case '.':
		return ExprToken{Type: ExprTokenTypeDot, Value: ".", Pos: startPos}, nil
	case '|':
		return ExprToken{Type: ExprTokenTypePipe, Value: "|", Pos: startPos}, nil
	case ':':
		return ExprToken{Type: ExprTokenTypeColon, Value: ":", Pos: startPos}, nil
	case ',':
		return ExprToken{Type: ExprTokenTypeComma, Value: ",", Pos: startPos}, nil
	case '=':
		return ExprToken{Type: ExprTokenTypeAssign, Value: "=", Pos: startPos}, nil
	case '[':
		return ExprToken{Type: ExprTokenTypeLBracket, Value: "[", Pos: startPos}, nil
	case ']':
		return ExprToken{Type: ExprTokenTypeRBracket, Value: "]", Pos: startPos}, nil
	case '(':
		return ExprToken{Type: ExprTokenTypeLParen, Value: "(", Pos: startPos}, nil
	case ')':
		return ExprToken{Type: ExprTokenTypeRParen, Value: ")", Pos: startPos}, nil
	case '<':
		return ExprToken{Type: ExprTokenTypeCompare, Value: ExprOpLt, Pos: startPos}, nil
	case '>':
		return ExprToken{Type: ExprTokenTypeCompare, Value: ExprOpGt, Pos: startPos}, nil
	}

	return ExprToken{}, NewExprParseError(ErrMsgExprUnexpectedChar, startPos, string(ch))
}

// readString reads a single or double quoted string literal
func (t *ExprTokenizer) readString() (ExprToken, error) {
	startPos := t.pos
	quote := t.input[t.pos]
	t.pos++

	var sb strings.Builder
	for t.pos < t.len {
		ch := t.input[t.pos]
		if ch == quote {
			t.pos++
			value := sb.String()
			return ExprToken{
				Type:    ExprTokenTypeString,
				Value:   value,
				Pos:     startPos,
				Literal: value,
			}, nil
		}
		if ch == CharBackslash && t.pos+1 < t.len {
			t.pos++
			switch escaped := t.input[t.pos]; escaped {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(escaped)
			}
			t.pos++
			continue
		}
		sb.WriteByte(ch)
		t.pos++
	}

	return ExprToken{}, NewExprParseError(ErrMsgExprUnterminatedStr, startPos, "")
}

// readNumber reads an integer or decimal literal. A dot followed by a
// second dot belongs to a range, not to the number.
func (t *ExprTokenizer) readNumber() (ExprToken, error) {
	startPos := t.pos
	if t.peek() == CharDash {
		t.pos++
	}
	hasDecimal := false

	for t.pos < t.len {
		ch := t.input[t.pos]
		if ch == CharDot && !hasDecimal && isDigit(t.peekAt(1)) {
			hasDecimal = true
			t.pos++
			continue
		}
		if !isDigit(ch) {
			break
		}
		t.pos++
	}

	value := t.input[startPos:t.pos]
	if hasDecimal {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return ExprToken{}, NewExprParseError(ErrMsgExprInvalidNumber, startPos, value)
		}
		return ExprToken{Type: ExprTokenTypeNumber, Value: value, Pos: startPos, Literal: f}, nil
	}

	i, err := strconv.Atoi(value)
	if err != nil {
		f, ferr := strconv.ParseFloat(value, 64)
		if ferr != nil {
			return ExprToken{}, NewExprParseError(ErrMsgExprInvalidNumber, startPos, value)
		}
		return ExprToken{Type: ExprTokenTypeNumber, Value: value, Pos: startPos, Literal: f}, nil
	}
	return ExprToken{Type: ExprTokenTypeNumber, Value: value, Pos: startPos, Literal: i}, nil
}

// readIdentifier reads an identifier. Keywords are identifiers too and are
// told apart by the parser.
func (t *ExprTokenizer) readIdentifier() ExprToken {
	startPos := t.pos
	for t.pos < t.len && isIdentPart(t.input[t.pos]) {
		t.pos++
	}
	return ExprToken{Type: ExprTokenTypeIdentifier, Value: t.input[startPos:t.pos], Pos: startPos}
}

// peek returns the current character without advancing
func (t *ExprTokenizer) peek() byte {
	return t.peekAt(0)
}

// peekAt returns the character n bytes ahead without advancing
func (t *ExprTokenizer) peekAt(n int) byte {
	if t.pos+n >= t.len {
		return 0
	}
	return t.input[t.pos+n]
}

// skipWhitespace skips whitespace characters
func (t *ExprTokenizer) skipWhitespace() {
	for t.pos < t.len && unicode.IsSpace(rune(t.input[t.pos])) {
		t.pos++
	}
}

// Character classification helpers

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == CharUnderscore || ch >= 0x80
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == CharDash || ch == CharQuestion
}

// ExprParseError represents an error while tokenizing or parsing an
// expression. Pos is a byte offset into the expression text.
type ExprParseError struct {
	Message string
	Pos     int
	Detail  string
}

// NewExprParseError creates a new expression parse error
func NewExprParseError(message string, pos int, detail string) *ExprParseError {
	return &ExprParseError{
		Message: message,
		Pos:     pos,
		Detail:  detail,
	}
}

// Error implements the error interface
func (e *ExprParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s at position %d: %s", e.Message, e.Pos, e.Detail)
	}
	return fmt.Sprintf("%s at position %d", e.Message, e.Pos)
}

// Expression error messages
const (
	ErrMsgExprUnexpectedChar  = "unexpected character"
	ErrMsgExprUnterminatedStr = "unterminated string literal"
	ErrMsgExprInvalidNumber   = "invalid number format"
	ErrMsgExprUnexpectedToken = "unexpected token"
	ErrMsgExprUnexpectedEnd   = "unexpected end of expression"
	ErrMsgExprExpectedIdent   = "expected identifier"
	ErrMsgExprExpectedValue   = "expected value"
	ErrMsgExprExpectedFilter  = "expected filter name after pipe"
	ErrMsgExprUnclosedBracket = "unclosed bracket"
	ErrMsgExprUnclosedParen   = "unclosed parenthesis"
	ErrMsgExprEmpty           = "empty expression"
)
