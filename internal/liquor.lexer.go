package internal

import (
	"strings"

	"go.uber.org/zap"
)

// LexerConfig holds lexer configuration
type LexerConfig struct {
	OutputOpen  string // Output opening delimiter (default: "{{")
	OutputClose string // Output closing delimiter (default: "}}")
	TagOpen     string // Tag opening delimiter (default: "{%")
	TagClose    string // Tag closing delimiter (default: "%}")
	FirstLine   int    // Line number of the first source line (default: 1)
}

// DefaultLexerConfig returns the default lexer configuration
func DefaultLexerConfig() LexerConfig {
	return LexerConfig{
		OutputOpen:  StrOutputOpen,
		OutputClose: StrOutputClose,
		TagOpen:     StrTagOpen,
		TagClose:    StrTagClose,
		FirstLine:   1,
	}
}

// Lexer splits template source into text, output and tag tokens.
// It performs no interpretation of tag names or expressions.
type Lexer struct {
	source string
	config LexerConfig
	pos    int // Current byte position
	line   int // Current line (1-indexed)
	column int // Current column (1-indexed)
	logger *zap.Logger
}

// NewLexer creates a new lexer with default configuration
func NewLexer(source string, logger *zap.Logger) *Lexer {
	return NewLexerWithConfig(source, DefaultLexerConfig(), logger)
}

// NewLexerWithConfig creates a lexer with custom configuration
func NewLexerWithConfig(source string, config LexerConfig, logger *zap.Logger) *Lexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.FirstLine < 1 {
		config.FirstLine = 1
	}
	logger.Debug(LogMsgLexerCreated, zap.Int(LogFieldSource, len(source)))
	return &Lexer{
		source: source,
		config: config,
		line:   config.FirstLine,
		column: 1,
		logger: logger,
	}
}

// Tokenize processes the source and returns the token stream.
// The tokens cover the source with no gaps; whitespace control is
// applied separately by ApplyWhitespaceControl.
func (l *Lexer) Tokenize() ([]Token, error) {
	l.logger.Debug(LogMsgTokenizerStart)
	var tokens []Token

	for !l.isAtEnd() {
		kind, open, close := l.matchOpenDelim()
		if kind == "" {
			tokens = append(tokens, l.scanText())
			continue
		}
		tok, err := l.scanDelimited(kind, open, close)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}

	l.logger.Debug(LogMsgTokenizerEnd, zap.Int(LogFieldTokens, len(tokens)))
	return tokens, nil
}

// matchOpenDelim reports which delimiter pair opens at the current position.
// When both openers match, the longer one wins.
func (l *Lexer) matchOpenDelim() (TokenKind, string, string) {
	out := l.matchStr(l.config.OutputOpen)
	tag := l.matchStr(l.config.TagOpen)
	switch {
	case out && tag:
		if len(l.config.TagOpen) > len(l.config.OutputOpen) {
			return TokenKindTag, l.config.TagOpen, l.config.TagClose
		}
		return TokenKindOutput, l.config.OutputOpen, l.config.OutputClose
	case out:
		return TokenKindOutput, l.config.OutputOpen, l.config.OutputClose
	case tag:
		return TokenKindTag, l.config.TagOpen, l.config.TagClose
	}
	return "", "", ""
}

// scanText consumes literal text up to the next opening delimiter
func (l *Lexer) scanText() Token {
	start := l.currentPosition()
	rest := l.source[l.pos:]

	n := len(rest)
	if i := strings.Index(rest, l.config.OutputOpen); i >= 0 && i < n {
		n = i
	}
	if i := strings.Index(rest, l.config.TagOpen); i >= 0 && i < n {
		n = i
	}
	l.advanceN(n)

	return NewTextToken(l.source[start.Offset:l.pos], start)
}

// scanDelimited consumes an output or tag token including both delimiters
func (l *Lexer) scanDelimited(kind TokenKind, open, close string) (Token, error) {
	start := l.currentPosition()
	l.advanceN(len(open))

	tok := Token{Kind: kind, Position: start}
	if l.matchStr(StrTrimMarker) {
		tok.TrimLeft = true
		l.advance()
	}

	contentStart := l.pos
	for {
		if l.isAtEnd() {
			return Token{}, l.newUnterminatedError(kind, start)
		}

		ch := l.peek()
		if ch == CharDoubleQuote || ch == CharSingleQuote {
			if end := l.findClosingQuote(ch); end >= 0 {
				l.advanceN(end - l.pos + 1)
				continue
			}
		}

		if l.matchStr(StrTrimMarker + close) {
			tok.Value = strings.TrimSpace(l.source[contentStart:l.pos])
			tok.TrimRight = true
			l.advanceN(len(StrTrimMarker) + len(close))
			break
		}
		if l.matchStr(close) {
			tok.Value = strings.TrimSpace(l.source[contentStart:l.pos])
			l.advanceN(len(close))
			break
		}
		l.advance()
	}

	tok.End = l.pos
	return tok, nil
}

// findClosingQuote returns the offset of the quote closing the string that
// starts at the current position, or -1 if the string never closes. An
// unclosed quote is then treated as an ordinary character.
func (l *Lexer) findClosingQuote(quote byte) int {
	for i := l.pos + 1; i < len(l.source); i++ {
		switch l.source[i] {
		case CharBackslash:
			i++
		case quote:
			return i
		}
	}
	return -1
}

// Helper methods

// currentPosition returns the current position
func (l *Lexer) currentPosition() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

// isAtEnd returns true if we've reached the end of source
func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

// peek returns the current character without advancing
func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

// advance consumes and returns the current character
func (l *Lexer) advance() byte {
	if l.isAtEnd() {
		return 0
	}
	ch := l.source[l.pos]
	l.pos++
	if ch == CharNewline {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

// advanceN advances by n characters
func (l *Lexer) advanceN(n int) {
	for i := 0; i < n && !l.isAtEnd(); i++ {
		l.advance()
	}
}

// matchStr returns true if the remaining source starts with s
func (l *Lexer) matchStr(s string) bool {
	return s != "" && strings.HasPrefix(l.source[l.pos:], s)
}

func (l *Lexer) newUnterminatedError(kind TokenKind, start Position) error {
	msg := ErrMsgUnterminatedTag
	if kind == TokenKindOutput {
		msg = ErrMsgUnterminatedOutput
	}
	return &LexerError{
		Message:  msg,
		Position: start,
	}
}

// LexerError represents a lexer error with position
type LexerError struct {
	Message  string
	Position Position
}

func (e *LexerError) Error() string {
	return e.Message + " at " + e.Position.String()
}

// Error message constants for lexer
const (
	ErrMsgUnterminatedTag    = "unterminated tag"
	ErrMsgUnterminatedOutput = "unterminated output"
)
