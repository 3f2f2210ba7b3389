package internal

import (
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// ParserConfig holds parser configuration
type ParserConfig struct {
	MaxDepth int // Maximum block nesting depth (0 = unlimited)
}

// DefaultParserConfig returns the default parser configuration
func DefaultParserConfig() ParserConfig {
	return ParserConfig{MaxDepth: DefaultMaxDepth}
}

// Parser builds an AST from a token stream. Block tags are matched to their
// closing tags by recursive descent: each open block parses its body until
// it meets its own end tag, so nesting is tracked by the call stack.
type Parser struct {
	tokens []Token
	pos    int
	source string
	tags   *TagRegistry
	config ParserConfig
	depth  int
	logger *zap.Logger
}

// NewParser creates a parser. source must be the text the tokens were
// produced from; raw-mode bodies are cut from it.
func NewParser(tokens []Token, source string, tags *TagRegistry, config ParserConfig, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgParserCreated, zap.Int(LogFieldTokens, len(tokens)))
	return &Parser{
		tokens: tokens,
		source: source,
		tags:   tags,
		config: config,
		logger: logger,
	}
}

// Parse consumes all tokens and returns the AST root
func (p *Parser) Parse() (*RootNode, error) {
	p.logger.Debug(LogMsgParserStart)

	var children []Node
	for !p.isAtEnd() {
		node, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		if node != nil {
			children = append(children, node)
		}
	}

	root := &RootNode{Children: children}
	p.logger.Debug(LogMsgParserEnd, zap.Int(LogFieldNodes, CountNodes(children)))
	return root, nil
}

// parseNode parses the token at the cursor. Inline comments yield nil.
func (p *Parser) parseNode() (Node, error) {
	tok := p.advance()
	switch tok.Kind {
	case TokenKindText:
		return NewTextNode(tok.Value, tok.Position), nil
	case TokenKindOutput:
		return p.parseOutput(tok)
	default:
		return p.parseTag(tok)
	}
}

// parseOutput parses the expression of an output token. An empty output
// renders nothing.
func (p *Parser) parseOutput(tok Token) (Node, error) {
	if tok.Value == "" {
		return NewOutputNode(&LiteralNode{Value: nil}, tok.Position), nil
	}
	expr, err := ParseExpression(tok.Value)
	if err != nil {
		return nil, p.newExpressionError(tok, err)
	}
	return NewOutputNode(expr, tok.Position), nil
}

// parseTag parses a tag token, including the body of block tags
func (p *Parser) parseTag(tok Token) (Node, error) {
	if strings.HasPrefix(tok.Value, string(CharHash)) {
		return nil, nil
	}

	name, markup := SplitTagContent(tok.Value)
	if name == "" {
		return nil, &ParserError{Message: ErrMsgEmptyTag, Position: tok.Position}
	}

	handler, ok := p.tags.Get(name)
	if !ok {
		if p.tags.IsDelimiter(name) {
			return nil, &ParserError{Message: ErrMsgUnexpectedTag, Position: tok.Position, Tag: name}
		}
		return nil, &ParserError{
			Message:  ErrMsgUnknownTag,
			Position: tok.Position,
			Tag:      name,
			Detail:   FormatSuggestions(SuggestNames(name, p.tags.List(), MaxSuggestions)),
		}
	}

	node := NewTagNode(name, markup, tok.Position)
	spec := handler.Spec()
	if spec.IsBlock() {
		if p.config.MaxDepth > 0 && p.depth >= p.config.MaxDepth {
			return nil, &ParserError{Message: ErrMsgMaxDepthExceeded, Position: tok.Position, Tag: name}
		}
		var err error
		if spec.Raw {
			err = p.parseRawBody(node, spec, tok.End)
		} else {
			p.depth++
			err = p.parseBody(node, spec)
			p.depth--
		}
		if err != nil {
			return nil, err
		}
	}

	if err := handler.Parse(node); err != nil {
		return nil, p.newTagArgumentError(node, err)
	}
	return node, nil
}

// parseBody collects branches until the block's end tag
func (p *Parser) parseBody(open *TagNode, spec TagSpec) error {
	branch := &Branch{Name: open.Name, Markup: open.Markup, Pos: open.Pos()}

	for !p.isAtEnd() {
		tok := p.current()
		if tok.IsTag() {
			name, markup := SplitTagContent(tok.Value)
			if name == spec.End {
				p.advance()
				open.Branches = append(open.Branches, branch)
				return nil
			}
			if spec.HasBranch(name) {
				p.advance()
				open.Branches = append(open.Branches, branch)
				branch = &Branch{Name: name, Markup: markup, Pos: tok.Position}
				continue
			}
			if p.tags.IsEndTag(name) {
				err := p.newUnclosedTagError(open).(*ParserError)
				err.Detail = fmt.Sprintf(ErrFmtClosedBy, name, tok.Position)
				return err
			}
		}

		node, err := p.parseNode()
		if err != nil {
			return err
		}
		if node != nil {
			branch.Children = append(branch.Children, node)
		}
	}

	return p.newUnclosedTagError(open)
}

// parseRawBody keeps the untrimmed source between the opening tag and the
// end tag. Trim markers inside the body are text like any other.
func (p *Parser) parseRawBody(open *TagNode, spec TagSpec, start int) error {
	for !p.isAtEnd() {
		tok := p.advance()
		if !tok.IsTag() {
			continue
		}
		if name, _ := SplitTagContent(tok.Value); name == spec.End {
			open.RawBody = p.source[start:tok.Position.Offset]
			return nil
		}
	}

	return p.newUnclosedTagError(open)
}

// SplitTagContent splits tag content into the tag name and its markup
func SplitTagContent(content string) (string, string) {
	content = strings.TrimSpace(content)
	i := strings.IndexFunc(content, unicode.IsSpace)
	if i < 0 {
		return content, ""
	}
	return content[:i], strings.TrimSpace(content[i:])
}

// Helper methods

func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) isAtEnd() bool {
	return p.pos >= len(p.tokens)
}

func (p *Parser) newUnclosedTagError(open *TagNode) error {
	return &ParserError{
		Message:  ErrMsgUnclosedTag,
		Position: open.Pos(),
		Tag:      open.Name,
	}
}

// newExpressionError places an expression error at its offset in the source
func (p *Parser) newExpressionError(tok Token, err error) error {
	pos := tok.Position
	if exprErr, ok := err.(*ExprParseError); ok && tok.End <= len(p.source) {
		raw := p.source[tok.Position.Offset:tok.End]
		if i := strings.Index(raw, tok.Value); i >= 0 && i+exprErr.Pos <= len(raw) {
			pos = advancePosition(tok.Position, raw[:i+exprErr.Pos])
		}
	}
	return &ParserError{
		Message:  ErrMsgInvalidExpression,
		Position: pos,
		Cause:    err,
	}
}

func (p *Parser) newTagArgumentError(node *TagNode, err error) error {
	pos := node.Pos()
	if me, ok := err.(*MarkupError); ok {
		pos = me.Pos
	}
	return &ParserError{
		Message:  ErrMsgInvalidTagArguments,
		Position: pos,
		Tag:      node.Name,
		Cause:    err,
	}
}

// MarkupError is returned by tag handlers for invalid arguments on an
// intermediate branch tag, carrying that tag's position
type MarkupError struct {
	Pos   Position
	Cause error
}

func (e *MarkupError) Error() string { return e.Cause.Error() }

// Unwrap returns the underlying cause
func (e *MarkupError) Unwrap() error { return e.Cause }

// ParserError represents a syntax error found while building the AST
type ParserError struct {
	Message  string
	Position Position
	Tag      string
	Detail   string
	Cause    error
}

func (e *ParserError) Error() string {
	msg := e.Message
	if e.Tag != "" {
		msg += " '" + e.Tag + "'"
	}
	msg += e.Detail
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return fmt.Sprintf(ErrFmtWithPosition, msg, e.Position.String())
}

// Unwrap returns the underlying cause
func (e *ParserError) Unwrap() error {
	return e.Cause
}

// Parser error message constants
const (
	ErrFmtWithPosition        = "%s at %s"
	ErrFmtClosedBy            = " (closed by '%s' at %s)"
	ErrMsgEmptyTag            = "empty tag"
	ErrMsgUnknownTag          = "unknown tag"
	ErrMsgUnexpectedTag       = "unexpected tag"
	ErrMsgUnclosedTag         = "unclosed tag"
	ErrMsgInvalidExpression   = "invalid expression"
	ErrMsgInvalidTagArguments = "invalid tag arguments"
	ErrMsgMaxDepthExceeded    = "maximum nesting depth exceeded"
)
