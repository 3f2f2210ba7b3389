package internal

// ExprParser is a recursive descent parser for output expressions, filter
// pipelines and conditions. Tag handlers drive it directly to parse their
// own markup (for example "item in items limit: 3").
type ExprParser struct {
	tokens []ExprToken
	pos    int
}

// NewExprParser creates a new expression parser over a token stream
func NewExprParser(tokens []ExprToken) *ExprParser {
	return &ExprParser{tokens: tokens}
}

// NewExprParserFromString tokenizes src and returns a parser over it
func NewExprParserFromString(src string) (*ExprParser, error) {
	tokens, err := NewExprTokenizer(src).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewExprParser(tokens), nil
}

// ParseExpression tokenizes and parses a complete filter pipeline
func ParseExpression(src string) (ExprNode, error) {
	p, err := NewExprParserFromString(src)
	if err != nil {
		return nil, err
	}
	if p.AtEnd() {
		return nil, NewExprParseError(ErrMsgExprEmpty, 0, "")
	}
	expr, err := p.ParsePipeline()
	if err != nil {
		return nil, err
	}
	if err := p.ExpectEnd(); err != nil {
		return nil, err
	}
	return expr, nil
}

// ParseCondition tokenizes and parses a complete condition
func ParseCondition(src string) (ExprNode, error) {
	p, err := NewExprParserFromString(src)
	if err != nil {
		return nil, err
	}
	if p.AtEnd() {
		return nil, NewExprParseError(ErrMsgExprEmpty, 0, "")
	}
	expr, err := p.ParseCondition()
	if err != nil {
		return nil, err
	}
	if err := p.ExpectEnd(); err != nil {
		return nil, err
	}
	return expr, nil
}

// ParseCondition parses comparisons joined by and/or. Logical operators
// associate to the right: "a or b and c" is "a or (b and c)".
func (p *ExprParser) ParseCondition() (ExprNode, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	if p.Check(ExprTokenTypeIdentifier) && (p.Peek().Value == KeywordAnd || p.Peek().Value == KeywordOr) {
		op := p.advance().Value
		right, err := p.ParseCondition()
		if err != nil {
			return nil, err
		}
		return &ConditionNode{Op: op, Left: left, Right: right}, nil
	}

	return left, nil
}

// parseComparison parses "pipeline (op pipeline)?"
func (p *ExprParser) parseComparison() (ExprNode, error) {
	left, err := p.ParsePipeline()
	if err != nil {
		return nil, err
	}

	if p.Check(ExprTokenTypeCompare) || p.Peek().Is(KeywordContains) {
		op := p.advance().Value
		right, err := p.ParsePipeline()
		if err != nil {
			return nil, err
		}
		return &ConditionNode{Op: op, Left: left, Right: right}, nil
	}

	return left, nil
}

// ParsePipeline parses "value ('|' name (':' args)?)*"
func (p *ExprParser) ParsePipeline() (ExprNode, error) {
	base, err := p.ParseValue()
	if err != nil {
		return nil, err
	}

	var stages []FilterStage
	for p.Match(ExprTokenTypePipe) {
		if !p.Check(ExprTokenTypeIdentifier) {
			return nil, NewExprParseError(ErrMsgExprExpectedFilter, p.currentPos(), p.Peek().Value)
		}
		nameTok := p.advance()
		stage := FilterStage{Name: nameTok.Value, Pos: nameTok.Pos}

		if p.Match(ExprTokenTypeColon) {
			for {
				arg, err := p.parseFilterArg()
				if err != nil {
					return nil, err
				}
				stage.Args = append(stage.Args, arg)
				if !p.Match(ExprTokenTypeComma) {
					break
				}
			}
		}
		stages = append(stages, stage)
	}

	if len(stages) == 0 {
		return base, nil
	}
	return &FilterNode{Base: base, Stages: stages}, nil
}

// parseFilterArg parses a positional or "name: value" keyword argument
func (p *ExprParser) parseFilterArg() (FilterArg, error) {
	if p.Check(ExprTokenTypeIdentifier) && p.peekNext().Type == ExprTokenTypeColon {
		name := p.advance().Value
		p.advance()
		value, err := p.ParseValue()
		if err != nil {
			return FilterArg{}, err
		}
		return FilterArg{Name: name, Value: value}, nil
	}

	value, err := p.ParseValue()
	if err != nil {
		return FilterArg{}, err
	}
	return FilterArg{Value: value}, nil
}

// ParseValue parses a literal, a variable path or a range
func (p *ExprParser) ParseValue() (ExprNode, error) {
	switch {
	case p.Match(ExprTokenTypeString), p.Match(ExprTokenTypeNumber):
		return &LiteralNode{Value: p.previous().Literal}, nil

	case p.Match(ExprTokenTypeLParen):
		return p.parseRange()

	case p.Check(ExprTokenTypeLBracket):
		return p.parseVariable()

	case p.Check(ExprTokenTypeIdentifier):
		tok := p.Peek()
		next := p.peekNext().Type
		if next != ExprTokenTypeDot && next != ExprTokenTypeLBracket {
			if lit, ok := keywordLiteral(tok.Value); ok {
				p.advance()
				return lit, nil
			}
		}
		return p.parseVariable()
	}

	if p.AtEnd() {
		return nil, NewExprParseError(ErrMsgExprUnexpectedEnd, p.currentPos(), "")
	}
	return nil, NewExprParseError(ErrMsgExprExpectedValue, p.currentPos(), p.Peek().Value)
}

// parseRange parses "start..end)" after the opening parenthesis
func (p *ExprParser) parseRange() (ExprNode, error) {
	start, err := p.ParseValue()
	if err != nil {
		return nil, err
	}
	if _, err := p.Expect(ExprTokenTypeRange); err != nil {
		return nil, err
	}
	end, err := p.ParseValue()
	if err != nil {
		return nil, err
	}
	if !p.Match(ExprTokenTypeRParen) {
		return nil, NewExprParseError(ErrMsgExprUnclosedParen, p.currentPos(), "")
	}
	return &RangeNode{Start: start, End: end}, nil
}

// parseVariable parses "ident ('.' ident | '[' value ']')*"
func (p *ExprParser) parseVariable() (ExprNode, error) {
	var segments []PathSegment

	if p.Check(ExprTokenTypeIdentifier) {
		segments = append(segments, PathSegment{Name: p.advance().Value})
	} else {
		seg, err := p.parseBracket()
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}

	for {
		switch {
		case p.Match(ExprTokenTypeDot):
			switch {
			case p.Check(ExprTokenTypeIdentifier):
				segments = append(segments, PathSegment{Name: p.advance().Value})
			case p.Check(ExprTokenTypeNumber):
				segments = append(segments, PathSegment{Index: &LiteralNode{Value: p.advance().Literal}})
			default:
				return nil, NewExprParseError(ErrMsgExprExpectedIdent, p.currentPos(), p.Peek().Value)
			}
		case p.Check(ExprTokenTypeLBracket):
			seg, err := p.parseBracket()
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
		default:
			return &VariableNode{Segments: segments}, nil
		}
	}
}

// parseBracket parses "[ value ]"
func (p *ExprParser) parseBracket() (PathSegment, error) {
	open := p.advance()
	if p.AtEnd() {
		return PathSegment{}, NewExprParseError(ErrMsgExprUnclosedBracket, open.Pos, "")
	}
	index, err := p.ParseValue()
	if err != nil {
		return PathSegment{}, err
	}
	if !p.Match(ExprTokenTypeRBracket) {
		return PathSegment{}, NewExprParseError(ErrMsgExprUnclosedBracket, open.Pos, "")
	}
	return PathSegment{Index: index}, nil
}

// keywordLiteral maps literal keywords to their literal node
func keywordLiteral(word string) (*LiteralNode, bool) {
	switch word {
	case KeywordTrue:
		return &LiteralNode{Value: true}, true
	case KeywordFalse:
		return &LiteralNode{Value: false}, true
	case KeywordNil, KeywordNull:
		return &LiteralNode{Value: nil}, true
	case KeywordEmpty:
		return &LiteralNode{Value: Empty}, true
	case KeywordBlank:
		return &LiteralNode{Value: Blank}, true
	}
	return nil, false
}

// Helper methods, exported ones are used by tag handlers

// Match checks if the current token matches and advances if so
func (p *ExprParser) Match(tokenType ExprTokenType) bool {
	if p.Check(tokenType) {
		p.advance()
		return true
	}
	return false
}

// MatchWord consumes the current token if it is the identifier word
func (p *ExprParser) MatchWord(word string) bool {
	if p.Peek().Is(word) {
		p.advance()
		return true
	}
	return false
}

// Check returns true if the current token is of the given type
func (p *ExprParser) Check(tokenType ExprTokenType) bool {
	return p.Peek().Type == tokenType
}

// Expect consumes a token of the given type or fails
func (p *ExprParser) Expect(tokenType ExprTokenType) (ExprToken, error) {
	if p.Check(tokenType) {
		return p.advance(), nil
	}
	if p.AtEnd() {
		return ExprToken{}, NewExprParseError(ErrMsgExprUnexpectedEnd, p.currentPos(), string(tokenType))
	}
	return ExprToken{}, NewExprParseError(ErrMsgExprUnexpectedToken, p.currentPos(), p.Peek().Value)
}

// ExpectIdentifier consumes an identifier and returns its text
func (p *ExprParser) ExpectIdentifier() (string, error) {
	if !p.Check(ExprTokenTypeIdentifier) {
		return "", NewExprParseError(ErrMsgExprExpectedIdent, p.currentPos(), p.Peek().Value)
	}
	return p.advance().Value, nil
}

// ExpectEnd fails unless every token has been consumed
func (p *ExprParser) ExpectEnd() error {
	if !p.AtEnd() {
		return NewExprParseError(ErrMsgExprUnexpectedToken, p.currentPos(), p.Peek().Value)
	}
	return nil
}

// Peek returns the current token
func (p *ExprParser) Peek() ExprToken {
	if p.pos >= len(p.tokens) {
		return ExprToken{Type: ExprTokenTypeEOF, Pos: p.currentPos()}
	}
	return p.tokens[p.pos]
}

// AtEnd returns true if we've consumed all tokens
func (p *ExprParser) AtEnd() bool {
	return p.Peek().Type == ExprTokenTypeEOF
}

// peekNext returns the token after the current one
func (p *ExprParser) peekNext() ExprToken {
	if p.pos+1 >= len(p.tokens) {
		return ExprToken{Type: ExprTokenTypeEOF, Pos: p.currentPos()}
	}
	return p.tokens[p.pos+1]
}

// advance moves to the next token and returns the consumed one
func (p *ExprParser) advance() ExprToken {
	if !p.AtEnd() {
		p.pos++
	}
	return p.previous()
}

// previous returns the previous token
func (p *ExprParser) previous() ExprToken {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

// currentPos returns the current position for error reporting
func (p *ExprParser) currentPos() int {
	if p.pos >= len(p.tokens) {
		if len(p.tokens) > 0 {
			return p.tokens[len(p.tokens)-1].Pos
		}
		return 0
	}
	return p.tokens[p.pos].Pos
}
