package internal

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// forTag iterates a collection:
//
//	{% for item in items reversed limit: 2 offset: 1 %}...{% else %}...{% endfor %}
//
// Options apply as offset, then limit, then reversed, whatever order they
// are written in. The else branch renders when there is nothing to iterate.
type forTag struct{}

type forArgs struct {
	variable   string
	collection ExprNode
	limit      ExprNode
	offset     ExprNode
	reversed   bool
}

func (t *forTag) Spec() TagSpec {
	return TagSpec{Name: TagNameFor, End: TagNameEndFor, Branches: []string{TagNameElse}}
}

func (t *forTag) Parse(node *TagNode) error {
	p, err := NewExprParserFromString(node.Markup)
	if err != nil {
		return err
	}
	variable, err := p.ExpectIdentifier()
	if err != nil {
		return err
	}
	if !p.MatchWord(KeywordIn) {
		return NewExprParseError(ErrMsgForExpectedIn, p.Peek().Pos, p.Peek().Value)
	}
	collection, err := p.ParseValue()
	if err != nil {
		return err
	}
	args := &forArgs{variable: variable, collection: collection}

	for !p.AtEnd() {
		p.Match(ExprTokenTypeComma)
		tok := p.Peek()
		switch {
		case p.MatchWord(KeywordReversed):
			args.reversed = true
		case tok.Is(KeywordLimit) || tok.Is(KeywordOffset):
			p.MatchWord(tok.Value)
			if _, err := p.Expect(ExprTokenTypeColon); err != nil {
				return err
			}
			v, err := p.ParseValue()
			if err != nil {
				return err
			}
			if tok.Value == KeywordLimit {
				args.limit = v
			} else {
				args.offset = v
			}
		default:
			return NewExprParseError(ErrMsgForOption, tok.Pos, tok.Value)
		}
	}

	if len(node.Branches) > 2 {
		return branchError(2, node.Branches[2], NewExprParseError(ErrMsgElseNotLast, 0, ""))
	}
	node.Args = args
	return nil
}

func (t *forTag) Render(state *RenderState, node *TagNode, sink io.StringWriter) error {
	args := node.Args.(*forArgs)

	items, err := t.items(state, args)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		if len(node.Branches) > 1 {
			return state.RenderBody(node.Branches[1].Children, sink)
		}
		return nil
	}
	if max := state.MaxIterations(); max > 0 && len(items) > max {
		return &RenderError{Message: ErrMsgLoopTooLarge, Position: node.Pos(), Detail: fmt.Sprintf("%d", len(items))}
	}

	state.Logger().Debug(LogMsgForStart, zap.String(LogFieldTag, node.Name), zap.Int(LogFieldIterations, len(items)))

	var parent any
	if outer, ok := state.Scope.Get(ForloopVar); ok {
		parent = outer
	}
	name := args.variable + "-" + args.collection.String()
	body := node.Body()

	for i, item := range items {
		state.Scope.Push()
		state.Scope.Set(args.variable, item)
		state.Scope.Set(ForloopVar, forloop(i, len(items), name, parent))
		err := state.RenderBody(body, sink)
		state.Scope.Pop()
		if err != nil {
			return err
		}
		if state.takeInterrupt() == interruptBreak {
			break
		}
	}

	state.Logger().Debug(LogMsgForEnd, zap.String(LogFieldTag, node.Name))
	return nil
}

// items evaluates the collection and applies offset, limit and reversed.
// Values that are not iterable yield no items.
func (t *forTag) items(state *RenderState, args *forArgs) ([]any, error) {
	coll, err := state.Evaluate(args.collection)
	if err != nil {
		return nil, err
	}
	items, ok := Iterate(coll)
	if !ok {
		return nil, nil
	}

	if args.offset != nil {
		v, err := state.Evaluate(args.offset)
		if err != nil {
			return nil, err
		}
		if n, _ := ToInt(v); n > 0 {
			if n > len(items) {
				n = len(items)
			}
			items = items[n:]
		}
	}
	if args.limit != nil {
		v, err := state.Evaluate(args.limit)
		if err != nil {
			return nil, err
		}
		n, _ := ToInt(v)
		if n < 0 {
			n = 0
		}
		if n < len(items) {
			items = items[:n]
		}
	}
	if args.reversed {
		rev := make([]any, len(items))
		for i, item := range items {
			rev[len(items)-1-i] = item
		}
		items = rev
	}
	return items, nil
}

// forloop builds the loop metadata for iteration i of n
func forloop(i, n int, name string, parent any) map[string]any {
	return map[string]any{
		ForloopIndex:      i + 1,
		ForloopIndex0:     i,
		ForloopRindex:     n - i,
		ForloopRindex0:    n - i - 1,
		ForloopFirst:      i == 0,
		ForloopLast:       i == n-1,
		ForloopLength:     n,
		ForloopName:       name,
		ForloopParentloop: parent,
	}
}
