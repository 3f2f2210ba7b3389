package internal

import (
	"io"
	"path"
	"strings"
)

// assignTag binds "name = pipeline" in the template-global frame
type assignTag struct{}

type assignArgs struct {
	name string
	expr ExprNode
}

func (t *assignTag) Spec() TagSpec { return TagSpec{Name: TagNameAssign} }

func (t *assignTag) Parse(node *TagNode) error {
	p, err := NewExprParserFromString(node.Markup)
	if err != nil {
		return err
	}
	name, err := p.ExpectIdentifier()
	if err != nil {
		return err
	}
	if _, err := p.Expect(ExprTokenTypeAssign); err != nil {
		return err
	}
	expr, err := p.ParsePipeline()
	if err != nil {
		return err
	}
	if err := p.ExpectEnd(); err != nil {
		return err
	}
	node.Args = &assignArgs{name: name, expr: expr}
	return nil
}

func (t *assignTag) Render(state *RenderState, node *TagNode, _ io.StringWriter) error {
	args := node.Args.(*assignArgs)
	v, err := state.Evaluate(args.expr)
	if err != nil {
		return err
	}
	state.Scope.SetGlobal(args.name, v)
	return nil
}

// captureTag renders its body into a string bound in the enclosing frame
type captureTag struct{}

func (t *captureTag) Spec() TagSpec {
	return TagSpec{Name: TagNameCapture, End: TagNameEndCapture}
}

func (t *captureTag) Parse(node *TagNode) error {
	p, err := NewExprParserFromString(node.Markup)
	if err != nil {
		return err
	}
	var name string
	switch tok := p.Peek(); tok.Type {
	case ExprTokenTypeIdentifier:
		name, _ = p.ExpectIdentifier()
	case ExprTokenTypeString:
		p.Match(ExprTokenTypeString)
		name = tok.Literal.(string)
	default:
		return NewExprParseError(ErrMsgCaptureName, tok.Pos, tok.Value)
	}
	if err := p.ExpectEnd(); err != nil {
		return err
	}
	node.Args = name
	return nil
}

func (t *captureTag) Render(state *RenderState, node *TagNode, _ io.StringWriter) error {
	state.Scope.Push()
	text, err := state.Capture(node.Body())
	state.Scope.Pop()
	if err != nil {
		return err
	}
	state.Scope.Set(node.Args.(string), text)
	return nil
}

// echoTag outputs an expression, like {{ }} in tag form
type echoTag struct{}

func (t *echoTag) Spec() TagSpec { return TagSpec{Name: TagNameEcho} }

func (t *echoTag) Parse(node *TagNode) error {
	if node.Markup == "" {
		node.Args = &LiteralNode{}
		return nil
	}
	expr, err := ParseExpression(node.Markup)
	if err != nil {
		return err
	}
	node.Args = expr
	return nil
}

func (t *echoTag) Render(state *RenderState, node *TagNode, sink io.StringWriter) error {
	v, err := state.Evaluate(node.Args.(ExprNode))
	if err != nil {
		return err
	}
	if v, err = state.ResolveDeep(v); err != nil {
		return err
	}
	return state.write(sink, ToText(v))
}

// commentTag drops its body unparsed
type commentTag struct{}

func (t *commentTag) Spec() TagSpec {
	return TagSpec{Name: TagNameComment, End: TagNameEndComment, Raw: true}
}

func (t *commentTag) Parse(*TagNode) error { return nil }

func (t *commentTag) Render(*RenderState, *TagNode, io.StringWriter) error { return nil }

// rawTag outputs its body verbatim
type rawTag struct{}

func (t *rawTag) Spec() TagSpec {
	return TagSpec{Name: TagNameRaw, End: TagNameEndRaw, Raw: true}
}

func (t *rawTag) Parse(*TagNode) error { return nil }

func (t *rawTag) Render(state *RenderState, node *TagNode, sink io.StringWriter) error {
	return state.write(sink, node.RawBody)
}

// includeTag renders another named template:
//
//	{% include 'card' %}
//	{% include 'card' with product %}
//	{% include 'card', title: 'Hi', count: 3 %}
type includeTag struct{}

type includeArgs struct {
	target   ExprNode
	with     ExprNode
	bindings []FilterArg
}

func (t *includeTag) Spec() TagSpec { return TagSpec{Name: TagNameInclude} }

func (t *includeTag) Parse(node *TagNode) error {
	p, err := NewExprParserFromString(node.Markup)
	if err != nil {
		return err
	}
	if p.AtEnd() {
		return NewExprParseError(ErrMsgIncludeTarget, 0, "")
	}
	target, err := p.ParseValue()
	if err != nil {
		return err
	}
	args := &includeArgs{target: target}

	if p.MatchWord(KeywordWith) {
		if args.with, err = p.ParseValue(); err != nil {
			return err
		}
	}

	p.Match(ExprTokenTypeComma)
	for !p.AtEnd() {
		key, err := p.ExpectIdentifier()
		if err != nil {
			return err
		}
		if _, err := p.Expect(ExprTokenTypeColon); err != nil {
			return err
		}
		value, err := p.ParseValue()
		if err != nil {
			return err
		}
		args.bindings = append(args.bindings, FilterArg{Name: key, Value: value})
		if !p.Match(ExprTokenTypeComma) {
			break
		}
	}
	if err := p.ExpectEnd(); err != nil {
		return err
	}

	node.Args = args
	return nil
}

func (t *includeTag) Render(state *RenderState, node *TagNode, sink io.StringWriter) error {
	args := node.Args.(*includeArgs)

	target, err := state.Evaluate(args.target)
	if err != nil {
		return err
	}
	name := ToText(target)

	bindings := make(map[string]any, len(args.bindings)+1)
	if args.with != nil {
		v, err := state.Evaluate(args.with)
		if err != nil {
			return err
		}
		bindings[strings.TrimSuffix(path.Base(name), path.Ext(name))] = v
	}
	for _, b := range args.bindings {
		v, err := state.Evaluate(b.Value)
		if err != nil {
			return err
		}
		bindings[b.Name] = v
	}

	return state.Include(name, bindings, sink)
}

// loopControlTag implements break and continue
type loopControlTag struct {
	name   string
	signal interrupt
}

func (t *loopControlTag) Spec() TagSpec { return TagSpec{Name: t.name} }

func (t *loopControlTag) Parse(node *TagNode) error {
	if node.Markup != "" {
		return NewExprParseError(ErrMsgExprUnexpectedToken, 0, node.Markup)
	}
	return nil
}

func (t *loopControlTag) Render(state *RenderState, _ *TagNode, _ io.StringWriter) error {
	state.signal(t.signal)
	return nil
}

// Tag argument error messages
const (
	ErrMsgCaptureName    = "capture requires a variable name"
	ErrMsgIncludeTarget  = "include requires a template name"
	ErrMsgForExpectedIn  = "expected 'in' after loop variable"
	ErrMsgForOption      = "unknown loop option"
	ErrMsgElseNotLast    = "else must be the last branch"
	ErrMsgWhenValue      = "when requires at least one value"
	ErrMsgConditionEmpty = "condition required"
)
