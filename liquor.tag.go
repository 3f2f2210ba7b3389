package liquor

import (
	"io"
	"strings"

	"github.com/itsatony/go-liquor/internal"
	"go.uber.org/zap"
)

// Sink receives rendered text in source order.
type Sink = io.StringWriter

// Tag extension types. A TagHandler declares its grammar through Spec,
// parses its markup once at compile time in Parse, and writes output in
// Render. Render must not keep per-render state on the handler or node.
type (
	TagHandler  = internal.TagHandler
	TagSpec     = internal.TagSpec
	TagNode     = internal.TagNode
	Branch      = internal.Branch
	Node        = internal.Node
	RenderState = internal.RenderState
	Expression  = internal.ExprNode
)

// ParseExpression parses a value with an optional filter pipeline, as
// written inside {{ }}.
func ParseExpression(src string) (Expression, error) {
	return internal.ParseExpression(src)
}

// ParseCondition parses a condition as written after if or unless.
func ParseCondition(src string) (Expression, error) {
	return internal.ParseCondition(src)
}

// TagFunc renders a tag given the value of its markup expression. For
// block tags, body renders the tag's body into a sink.
type TagFunc func(state *RenderState, value any, body func(Sink) error, sink Sink) error

// NewTagFunc creates a leaf tag whose markup, if any, is one expression:
//
//	{% name expression %}
func NewTagFunc(name string, fn TagFunc) TagHandler {
	return &funcTag{spec: TagSpec{Name: name}, fn: fn}
}

// NewBlockTagFunc creates a block tag closed by "end" + name:
//
//	{% name expression %}body{% endname %}
func NewBlockTagFunc(name string, fn TagFunc) TagHandler {
	return &funcTag{spec: TagSpec{Name: name, End: "end" + name}, fn: fn}
}

type funcTag struct {
	spec TagSpec
	fn   TagFunc
}

func (t *funcTag) Spec() TagSpec { return t.spec }

func (t *funcTag) Parse(node *TagNode) error {
	if strings.TrimSpace(node.Markup) == "" {
		return nil
	}
	expr, err := internal.ParseExpression(node.Markup)
	if err != nil {
		return err
	}
	node.Args = expr
	return nil
}

func (t *funcTag) Render(state *RenderState, node *TagNode, sink Sink) error {
	var value any = internal.Undefined{}
	if expr, ok := node.Args.(Expression); ok {
		v, err := state.Evaluate(expr)
		if err != nil {
			return err
		}
		if v, err = state.ResolveDeep(v); err != nil {
			return err
		}
		value = v
	}

	body := func(out Sink) error {
		state.Scope.Push()
		defer state.Scope.Pop()
		return state.RenderBody(node.Body(), out)
	}
	return t.fn(state, value, body, sink)
}

// RegisterTag registers a custom tag. Built-in tags and earlier
// registrations keep their names; a collision is a registry error.
// Tags are resolved at compile time, so register them before compiling
// templates that use them.
func (e *Engine) RegisterTag(h TagHandler) error {
	if h == nil {
		return wrapRegistryError(internal.NewRegistryError(ErrMsgNilTagHandler, ""))
	}
	if err := e.tags.Register(h); err != nil {
		return wrapRegistryError(err)
	}
	e.logger.Debug(LogMsgTagRegistered, zap.String(LogFieldTag, h.Spec().Name))
	return nil
}

// MustRegisterTag registers a custom tag and panics on error.
func (e *Engine) MustRegisterTag(h TagHandler) {
	if err := e.RegisterTag(h); err != nil {
		panic(err)
	}
}

// HasTag checks if a tag is registered with the given name.
func (e *Engine) HasTag(name string) bool {
	return e.tags.Has(name)
}

// ListTags returns all registered tag names in sorted order.
func (e *Engine) ListTags() []string {
	return e.tags.List()
}
