package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// Pending is a value whose computation may not have finished. It can stand
// anywhere a value can: in render data, nested in maps and arrays, or as a
// filter result.
type Pending interface {
	Await(ctx context.Context) (any, error)
}

// LeafResolver decides what happens when evaluation meets a Pending value.
// It is the only difference between synchronous and asynchronous rendering;
// the traversal itself is shared.
type LeafResolver interface {
	Resolve(ctx context.Context, v any) (any, error)
	Mode() string
}

// ErrPendingInSync is returned when a synchronous render meets a Pending value
var ErrPendingInSync = errors.New(ErrMsgPendingInSync)

type syncLeaves struct{}

// SyncLeaves returns the resolver for synchronous rendering: a Pending
// value is an error
func SyncLeaves() LeafResolver { return syncLeaves{} }

func (syncLeaves) Resolve(_ context.Context, v any) (any, error) {
	if _, ok := v.(Pending); ok {
		return nil, ErrPendingInSync
	}
	return v, nil
}

func (syncLeaves) Mode() string { return RenderModeSync }

type asyncLeaves struct{}

// AsyncLeaves returns the resolver for asynchronous rendering: a Pending
// value is awaited in place, suspending the traversal
func AsyncLeaves() LeafResolver { return asyncLeaves{} }

func (asyncLeaves) Resolve(ctx context.Context, v any) (any, error) {
	for {
		p, ok := v.(Pending)
		if !ok {
			return v, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		if v, err = p.Await(ctx); err != nil {
			return nil, err
		}
	}
}

func (asyncLeaves) Mode() string { return RenderModeAsync }

// TemplateLoader supplies compiled named templates to the include tag
type TemplateLoader interface {
	LoadTemplate(ctx context.Context, name string) (*RootNode, error)
}

// RendererConfig holds renderer configuration
type RendererConfig struct {
	MaxDepth      int  // Maximum body nesting depth (0 = unlimited)
	MaxIterations int  // Maximum iterations of one loop or range (0 = unlimited)
	StrictFilters bool // Unknown filters fail instead of passing the value through
}

// DefaultRendererConfig returns the default renderer configuration
func DefaultRendererConfig() RendererConfig {
	return RendererConfig{
		MaxDepth:      DefaultMaxDepth,
		MaxIterations: DefaultMaxIterations,
	}
}

// Renderer walks compiled ASTs. It holds no per-render state, so one
// renderer serves any number of concurrent renders.
type Renderer struct {
	filters *FilterRegistry
	tags    *TagRegistry
	config  RendererConfig
	logger  *zap.Logger
}

// NewRenderer creates a renderer over the given registries
func NewRenderer(filters *FilterRegistry, tags *TagRegistry, config RendererConfig, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgRendererCreated)
	return &Renderer{
		filters: filters,
		tags:    tags,
		config:  config,
		logger:  logger,
	}
}

// Render writes the output of root to sink. Output is produced strictly in
// source order. On failure, whatever was written before the failing node
// stays in the sink.
func (r *Renderer) Render(ctx context.Context, root *RootNode, scope *Scope, leaves LeafResolver, loader TemplateLoader, sink io.StringWriter) error {
	r.logger.Debug(LogMsgRenderStart, zap.String(LogFieldMode, leaves.Mode()))

	state := &RenderState{
		Ctx:      ctx,
		Scope:    scope,
		renderer: r,
		leaves:   leaves,
		loader:   loader,
	}
	if err := state.RenderNodes(root.Children, sink); err != nil {
		r.logger.Debug(LogMsgRenderFailed, zap.Error(err))
		return err
	}

	r.logger.Debug(LogMsgRenderEnd, zap.String(LogFieldMode, leaves.Mode()))
	return nil
}

// interrupt signals raised by break and continue
type interrupt int

const (
	interruptNone interrupt = iota
	interruptBreak
	interruptContinue
)

// RenderState is the state of one render invocation, handed to tag handlers
type RenderState struct {
	Ctx   context.Context
	Scope *Scope

	renderer  *Renderer
	leaves    LeafResolver
	loader    TemplateLoader
	depth     int
	pos       Position
	interrupt interrupt
}

// Logger returns the renderer logger
func (s *RenderState) Logger() *zap.Logger {
	return s.renderer.logger
}

// MaxIterations returns the configured loop iteration cap
func (s *RenderState) MaxIterations() int {
	return s.renderer.config.MaxIterations
}

// RenderNodes renders nodes in order into sink. Rendering stops early,
// without error, once break or continue has been signalled.
func (s *RenderState) RenderNodes(nodes []Node, sink io.StringWriter) error {
	for _, node := range nodes {
		if err := s.Ctx.Err(); err != nil {
			return &RenderError{Message: ErrMsgRenderCancelled, Position: node.Pos(), Cause: err}
		}
		if err := s.renderNode(node, sink); err != nil {
			return err
		}
		if s.interrupt != interruptNone {
			return nil
		}
	}
	return nil
}

// RenderBody renders a nested body one level deeper, enforcing MaxDepth
func (s *RenderState) RenderBody(nodes []Node, sink io.StringWriter) error {
	if max := s.renderer.config.MaxDepth; max > 0 && s.depth >= max {
		return &RenderError{Message: ErrMsgMaxDepthExceeded, Position: s.pos}
	}
	s.depth++
	defer func() { s.depth-- }()
	return s.RenderNodes(nodes, sink)
}

// Capture renders nodes one level deeper into a string instead of the sink
func (s *RenderState) Capture(nodes []Node) (string, error) {
	var sb strings.Builder
	if err := s.RenderBody(nodes, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Include renders the named template from the loader in a new frame
// holding bindings. Assignments made by the included template remain
// visible afterwards.
func (s *RenderState) Include(name string, bindings map[string]any, sink io.StringWriter) error {
	if s.loader == nil {
		return &RenderError{Message: ErrMsgNoLoader, Tag: TagNameInclude, Position: s.pos, Detail: name}
	}
	root, err := s.loader.LoadTemplate(s.Ctx, name)
	if err != nil {
		return &RenderError{Message: ErrMsgIncludeFailed, Tag: TagNameInclude, Position: s.pos, Detail: name, Cause: err}
	}
	s.renderer.logger.Debug(LogMsgTemplateIncluded, zap.String(LogFieldTemplate, name), zap.Int(LogFieldDepth, s.depth))

	s.Scope.Push()
	defer s.Scope.Pop()
	for k, v := range bindings {
		s.Scope.Set(k, v)
	}
	return s.RenderBody(root.Children, sink)
}

// signal records a break or continue for the innermost loop
func (s *RenderState) signal(i interrupt) {
	s.interrupt = i
}

// takeInterrupt returns and clears the pending loop signal
func (s *RenderState) takeInterrupt() interrupt {
	i := s.interrupt
	s.interrupt = interruptNone
	return i
}

// renderNode renders a single node
func (s *RenderState) renderNode(node Node, sink io.StringWriter) error {
	s.pos = node.Pos()

	switch n := node.(type) {
	case *TextNode:
		return s.write(sink, n.Content)

	case *OutputNode:
		v, err := s.Evaluate(n.Expr)
		if err != nil {
			return err
		}
		if v, err = s.ResolveDeep(v); err != nil {
			return err
		}
		return s.write(sink, ToText(v))

	case *TagNode:
		return s.renderTag(n, sink)
	}

	return &RenderError{Message: ErrMsgUnknownNodeType, Position: node.Pos()}
}

// renderTag dispatches to the tag handler registered under the node's name
func (s *RenderState) renderTag(n *TagNode, sink io.StringWriter) error {
	s.renderer.logger.Debug(LogMsgTagInvoked, zap.String(LogFieldTag, n.Name), zap.Int(LogFieldLine, n.Pos().Line))

	handler, ok := s.renderer.tags.Get(n.Name)
	if !ok {
		return &RenderError{Message: ErrMsgUnknownTag, Tag: n.Name, Position: n.Pos()}
	}

	if err := handler.Render(s, n, sink); err != nil {
		var re *RenderError
		if errors.As(err, &re) {
			if re.Tag == "" {
				re.Tag = n.Name
			}
			return err
		}
		return &RenderError{Message: ErrMsgTagFailed, Tag: n.Name, Position: n.Pos(), Cause: err}
	}
	return nil
}

func (s *RenderState) write(sink io.StringWriter, text string) error {
	if text == "" {
		return nil
	}
	if _, err := sink.WriteString(text); err != nil {
		return &RenderError{Message: ErrMsgSinkWrite, Position: s.pos, Cause: err}
	}
	return nil
}

// Resolve passes v through the leaf resolver of this render
func (s *RenderState) Resolve(v any) (any, error) {
	out, err := s.leaves.Resolve(s.Ctx, v)
	if err != nil {
		return nil, &RenderError{Message: ErrMsgPendingFailed, Position: s.pos, Cause: err}
	}
	return out, nil
}

// ResolveDeep resolves v and every Pending nested in []any and
// map[string]any values below it. Containers holding a Pending are copied;
// the originals are left untouched.
func (s *RenderState) ResolveDeep(v any) (any, error) {
	out, _, err := s.resolveNested(v, 0)
	return out, err
}

// resolveNested reports whether anything below v was replaced
func (s *RenderState) resolveNested(v any, depth int) (any, bool, error) {
	_, changed := v.(Pending)
	v, err := s.Resolve(v)
	if err != nil {
		return nil, false, err
	}
	if depth >= MaxResolveDepth {
		return v, changed, nil
	}

	switch c := v.(type) {
	case []any:
		var out []any
		for i, elem := range c {
			r, ch, err := s.resolveNested(elem, depth+1)
			if err != nil {
				return nil, false, err
			}
			if ch && out == nil {
				out = make([]any, len(c))
				copy(out, c[:i])
			}
			if out != nil {
				out[i] = r
			}
		}
		if out != nil {
			return out, true, nil
		}
	case map[string]any:
		var replaced map[string]any
		for k, elem := range c {
			r, ch, err := s.resolveNested(elem, depth+1)
			if err != nil {
				return nil, false, err
			}
			if ch {
				if replaced == nil {
					replaced = make(map[string]any)
				}
				replaced[k] = r
			}
		}
		if replaced != nil {
			out := make(map[string]any, len(c))
			for k, elem := range c {
				out[k] = elem
			}
			for k, r := range replaced {
				out[k] = r
			}
			return out, true, nil
		}
	}
	return v, changed, nil
}

// Evaluate computes the value of an expression against the scope
func (s *RenderState) Evaluate(expr ExprNode) (any, error) {
	switch e := expr.(type) {
	case *LiteralNode:
		return e.Value, nil
	case *VariableNode:
		return s.evalVariable(e)
	case *RangeNode:
		return s.evalRange(e)
	case *FilterNode:
		return s.evalFilter(e)
	case *ConditionNode:
		return s.evalCondition(e)
	case nil:
		return nil, nil
	}
	return nil, &RenderError{Message: ErrMsgUnknownExpression, Position: s.pos, Detail: expr.String()}
}

// EvaluateTruthy evaluates expr and applies template truthiness
func (s *RenderState) EvaluateTruthy(expr ExprNode) (bool, error) {
	v, err := s.Evaluate(expr)
	if err != nil {
		return false, err
	}
	return IsTruthy(v), nil
}

func (s *RenderState) evalVariable(e *VariableNode) (any, error) {
	var v any
	for i, seg := range e.Segments {
		var key any = seg.Name
		if seg.Index != nil {
			k, err := s.Evaluate(seg.Index)
			if err != nil {
				return nil, err
			}
			key = k
		}

		if i == 0 {
			v = s.Scope.Lookup(ToText(key))
		} else {
			v = Property(v, key)
		}

		var err error
		if v, err = s.Resolve(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (s *RenderState) evalRange(e *RangeNode) (any, error) {
	startVal, err := s.Evaluate(e.Start)
	if err != nil {
		return nil, err
	}
	endVal, err := s.Evaluate(e.End)
	if err != nil {
		return nil, err
	}
	start, _ := ToInt(startVal)
	end, _ := ToInt(endVal)
	if end < start {
		return []any{}, nil
	}

	count := end - start + 1
	if max := s.MaxIterations(); max > 0 && count > max {
		return nil, &RenderError{Message: ErrMsgRangeTooLarge, Position: s.pos, Detail: fmt.Sprintf("%d", count)}
	}
	out := make([]any, count)
	for i := range out {
		out[i] = start + i
	}
	return out, nil
}

func (s *RenderState) evalFilter(e *FilterNode) (any, error) {
	v, err := s.Evaluate(e.Base)
	if err != nil {
		return nil, err
	}

	for _, stage := range e.Stages {
		if v, err = s.ResolveDeep(v); err != nil {
			return nil, err
		}
		args := make([]any, len(stage.Args))
		for i, arg := range stage.Args {
			av, err := s.Evaluate(arg.Value)
			if err != nil {
				return nil, err
			}
			if av, err = s.ResolveDeep(av); err != nil {
				return nil, err
			}
			if arg.Name != "" {
				args[i] = KeywordArg{Name: arg.Name, Value: av}
			} else {
				args[i] = av
			}
		}

		filter, ok := s.renderer.filters.Get(stage.Name)
		if !ok {
			if s.renderer.config.StrictFilters {
				return nil, &RenderError{
					Message:  ErrMsgUnknownFilter,
					Filter:   stage.Name,
					Position: s.pos,
					Detail:   FormatSuggestions(SuggestNames(stage.Name, s.renderer.filters.List(), MaxSuggestions)),
				}
			}
			s.renderer.logger.Warn(LogMsgFilterMissing, zap.String(LogFieldFilter, stage.Name), zap.Int(LogFieldLine, s.pos.Line))
			continue
		}

		out, err := filter.Call(v, args)
		if err != nil {
			return nil, &RenderError{Message: ErrMsgFilterFailed, Filter: stage.Name, Position: s.pos, Cause: err}
		}
		if v, err = s.Resolve(out); err != nil {
			var re *RenderError
			if errors.As(err, &re) {
				re.Filter = stage.Name
			}
			return nil, err
		}
	}
	return v, nil
}

func (s *RenderState) evalCondition(e *ConditionNode) (any, error) {
	switch e.Op {
	case KeywordAnd, KeywordOr:
		left, err := s.EvaluateTruthy(e.Left)
		if err != nil {
			return nil, err
		}
		if e.Op == KeywordAnd && !left {
			return false, nil
		}
		if e.Op == KeywordOr && left {
			return true, nil
		}
		return s.EvaluateTruthy(e.Right)
	}

	left, err := s.Evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	if left, err = s.ResolveDeep(left); err != nil {
		return nil, err
	}
	right, err := s.Evaluate(e.Right)
	if err != nil {
		return nil, err
	}
	if right, err = s.ResolveDeep(right); err != nil {
		return nil, err
	}
	return CompareValues(e.Op, left, right), nil
}

// CompareValues applies a comparison operator. Incomparable operands
// compare false.
func CompareValues(op string, left, right any) bool {
	switch op {
	case ExprOpEq:
		return Equal(left, right)
	case ExprOpNeq, ExprOpLtg:
		return !Equal(left, right)
	case KeywordContains:
		return Contains(left, right)
	}

	c, ok := Compare(left, right)
	if !ok {
		return false
	}
	switch op {
	case ExprOpLt:
		return c < 0
	case ExprOpGt:
		return c > 0
	case ExprOpLte:
		return c <= 0
	case ExprOpGte:
		return c >= 0
	}
	return false
}

// RenderError is a failure during rendering. Lookup misses never produce
// one; they evaluate to Undefined.
type RenderError struct {
	Message  string
	Tag      string
	Filter   string
	Position Position
	Detail   string
	Cause    error
}

func (e *RenderError) Error() string {
	msg := e.Message
	if e.Filter != "" {
		msg += " '" + e.Filter + "'"
	}
	if e.Tag != "" {
		msg += " in tag '" + e.Tag + "'"
	}
	if e.Detail != "" {
		if strings.HasPrefix(e.Detail, ".") {
			msg += e.Detail
		} else {
			msg += ": " + e.Detail
		}
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return fmt.Sprintf(ErrFmtWithPosition, msg, e.Position.String())
}

// Unwrap returns the underlying cause
func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Renderer error messages
const (
	ErrMsgPendingInSync     = "pending value in synchronous render"
	ErrMsgPendingFailed     = "value resolution failed"
	ErrMsgRenderCancelled   = "render cancelled"
	ErrMsgUnknownNodeType   = "unknown node type"
	ErrMsgUnknownExpression = "unknown expression type"
	ErrMsgUnknownFilter     = "unknown filter"
	ErrMsgFilterFailed      = "filter failed"
	ErrMsgTagFailed         = "tag failed"
	ErrMsgSinkWrite         = "writing output failed"
	ErrMsgRangeTooLarge     = "range exceeds iteration limit"
	ErrMsgLoopTooLarge      = "loop exceeds iteration limit"
	ErrMsgNoLoader          = "no template loader configured"
	ErrMsgIncludeFailed     = "loading included template failed"
)
