package liquor

import (
	"context"
	"strings"

	"github.com/itsatony/go-liquor/internal"
	"go.uber.org/zap"
)

// Template is a compiled template. It is immutable and may be rendered
// any number of times, concurrently, with different data.
type Template struct {
	name        string
	source      string
	root        *internal.RootNode
	frontMatter map[string]any
	globals     map[string]any
	engine      *Engine
}

// newTemplate binds front matter as the page variable on top of the
// engine globals.
func newTemplate(name, source string, root *internal.RootNode, fm map[string]any, engine *Engine) *Template {
	globals := engine.config.globals
	if fm != nil {
		globals = make(map[string]any, len(engine.config.globals)+1)
		for k, v := range engine.config.globals {
			globals[k] = v
		}
		globals[FrontMatterVar] = fm
	}
	return &Template{
		name:        name,
		source:      source,
		root:        root,
		frontMatter: fm,
		globals:     globals,
		engine:      engine,
	}
}

// Render renders the template synchronously. Pending values in data are
// an error; use RenderAsync for those. On failure the partial output is
// discarded and "" is returned with the error.
func (t *Template) Render(ctx context.Context, data map[string]any) (string, error) {
	var sb strings.Builder
	if err := t.render(ctx, data, internal.SyncLeaves(), &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderTo renders the template synchronously into sink. On failure the
// output written before the failing node stays in the sink.
func (t *Template) RenderTo(ctx context.Context, data map[string]any, sink Sink) error {
	return t.render(ctx, data, internal.SyncLeaves(), sink)
}

// RenderAsync renders the template in a new goroutine, awaiting Pending
// values where they are used. The output is identical to what Render
// would produce if every Pending had been resolved up front.
func (t *Template) RenderAsync(ctx context.Context, data map[string]any) *RenderFuture {
	f := newRenderFuture()
	go func() {
		var sb strings.Builder
		err := t.renderAsync(ctx, data, &sb)
		if err != nil {
			f.complete("", err)
			return
		}
		f.complete(sb.String(), nil)
	}()
	return f
}

// RenderAsyncTo is RenderAsync writing into sink. The sink is written
// from the render goroutine; the future's output is always "".
func (t *Template) RenderAsyncTo(ctx context.Context, data map[string]any, sink Sink) *RenderFuture {
	f := newRenderFuture()
	go func() {
		f.complete("", t.renderAsync(ctx, data, sink))
	}()
	return f
}

func (t *Template) renderAsync(ctx context.Context, data map[string]any, sink Sink) error {
	t.engine.logger.Debug(LogMsgAsyncRenderStart, zap.String(LogFieldTemplate, t.name))
	err := t.render(ctx, data, internal.AsyncLeaves(), sink)
	if err != nil {
		t.engine.logger.Debug(LogMsgAsyncRenderFailed, zap.String(LogFieldTemplate, t.name), zap.Error(err))
	}
	return err
}

func (t *Template) render(ctx context.Context, data map[string]any, leaves internal.LeafResolver, sink Sink) error {
	scope := internal.NewScope(data, t.globals)
	if err := t.engine.renderer.Render(ctx, t.root, scope, leaves, t.engine.loader, sink); err != nil {
		return wrapRenderError(err)
	}
	return nil
}

// Name returns the name the template was loaded under, or "" for
// templates compiled from a string.
func (t *Template) Name() string {
	return t.name
}

// Source returns the original template source, front matter included.
func (t *Template) Source() string {
	return t.source
}

// FrontMatter returns the parsed YAML front matter, or nil if the source
// has none. Templates see the same map as the page variable.
func (t *Template) FrontMatter() map[string]any {
	return t.frontMatter
}

// NodeCount returns the number of nodes in the compiled template.
func (t *Template) NodeCount() int {
	return internal.CountNodes(t.root.Children)
}

// RenderFuture is the result of an asynchronous render.
type RenderFuture struct {
	done   chan struct{}
	output string
	err    error
}

func newRenderFuture() *RenderFuture {
	return &RenderFuture{done: make(chan struct{})}
}

func (f *RenderFuture) complete(output string, err error) {
	f.output, f.err = output, err
	close(f.done)
}

// Done is closed when the render has finished.
func (f *RenderFuture) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the render finishes and returns its output.
func (f *RenderFuture) Wait() (string, error) {
	<-f.done
	return f.output, f.err
}
