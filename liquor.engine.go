package liquor

import (
	"context"
	"sort"
	"sync"

	"github.com/itsatony/go-liquor/internal"
	"go.uber.org/zap"
)

// Engine compiles and renders templates. It owns the filter and tag
// registries, the named templates and the optional store. An Engine is
// safe for concurrent use.
type Engine struct {
	filters   *internal.FilterRegistry
	tags      *internal.TagRegistry
	renderer  *internal.Renderer
	loader    internal.TemplateLoader
	templates map[string]*Template // Named templates registered in memory
	tmplMu    sync.RWMutex         // Protects templates map
	cache     *templateCache       // nil when caching is off
	config    *engineConfig
	logger    *zap.Logger
}

// New creates a new Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}
	if config.maxDepth < 0 || config.maxIterations < 0 {
		return nil, NewConfigError(ErrMsgConfigInvalid, "", nil)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	filters := internal.NewFilterRegistry(logger)
	internal.RegisterBuiltinFilters(filters)
	tags := internal.NewTagRegistry(logger)
	internal.RegisterBuiltinTags(tags)

	rendererConfig := internal.RendererConfig{
		MaxDepth:      config.maxDepth,
		MaxIterations: config.maxIterations,
		StrictFilters: config.strictFilters,
	}

	e := &Engine{
		filters:   filters,
		tags:      tags,
		renderer:  internal.NewRenderer(filters, tags, rendererConfig, logger),
		templates: make(map[string]*Template),
		config:    config,
		logger:    logger,
	}
	e.loader = engineLoader{engine: e}
	if config.cache != nil {
		e.cache = newTemplateCache(*config.cache)
	}

	logger.Debug(LogMsgEngineCreated)
	return e, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// Compile parses template source into a Template. Compilation is pure:
// the same source always yields an equivalent template or the same error.
func (e *Engine) Compile(source string) (*Template, error) {
	return e.compile("", source)
}

// MustCompile compiles source and panics on error.
func (e *Engine) MustCompile(source string) *Template {
	tmpl, err := e.Compile(source)
	if err != nil {
		panic(err)
	}
	return tmpl
}

func (e *Engine) compile(name, source string) (*Template, error) {
	fm, err := splitFrontMatter(source)
	if err != nil {
		e.logger.Debug(LogMsgCompileFailed, zap.String(LogFieldTemplate, name), zap.Error(err))
		return nil, err
	}

	lexerConfig := internal.LexerConfig{
		OutputOpen:  e.config.outputOpen,
		OutputClose: e.config.outputClose,
		TagOpen:     e.config.tagOpen,
		TagClose:    e.config.tagClose,
		FirstLine:   fm.firstLine,
	}
	tokens, err := internal.NewLexerWithConfig(fm.body, lexerConfig, e.logger).Tokenize()
	if err != nil {
		e.logger.Debug(LogMsgCompileFailed, zap.String(LogFieldTemplate, name), zap.Error(err))
		return nil, wrapCompileError(err)
	}

	parserConfig := internal.ParserConfig{MaxDepth: e.config.maxDepth}
	root, err := internal.NewParser(internal.ApplyWhitespaceControl(tokens), fm.body, e.tags, parserConfig, e.logger).Parse()
	if err != nil {
		e.logger.Debug(LogMsgCompileFailed, zap.String(LogFieldTemplate, name), zap.Error(err))
		return nil, wrapCompileError(err)
	}

	e.logger.Debug(LogMsgTemplateCompiled,
		zap.String(LogFieldTemplate, name),
		zap.Int(LogFieldSource, len(source)))
	return newTemplate(name, source, root, fm.data, e), nil
}

// Render is a convenience method that compiles and renders in one step.
// For templates that will be rendered multiple times, use Compile instead.
func (e *Engine) Render(ctx context.Context, source string, data map[string]any) (string, error) {
	tmpl, err := e.Compile(source)
	if err != nil {
		return "", err
	}
	return tmpl.Render(ctx, data)
}

// Validate compiles source and reports the first syntax error, if any.
func (e *Engine) Validate(source string) error {
	_, err := e.Compile(source)
	return err
}

// RegisterTemplate compiles source and registers it under name for
// RenderNamed and the include tag. Registered templates take precedence
// over the store. Re-registering a name replaces it.
func (e *Engine) RegisterTemplate(name, source string) error {
	if name == "" {
		return NewConfigError(ErrMsgEmptyTemplateName, "", nil)
	}
	tmpl, err := e.compile(name, source)
	if err != nil {
		return err
	}

	e.tmplMu.Lock()
	e.templates[name] = tmpl
	e.tmplMu.Unlock()
	return nil
}

// MustRegisterTemplate registers a template and panics on error.
func (e *Engine) MustRegisterTemplate(name, source string) {
	if err := e.RegisterTemplate(name, source); err != nil {
		panic(err)
	}
}

// UnregisterTemplate removes a registered template.
// Returns true if the template existed.
func (e *Engine) UnregisterTemplate(name string) bool {
	e.tmplMu.Lock()
	defer e.tmplMu.Unlock()

	if _, ok := e.templates[name]; !ok {
		return false
	}
	delete(e.templates, name)
	return true
}

// GetTemplate returns a registered template.
func (e *Engine) GetTemplate(name string) (*Template, bool) {
	e.tmplMu.RLock()
	defer e.tmplMu.RUnlock()

	tmpl, ok := e.templates[name]
	return tmpl, ok
}

// HasTemplate checks if a template is registered under name.
func (e *Engine) HasTemplate(name string) bool {
	_, ok := e.GetTemplate(name)
	return ok
}

// ListTemplates returns the names of all registered templates, sorted.
// Store contents are not included; use Store().List for those.
func (e *Engine) ListTemplates() []string {
	e.tmplMu.RLock()
	defer e.tmplMu.RUnlock()

	names := make([]string, 0, len(e.templates))
	for name := range e.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TemplateCount returns the number of registered templates.
func (e *Engine) TemplateCount() int {
	e.tmplMu.RLock()
	defer e.tmplMu.RUnlock()

	return len(e.templates)
}

// Load returns the compiled template for name: a registered template if
// there is one, otherwise the store's, compiled through the cache.
func (e *Engine) Load(ctx context.Context, name string) (*Template, error) {
	if tmpl, ok := e.GetTemplate(name); ok {
		return tmpl, nil
	}
	if e.config.store == nil {
		return nil, NewTemplateNotFoundError(name)
	}

	if e.cache != nil {
		if tmpl, ok := e.cache.get(name); ok {
			e.logger.Debug(LogMsgCacheHit, zap.String(LogFieldTemplate, name))
			return tmpl, nil
		}
		e.logger.Debug(LogMsgCacheMiss, zap.String(LogFieldTemplate, name))
	}

	stored, err := e.config.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	e.logger.Debug(LogMsgTemplateLoaded,
		zap.String(LogFieldTemplate, name),
		zap.Int(LogFieldVersion, stored.Version))

	tmpl, err := e.compile(name, stored.Source)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		if evicted := e.cache.put(name, tmpl); evicted != "" {
			e.logger.Debug(LogMsgCacheEvicted, zap.String(LogFieldTemplate, evicted))
		}
	}
	return tmpl, nil
}

// RenderNamed loads the named template and renders it synchronously.
func (e *Engine) RenderNamed(ctx context.Context, name string, data map[string]any) (string, error) {
	tmpl, err := e.Load(ctx, name)
	if err != nil {
		return "", err
	}
	return tmpl.Render(ctx, data)
}

// RenderNamedAsync loads the named template and renders it asynchronously.
// A load failure is reported through the future.
func (e *Engine) RenderNamedAsync(ctx context.Context, name string, data map[string]any) *RenderFuture {
	tmpl, err := e.Load(ctx, name)
	if err != nil {
		f := newRenderFuture()
		f.complete("", err)
		return f
	}
	return tmpl.RenderAsync(ctx, data)
}

// Invalidate drops a cached compiled template so the next load reads the
// store again.
func (e *Engine) Invalidate(name string) {
	if e.cache == nil {
		return
	}
	e.cache.invalidate(name)
	e.logger.Debug(LogMsgTemplateRemoved, zap.String(LogFieldTemplate, name))
}

// InvalidateAll clears the compiled template cache.
func (e *Engine) InvalidateAll() {
	if e.cache != nil {
		e.cache.invalidateAll()
	}
}

// CacheStats returns statistics of the compiled template cache.
// All fields are zero when caching is off.
func (e *Engine) CacheStats() CacheStats {
	if e.cache == nil {
		return CacheStats{}
	}
	return e.cache.stats()
}

// Store returns the configured store, or nil.
func (e *Engine) Store() TemplateStore {
	return e.config.store
}

// Close closes the store if the engine opened it from a Config.
// Stores passed in with WithStore are left to the caller.
func (e *Engine) Close() error {
	if e.config.store != nil && e.config.ownsStore {
		return e.config.store.Close()
	}
	return nil
}

// engineLoader serves the include tag from the engine.
type engineLoader struct {
	engine *Engine
}

func (l engineLoader) LoadTemplate(ctx context.Context, name string) (*internal.RootNode, error) {
	tmpl, err := l.engine.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return tmpl.root, nil
}
