package liquor

import (
	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	outputOpen    string
	outputClose   string
	tagOpen       string
	tagClose      string
	maxDepth      int
	maxIterations int
	strictFilters bool
	globals       map[string]any
	store         TemplateStore
	ownsStore     bool
	cache         *CacheConfig
	logger        *zap.Logger
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		outputOpen:    DefaultOutputOpen,
		outputClose:   DefaultOutputClose,
		tagOpen:       DefaultTagOpen,
		tagClose:      DefaultTagClose,
		maxDepth:      DefaultMaxDepth,
		maxIterations: DefaultMaxIterations,
		logger:        nil,
	}
}

// WithDelimiters sets custom output and tag delimiters.
// Empty strings keep the default for that delimiter.
// Default: "{{", "}}", "{%" and "%}"
func WithDelimiters(outputOpen, outputClose, tagOpen, tagClose string) Option {
	return func(c *engineConfig) {
		if outputOpen != "" {
			c.outputOpen = outputOpen
		}
		if outputClose != "" {
			c.outputClose = outputClose
		}
		if tagOpen != "" {
			c.tagOpen = tagOpen
		}
		if tagClose != "" {
			c.tagClose = tagClose
		}
	}
}

// WithMaxDepth sets the maximum nesting depth of blocks and includes.
// Use 0 for unlimited depth.
// Default: 100
func WithMaxDepth(depth int) Option {
	return func(c *engineConfig) {
		c.maxDepth = depth
	}
}

// WithMaxIterations caps the number of iterations of a single loop or
// range. Use 0 for no cap.
// Default: 1000000
func WithMaxIterations(n int) Option {
	return func(c *engineConfig) {
		c.maxIterations = n
	}
}

// WithStrictFilters makes unknown filters fail the render instead of
// passing the value through unchanged.
func WithStrictFilters(strict bool) Option {
	return func(c *engineConfig) {
		c.strictFilters = strict
	}
}

// WithGlobals sets variables visible to every render. Render data shadows
// globals of the same name. The map is copied.
func WithGlobals(globals map[string]any) Option {
	return func(c *engineConfig) {
		c.globals = make(map[string]any, len(globals))
		for k, v := range globals {
			c.globals[k] = v
		}
	}
}

// WithStore sets the store that named templates and includes load from.
func WithStore(store TemplateStore) Option {
	return func(c *engineConfig) {
		c.store = store
		c.ownsStore = false
	}
}

// withOwnedStore sets a store that Engine.Close will close.
func withOwnedStore(store TemplateStore) Option {
	return func(c *engineConfig) {
		c.store = store
		c.ownsStore = true
	}
}

// WithCache enables caching of templates compiled from the store.
func WithCache(config CacheConfig) Option {
	return func(c *engineConfig) {
		c.cache = &config
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}
