package internal

import (
	"io"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// TagSpec describes a tag's grammar to the parser
type TagSpec struct {
	Name     string   // Tag name
	End      string   // Closing tag name; empty for leaf tags
	Branches []string // Intermediate tags allowed directly inside the body
	Raw      bool     // Keep the body as unparsed source text
}

// IsBlock reports whether the tag has a body
func (s TagSpec) IsBlock() bool {
	return s.End != ""
}

// HasBranch reports whether name is an intermediate tag of this block
func (s TagSpec) HasBranch(name string) bool {
	for _, b := range s.Branches {
		if b == name {
			return true
		}
	}
	return false
}

// TagHandler implements one tag. Parse runs once at compile time and may
// store parsed arguments in node.Args and branch.Args; it must not keep
// per-render state. Render runs on every render and may recurse into the
// body through the state.
type TagHandler interface {
	Spec() TagSpec
	Parse(node *TagNode) error
	Render(state *RenderState, node *TagNode, sink io.StringWriter) error
}

// TagRegistry maps tag names to handlers
type TagRegistry struct {
	handlers map[string]TagHandler
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewTagRegistry creates an empty tag registry
func NewTagRegistry(logger *zap.Logger) *TagRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgRegistryCreated)
	return &TagRegistry{
		handlers: make(map[string]TagHandler),
		logger:   logger,
	}
}

// Register adds a tag handler. The first registration of a name wins.
func (r *TagRegistry) Register(h TagHandler) error {
	if h == nil {
		return NewRegistryError(ErrMsgNilTag, "")
	}
	name := h.Spec().Name
	if name == "" {
		return NewRegistryError(ErrMsgEmptyTagName, "")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists {
		r.logger.Warn(LogMsgTagCollision, zap.String(LogFieldTag, name))
		return NewRegistryError(ErrMsgTagExists, name)
	}

	r.handlers[name] = h
	r.logger.Debug(LogMsgTagRegistered, zap.String(LogFieldTag, name))
	return nil
}

// MustRegister adds a tag handler and panics on error
func (r *TagRegistry) MustRegister(h TagHandler) {
	if err := r.Register(h); err != nil {
		panic(err)
	}
}

// Get retrieves a handler by tag name
func (r *TagRegistry) Get(name string) (TagHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[name]
	return h, ok
}

// Has checks if a tag is registered
func (r *TagRegistry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// List returns all registered tag names, sorted
func (r *TagRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tags
func (r *TagRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.handlers)
}

// IsDelimiter reports whether name closes or splits some registered block
// tag, such as endfor or else
func (r *TagRegistry) IsDelimiter(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, h := range r.handlers {
		spec := h.Spec()
		if spec.End == name || spec.HasBranch(name) {
			return true
		}
	}
	return false
}

// IsEndTag reports whether name closes some registered block tag
func (r *TagRegistry) IsEndTag(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, h := range r.handlers {
		if h.Spec().End == name {
			return true
		}
	}
	return false
}

// RegisterBuiltinTags installs the built-in tag library
func RegisterBuiltinTags(r *TagRegistry) {
	r.MustRegister(&assignTag{})
	r.MustRegister(&captureTag{})
	r.MustRegister(&echoTag{})
	r.MustRegister(&commentTag{})
	r.MustRegister(&rawTag{})
	r.MustRegister(&includeTag{})
	r.MustRegister(&ifTag{})
	r.MustRegister(&unlessTag{})
	r.MustRegister(&caseTag{})
	r.MustRegister(&forTag{})
	r.MustRegister(&loopControlTag{name: TagNameBreak, signal: interruptBreak})
	r.MustRegister(&loopControlTag{name: TagNameContinue, signal: interruptContinue})
}

// Tag registry error messages
const (
	ErrMsgNilTag       = "tag handler is nil"
	ErrMsgEmptyTagName = "tag name cannot be empty"
	ErrMsgTagExists    = "tag already registered"
)
