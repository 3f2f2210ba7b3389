package internal

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// FilterFunc transforms an input value given its evaluated arguments.
// Built-in filters are total: they coerce or pass through on unexpected
// types instead of failing.
type FilterFunc func(input any, args []any) (any, error)

// Filter is a named filter with its accepted argument count
type Filter struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 for variadic
	Fn      FilterFunc
}

// KeywordArg carries a "name: value" filter argument. It is passed to the
// filter in source order among the positional arguments.
type KeywordArg struct {
	Name  string
	Value any
}

// ArgValue unwraps a keyword argument to its value
func ArgValue(arg any) any {
	if kw, ok := arg.(KeywordArg); ok {
		return kw.Value
	}
	return arg
}

// FilterRegistry maps filter names to filters. Lookups happen at render
// time, so filters registered after compilation are still honored.
type FilterRegistry struct {
	filters map[string]*Filter
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewFilterRegistry creates an empty filter registry
func NewFilterRegistry(logger *zap.Logger) *FilterRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgRegistryCreated)
	return &FilterRegistry{
		filters: make(map[string]*Filter),
		logger:  logger,
	}
}

// Register adds a filter. The first registration of a name wins; later
// ones fail with a registry error.
func (r *FilterRegistry) Register(f *Filter) error {
	if f == nil || f.Fn == nil {
		return NewRegistryError(ErrMsgNilFilter, "")
	}
	if f.Name == "" {
		return NewRegistryError(ErrMsgEmptyFilterName, "")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.filters[f.Name]; exists {
		r.logger.Warn(LogMsgFilterCollision, zap.String(LogFieldFilter, f.Name))
		return NewRegistryError(ErrMsgFilterExists, f.Name)
	}

	r.filters[f.Name] = f
	r.logger.Debug(LogMsgFilterRegistered, zap.String(LogFieldFilter, f.Name))
	return nil
}

// MustRegister adds a filter and panics on error
func (r *FilterRegistry) MustRegister(f *Filter) {
	if err := r.Register(f); err != nil {
		panic(err)
	}
}

// Get retrieves a filter by name
func (r *FilterRegistry) Get(name string) (*Filter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.filters[name]
	return f, ok
}

// Has checks if a filter is registered
func (r *FilterRegistry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// List returns all registered filter names, sorted
func (r *FilterRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.filters))
	for name := range r.filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered filters
func (r *FilterRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.filters)
}

// Call checks arity and applies the filter
func (f *Filter) Call(input any, args []any) (any, error) {
	argCount := len(args)
	if argCount < f.MinArgs {
		return nil, NewFilterArgError(ErrMsgFilterTooFewArgs, f.Name, f.MinArgs, argCount)
	}
	if f.MaxArgs >= 0 && argCount > f.MaxArgs {
		return nil, NewFilterArgError(ErrMsgFilterTooManyArgs, f.Name, f.MaxArgs, argCount)
	}
	return f.Fn(input, args)
}

// RegisterBuiltinFilters installs the built-in filter library
func RegisterBuiltinFilters(r *FilterRegistry) {
	registerStringFilters(r)
	registerArrayFilters(r)
	registerMathFilters(r)
}

// argAt returns the unwrapped argument at i, or def when absent
func argAt(args []any, i int, def any) any {
	if i >= len(args) {
		return def
	}
	return ArgValue(args[i])
}

// textArg returns the text form of the argument at i
func textArg(args []any, i int) string {
	return ToText(argAt(args, i, nil))
}

// RegistryError represents a filter or tag registry error
type RegistryError struct {
	Message string
	Name    string
}

// NewRegistryError creates a new registry error
func NewRegistryError(message, name string) *RegistryError {
	return &RegistryError{
		Message: message,
		Name:    name,
	}
}

// Error implements the error interface
func (e *RegistryError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Name)
	}
	return e.Message
}

// FilterArgError represents a filter arity violation
type FilterArgError struct {
	Message    string
	FilterName string
	Expected   int
	Actual     int
}

// NewFilterArgError creates a new filter argument error
func NewFilterArgError(message, filterName string, expected, actual int) *FilterArgError {
	return &FilterArgError{
		Message:    message,
		FilterName: filterName,
		Expected:   expected,
		Actual:     actual,
	}
}

// Error implements the error interface
func (e *FilterArgError) Error() string {
	return fmt.Sprintf("%s: %s (expected %d, got %d)", e.Message, e.FilterName, e.Expected, e.Actual)
}

// Filter registry error messages
const (
	ErrMsgNilFilter         = "filter is nil"
	ErrMsgEmptyFilterName   = "filter name cannot be empty"
	ErrMsgFilterExists      = "filter already registered"
	ErrMsgFilterTooFewArgs  = "too few arguments for filter"
	ErrMsgFilterTooManyArgs = "too many arguments for filter"
)
