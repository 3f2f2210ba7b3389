package liquor

import (
	"github.com/itsatony/go-liquor/internal"
	"go.uber.org/zap"
)

// FilterFunc transforms an input value given its evaluated arguments.
// Filters should be total: coerce or pass the input through on unexpected
// types rather than fail. A filter may return a Pending, which an
// asynchronous render awaits.
type FilterFunc func(input any, args []any) (any, error)

// Filter is a custom filter usable in output and tag expressions.
type Filter struct {
	// Name is the identifier used after "|" in templates
	Name string
	// MinArgs is the minimum number of arguments required
	MinArgs int
	// MaxArgs is the maximum number of arguments allowed (-1 for variadic)
	MaxArgs int
	// Fn is the filter implementation
	Fn FilterFunc
}

// KeywordArg is how a "name: value" argument reaches a filter. It keeps
// its position among the positional arguments.
type KeywordArg = internal.KeywordArg

// ArgValue unwraps a keyword argument to its value.
func ArgValue(arg any) any {
	return internal.ArgValue(arg)
}

// RegisterFilter registers a custom filter. Built-in filters and earlier
// registrations keep their names; a collision is a registry error.
// Filters are looked up at render time, so templates compiled before the
// registration can use the filter too.
//
// Example:
//
//	engine.RegisterFilter(&liquor.Filter{
//	    Name:    "shout",
//	    MinArgs: 0,
//	    MaxArgs: 0,
//	    Fn: func(input any, args []any) (any, error) {
//	        return strings.ToUpper(fmt.Sprint(input)) + "!", nil
//	    },
//	})
//
// The filter can then be used in templates:
//
//	{{ greeting | shout }}
func (e *Engine) RegisterFilter(f *Filter) error {
	if f == nil || f.Fn == nil {
		return wrapRegistryError(internal.NewRegistryError(ErrMsgNilFilterFunc, ""))
	}

	err := e.filters.Register(&internal.Filter{
		Name:    f.Name,
		MinArgs: f.MinArgs,
		MaxArgs: f.MaxArgs,
		Fn:      internal.FilterFunc(f.Fn),
	})
	if err != nil {
		return wrapRegistryError(err)
	}
	e.logger.Debug(LogMsgFilterRegistered, zap.String(LogFieldFilter, f.Name))
	return nil
}

// MustRegisterFilter registers a custom filter and panics on error.
func (e *Engine) MustRegisterFilter(f *Filter) {
	if err := e.RegisterFilter(f); err != nil {
		panic(err)
	}
}

// HasFilter checks if a filter is registered with the given name.
func (e *Engine) HasFilter(name string) bool {
	return e.filters.Has(name)
}

// ListFilters returns all registered filter names in sorted order.
func (e *Engine) ListFilters() []string {
	return e.filters.List()
}

// FilterCount returns the number of registered filters.
func (e *Engine) FilterCount() int {
	return e.filters.Count()
}
