package liquor

import (
	"context"
	"sync"

	"github.com/itsatony/go-liquor/internal"
)

// Pending is a value whose computation may not have finished yet. It may
// appear anywhere a value may: in render data, nested in maps and slices,
// or returned by a filter. Synchronous renders reject it; asynchronous
// renders await it at the point of use, so output order is unaffected.
type Pending = internal.Pending

// PendingFunc adapts a function to Pending. The function runs on every
// Await.
type PendingFunc func(ctx context.Context) (any, error)

// Await calls f.
func (f PendingFunc) Await(ctx context.Context) (any, error) {
	return f(ctx)
}

// Resolved returns a Pending that is already complete.
func Resolved(v any) Pending {
	return resolved{value: v}
}

type resolved struct {
	value any
}

func (r resolved) Await(context.Context) (any, error) {
	return r.value, nil
}

// Defer returns a Pending that runs fn once, on the first Await, and
// returns the same result to every later Await.
func Defer(fn func(ctx context.Context) (any, error)) Pending {
	return &deferred{fn: fn}
}

type deferred struct {
	once  sync.Once
	fn    func(ctx context.Context) (any, error)
	value any
	err   error
}

func (d *deferred) Await(ctx context.Context) (any, error) {
	d.once.Do(func() {
		d.value, d.err = d.fn(ctx)
	})
	return d.value, d.err
}

// Go starts fn in a new goroutine and returns a Pending for its result.
// Await blocks until fn returns or ctx is done; fn itself is not
// cancelled by the awaiting context.
func Go(fn func() (any, error)) Pending {
	f := &future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value, f.err = fn()
	}()
	return f
}

type future struct {
	done  chan struct{}
	value any
	err   error
}

func (f *future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
