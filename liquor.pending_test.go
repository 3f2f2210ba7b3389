package liquor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolved(t *testing.T) {
	v, err := Resolved(42).Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestPendingFunc(t *testing.T) {
	var calls int32
	p := PendingFunc(func(context.Context) (any, error) {
		return atomic.AddInt32(&calls, 1), nil
	})

	_, _ = p.Await(context.Background())
	v, err := p.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), v)
}

func TestDefer(t *testing.T) {
	var calls int32
	boom := errors.New("boom")
	p := Defer(func(context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return "x", boom
	})

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "nothing runs before the first await")
	for i := 0; i < 3; i++ {
		v, err := p.Await(context.Background())
		assert.Equal(t, "x", v)
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGo(t *testing.T) {
	t.Run("returns result", func(t *testing.T) {
		p := Go(func() (any, error) { return "done", nil })
		v, err := p.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "done", v)
	})

	t.Run("await honours context", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		p := Go(func() (any, error) {
			<-release
			return nil, nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := p.Await(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
