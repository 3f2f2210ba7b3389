package liquor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveAndGet(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	t.Run("first save is version 1", func(t *testing.T) {
		tmpl := &StoredTemplate{Name: "greeting", Source: "Hello {{ name }}", Metadata: map[string]string{"owner": "web"}}
		require.NoError(t, store.Save(ctx, tmpl))

		assert.Equal(t, 1, tmpl.Version)
		assert.False(t, tmpl.CreatedAt.IsZero())
		assert.Equal(t, tmpl.CreatedAt, tmpl.UpdatedAt)

		got, err := store.Get(ctx, "greeting")
		require.NoError(t, err)
		assert.Equal(t, "Hello {{ name }}", got.Source)
		assert.Equal(t, "web", got.Metadata["owner"])
	})

	t.Run("resave bumps version and keeps creation time", func(t *testing.T) {
		first, err := store.Get(ctx, "greeting")
		require.NoError(t, err)

		tmpl := &StoredTemplate{Name: "greeting", Source: "Hi {{ name }}"}
		require.NoError(t, store.Save(ctx, tmpl))

		assert.Equal(t, 2, tmpl.Version)
		assert.Equal(t, first.CreatedAt, tmpl.CreatedAt)

		got, err := store.Get(ctx, "greeting")
		require.NoError(t, err)
		assert.Equal(t, "Hi {{ name }}", got.Source)
		assert.Equal(t, 2, got.Version)
	})

	t.Run("returned template is a copy", func(t *testing.T) {
		got, err := store.Get(ctx, "greeting")
		require.NoError(t, err)
		got.Source = "mutated"

		again, err := store.Get(ctx, "greeting")
		require.NoError(t, err)
		assert.Equal(t, "Hi {{ name }}", again.Source)
	})

	t.Run("missing template", func(t *testing.T) {
		_, err := store.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrTemplateNotFound)
	})

	t.Run("invalid name", func(t *testing.T) {
		err := store.Save(ctx, &StoredTemplate{Name: "../x"})
		var se *StoreError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, ErrMsgPathTraversalDetected, se.Message)
	})
}

func TestMemoryStore_ListExistsDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, name := range []string{"b", "a", "partials/c"} {
		require.NoError(t, store.Save(ctx, &StoredTemplate{Name: name, Source: name}))
	}

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "partials/c"}, names)

	ok, err := store.Exists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, "a"))
	ok, err = store.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, store.Delete(ctx, "a"), ErrTemplateNotFound)
}

func TestMemoryStore_Closed(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &StoredTemplate{Name: "a"}))
	require.NoError(t, store.Close())

	isClosed := func(err error) bool {
		var se *StoreError
		return errors.As(err, &se) && se.Message == ErrMsgStoreClosed
	}

	_, err := store.Get(ctx, "a")
	assert.True(t, isClosed(err))
	assert.True(t, isClosed(store.Save(ctx, &StoredTemplate{Name: "a"})))
	assert.True(t, isClosed(store.Delete(ctx, "a")))
	_, err = store.List(ctx)
	assert.True(t, isClosed(err))
	_, err = store.Exists(ctx, "a")
	assert.True(t, isClosed(err))
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Get(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Save(ctx, &StoredTemplate{Name: "a"}), context.Canceled)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("t%d", i%5)
			assert.NoError(t, store.Save(ctx, &StoredTemplate{Name: name, Source: name}))
			_, err := store.Get(ctx, name)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, names, 5)

	total := 0
	for _, name := range names {
		got, err := store.Get(ctx, name)
		require.NoError(t, err)
		total += got.Version
	}
	assert.Equal(t, 20, total)
}

func TestMemoryStoreDriver_Open(t *testing.T) {
	store, err := OpenStore(StoreDriverNameMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
}
