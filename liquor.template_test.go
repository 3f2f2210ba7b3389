package liquor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate_Accessors(t *testing.T) {
	source := "---\ntitle: Home\n---\n<h1>{{ page.title }}</h1>"
	tmpl := MustNew().MustCompile(source)

	assert.Empty(t, tmpl.Name())
	assert.Equal(t, source, tmpl.Source())
	assert.Equal(t, map[string]any{"title": "Home"}, tmpl.FrontMatter())
	assert.Positive(t, tmpl.NodeCount())

	assert.Nil(t, MustNew().MustCompile("x").FrontMatter())
}

func TestTemplate_FrontMatterPage(t *testing.T) {
	engine := MustNew(WithGlobals(map[string]any{"site": "Example"}))
	ctx := context.Background()

	tmpl := engine.MustCompile("---\ntitle: Home\ntags: [a, b]\n---\n{{ page.title }}|{{ page.tags | join: ',' }}|{{ site }}")
	out, err := tmpl.Render(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "Home|a,b|Example", out)

	t.Run("includes see the caller's page", func(t *testing.T) {
		engine.MustRegisterTemplate("title", "<{{ page.title }}>")
		out, err := engine.Render(ctx, "---\ntitle: Outer\n---\n{% include 'title' %}", nil)
		require.NoError(t, err)
		assert.Equal(t, "<Outer>", out)
	})

	t.Run("no front matter means no page", func(t *testing.T) {
		out, err := engine.Render(ctx, "[{{ page.title }}]", nil)
		require.NoError(t, err)
		assert.Equal(t, "[]", out)
	})
}

func TestTemplate_RenderIsRepeatable(t *testing.T) {
	tmpl := MustNew().MustCompile("{% assign n = n | plus: 1 %}{{ n }}")
	data := map[string]any{"n": 1}

	for i := 0; i < 3; i++ {
		out, err := tmpl.Render(context.Background(), data)
		require.NoError(t, err)
		assert.Equal(t, "2", out)
	}
	assert.Equal(t, 1, data["n"], "render data is never mutated")
}

func TestTemplate_RenderFailure(t *testing.T) {
	tmpl := MustNew().MustCompile("before {{ 1 | divided_by: 0 }} after")
	ctx := context.Background()

	t.Run("render discards partial output", func(t *testing.T) {
		out, err := tmpl.Render(ctx, nil)
		require.Error(t, err)
		assert.Empty(t, out)
		assert.True(t, IsRenderError(err))

		pos, ok := ErrorPosition(err)
		require.True(t, ok)
		assert.Equal(t, 1, pos.Line)
		assert.Equal(t, 8, pos.Column)
	})

	t.Run("render to keeps partial output", func(t *testing.T) {
		var sb strings.Builder
		err := tmpl.RenderTo(ctx, nil, &sb)
		require.Error(t, err)
		assert.Equal(t, "before ", sb.String())
	})
}

func TestTemplate_Concurrent(t *testing.T) {
	tmpl := MustNew().MustCompile("{% for i in list %}{% assign last = i %}{{ i | upcase }}{% endfor %}{{ last }}")

	var wg sync.WaitGroup
	for n := 0; n < 20; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := tmpl.Render(context.Background(), map[string]any{"list": []any{"a", "b"}})
			assert.NoError(t, err)
			assert.Equal(t, "ABb", out)
		}()
	}
	wg.Wait()
}

func TestTemplate_RenderAsync(t *testing.T) {
	engine := MustNew()
	engine.MustRegisterFilter(&Filter{Name: "later", Fn: func(in any, _ []any) (any, error) {
		return Go(func() (any, error) {
			time.Sleep(time.Millisecond)
			return strings.ToUpper(in.(string)), nil
		}), nil
	}})
	tmpl := engine.MustCompile("{{ a }}-{% for x in xs %}{{ x | later }}{% endfor %}-{{ user.name }}")
	ctx := context.Background()

	data := map[string]any{
		"a": Go(func() (any, error) {
			time.Sleep(10 * time.Millisecond)
			return "A", nil
		}),
		"xs":   Defer(func(context.Context) (any, error) { return []any{"x", "y"}, nil }),
		"user": Resolved(map[string]any{"name": Resolved("Ada")}),
	}

	t.Run("awaits in source order", func(t *testing.T) {
		future := tmpl.RenderAsync(ctx, data)
		out, err := future.Wait()
		require.NoError(t, err)
		assert.Equal(t, "A-XY-Ada", out)

		select {
		case <-future.Done():
		default:
			t.Fatal("done must be closed after Wait returns")
		}
	})

	t.Run("render to sink", func(t *testing.T) {
		var sb strings.Builder
		out, err := tmpl.RenderAsyncTo(ctx, data, &sb).Wait()
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.Equal(t, "A-XY-Ada", sb.String())
	})

	t.Run("failed value", func(t *testing.T) {
		boom := errors.New("backend down")
		_, err := engine.MustCompile("ok {{ bad }}").RenderAsync(ctx, map[string]any{
			"bad": Go(func() (any, error) { return nil, boom }),
		}).Wait()
		assert.ErrorIs(t, err, boom)
		assert.True(t, IsRenderError(err))
	})

	t.Run("cancelled while waiting", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := engine.MustCompile("{{ slow }}").RenderAsync(ctx, map[string]any{
			"slow": Go(func() (any, error) {
				<-release
				return 1, nil
			}),
		}).Wait()
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
