package liquor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/itsatony/go-liquor/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		engine, err := New()
		require.NoError(t, err)
		assert.True(t, engine.HasFilter("upcase"))
		assert.True(t, engine.HasTag("for"))
		assert.Nil(t, engine.Store())
		assert.Equal(t, CacheStats{}, engine.CacheStats())
		assert.NoError(t, engine.Close())
	})

	t.Run("negative limits rejected", func(t *testing.T) {
		_, err := New(WithMaxDepth(-1))
		assert.Error(t, err)
		_, err = New(WithMaxIterations(-1))
		assert.Error(t, err)
	})

	t.Run("must new panics on error", func(t *testing.T) {
		assert.Panics(t, func() { MustNew(WithMaxDepth(-1)) })
	})
}

func TestEngine_Render(t *testing.T) {
	engine := MustNew()
	ctx := context.Background()

	tests := []struct {
		name     string
		source   string
		data     map[string]any
		expected string
	}{
		{"text", "plain", nil, "plain"},
		{"output with filters", "Hello, {{ name | capitalize }}!", map[string]any{"name": "ada"}, "Hello, Ada!"},
		{"undefined is empty", "[{{ nobody.name }}]", nil, "[]"},
		{"loop with forloop", "{% for x in xs %}{{ forloop.index }}{{ x }}{% endfor %}", map[string]any{"xs": []any{"a", "b"}}, "1a2b"},
		{"if elsif else", "{% if n > 5 %}big{% elsif n > 1 %}mid{% else %}small{% endif %}", map[string]any{"n": 3}, "mid"},
		{"case", `{% case k %}{% when "a", "b" %}ab{% else %}other{% endcase %}`, map[string]any{"k": "b"}, "ab"},
		{"assign and capture", "{% assign x = 2 | times: 3 %}{% capture y %}<{{ x }}>{% endcapture %}{{ y }}", nil, "<6>"},
		{"whitespace control", "a  {%- if true -%}  b  {%- endif -%}  c", nil, "abc"},
		{"struct data", "{{ user.Name }}", map[string]any{"user": struct{ Name string }{"Bo"}}, "Bo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := engine.Render(ctx, tt.source, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestEngine_Validate(t *testing.T) {
	engine := MustNew()

	assert.NoError(t, engine.Validate("{% if a %}{{ b }}{% endif %}"))

	tests := []struct {
		name   string
		source string
		line   int
		column int
	}{
		{"unclosed block", "ab\n{% for i in x %}", 2, 1},
		{"unterminated output", "abc {{ name", 1, 5},
		{"unknown tag", "{% lop %}", 1, 1},
		{"after front matter", "---\ntitle: x\n---\n\n{% if a %}", 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.Validate(tt.source)
			require.Error(t, err)
			assert.True(t, IsSyntaxError(err))

			pos, ok := ErrorPosition(err)
			require.True(t, ok)
			assert.Equal(t, tt.line, pos.Line)
			assert.Equal(t, tt.column, pos.Column)
		})
	}
}

func TestEngine_Delimiters(t *testing.T) {
	engine := MustNew(WithDelimiters("[[", "]]", "[%", "%]"))

	out, err := engine.Render(context.Background(), "{{ kept }} [[ name ]][% if true %]!{% endif %}[% endif %]", map[string]any{"name": "x"})
	require.NoError(t, err)
	assert.Equal(t, "{{ kept }} x!{% endif %}", out)
}

func TestEngine_Globals(t *testing.T) {
	globals := map[string]any{"site": "Example", "year": 2024}
	engine := MustNew(WithGlobals(globals))
	globals["site"] = "mutated"

	out, err := engine.Render(context.Background(), "{{ site }} {{ year }}", map[string]any{"year": 2025})
	require.NoError(t, err)
	assert.Equal(t, "Example 2025", out)
}

func TestEngine_StrictFilters(t *testing.T) {
	ctx := context.Background()

	out, err := MustNew().Render(ctx, "{{ 'abc' | upcaes }}", nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", out)

	_, err = MustNew(WithStrictFilters(true)).Render(ctx, "{{ 'abc' | upcaes }}", nil)
	require.Error(t, err)
	assert.True(t, IsRenderError(err))
	assert.Contains(t, ErrorDetail(err), "upcase")
}

func TestEngine_MaxIterations(t *testing.T) {
	engine := MustNew(WithMaxIterations(3))

	_, err := engine.Render(context.Background(), "{% for i in xs %}{% endfor %}", map[string]any{"xs": []any{1, 2, 3, 4}})
	require.Error(t, err)
	assert.True(t, IsRenderError(err))
}

func TestEngine_CustomFilter(t *testing.T) {
	engine := MustNew()

	shout := &Filter{
		Name:    "shout",
		MaxArgs: 1,
		Fn: func(in any, args []any) (any, error) {
			suffix := "!"
			if len(args) > 0 {
				suffix = fmt.Sprint(ArgValue(args[0]))
			}
			return strings.ToUpper(fmt.Sprint(in)) + suffix, nil
		},
	}

	// Filters resolve at render time, so earlier compiles see them.
	tmpl := engine.MustCompile(`{{ "hi" | shout }} {{ "yo" | shout: "?" }}`)
	require.NoError(t, engine.RegisterFilter(shout))

	out, err := tmpl.Render(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "HI! YO?", out)

	assert.True(t, engine.HasFilter("shout"))
	assert.Contains(t, engine.ListFilters(), "shout")
	assert.Equal(t, len(engine.ListFilters()), engine.FilterCount())

	t.Run("collision", func(t *testing.T) {
		err := engine.RegisterFilter(&Filter{Name: "upcase", Fn: shout.Fn})
		assert.Error(t, err)
		assert.Panics(t, func() { engine.MustRegisterFilter(&Filter{Name: "shout", Fn: shout.Fn}) })
	})

	t.Run("nil function", func(t *testing.T) {
		assert.Error(t, engine.RegisterFilter(&Filter{Name: "nothing"}))
		assert.Error(t, engine.RegisterFilter(nil))
	})

	t.Run("filter error becomes render error", func(t *testing.T) {
		boom := errors.New("boom")
		engine.MustRegisterFilter(&Filter{Name: "explode", Fn: func(any, []any) (any, error) { return nil, boom }})

		_, err := engine.Render(context.Background(), "{{ 1 | explode }}", nil)
		assert.ErrorIs(t, err, boom)
		assert.True(t, IsRenderError(err))
	})
}

func TestEngine_CustomTags(t *testing.T) {
	engine := MustNew()

	engine.MustRegisterTag(NewTagFunc("stamp", func(_ *RenderState, value any, _ func(Sink) error, sink Sink) error {
		_, err := sink.WriteString(fmt.Sprintf("<%v>", value))
		return err
	}))
	engine.MustRegisterTag(NewBlockTagFunc("wrap", func(_ *RenderState, value any, body func(Sink) error, sink Sink) error {
		if _, err := sink.WriteString("<" + fmt.Sprint(value) + ">"); err != nil {
			return err
		}
		if err := body(sink); err != nil {
			return err
		}
		_, err := sink.WriteString("</" + fmt.Sprint(value) + ">")
		return err
	}))

	out, err := engine.Render(context.Background(), `{% stamp n | plus: 1 %}{% wrap "b" %}{{ n }}{% endwrap %}`, map[string]any{"n": 1})
	require.NoError(t, err)
	assert.Equal(t, "<2><b>1</b>", out)

	assert.True(t, engine.HasTag("wrap"))
	assert.Contains(t, engine.ListTags(), "stamp")

	t.Run("block tag must be closed", func(t *testing.T) {
		err := engine.Validate(`{% wrap "b" %}x`)
		assert.True(t, IsSyntaxError(err))
	})

	t.Run("collision and nil", func(t *testing.T) {
		assert.Error(t, engine.RegisterTag(NewTagFunc("if", nil)))
		assert.Error(t, engine.RegisterTag(nil))
	})
}

func TestEngine_RegisteredTemplates(t *testing.T) {
	engine := MustNew()
	ctx := context.Background()

	require.NoError(t, engine.RegisterTemplate("partials/card", "[{{ card.title }}]"))
	engine.MustRegisterTemplate("page", "{% for p in products %}{% include 'partials/card' with p %}{% endfor %}")

	out, err := engine.RenderNamed(ctx, "page", map[string]any{
		"products": []any{map[string]any{"title": "Mug"}, map[string]any{"title": "Cap"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "[Mug][Cap]", out)

	assert.Equal(t, []string{"page", "partials/card"}, engine.ListTemplates())
	assert.Equal(t, 2, engine.TemplateCount())
	assert.True(t, engine.HasTemplate("page"))

	tmpl, ok := engine.GetTemplate("page")
	require.True(t, ok)
	assert.Equal(t, "page", tmpl.Name())

	t.Run("re-register replaces", func(t *testing.T) {
		engine.MustRegisterTemplate("partials/card", "({{ card.title }})")
		out, err := engine.RenderNamed(ctx, "page", map[string]any{"products": []any{map[string]any{"title": "Mug"}}})
		require.NoError(t, err)
		assert.Equal(t, "(Mug)", out)
	})

	t.Run("invalid registrations", func(t *testing.T) {
		assert.Error(t, engine.RegisterTemplate("", "x"))
		err := engine.RegisterTemplate("broken", "{% if %}")
		assert.True(t, IsSyntaxError(err))
		assert.False(t, engine.HasTemplate("broken"))
	})

	t.Run("unregister", func(t *testing.T) {
		assert.True(t, engine.UnregisterTemplate("page"))
		assert.False(t, engine.UnregisterTemplate("page"))
		_, err := engine.RenderNamed(ctx, "page", nil)
		assert.ErrorIs(t, err, ErrTemplateNotFound)
	})

	t.Run("missing include", func(t *testing.T) {
		_, err := engine.Render(ctx, "{% include 'nope' %}", nil)
		assert.True(t, IsRenderError(err))
		assert.ErrorIs(t, err, ErrTemplateNotFound)
	})
}

func TestEngine_StoreAndCache(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, &StoredTemplate{Name: "hello", Source: "Hello {{ name }}"}))
	require.NoError(t, store.Save(ctx, &StoredTemplate{Name: "bad", Source: "{% for %}"}))

	core, logs := observer.New(zap.DebugLevel)
	engine := MustNew(WithStore(store), WithCache(DefaultCacheConfig()), WithLogger(zap.New(core)))
	assert.Same(t, store, engine.Store())

	out, err := engine.RenderNamed(ctx, "hello", map[string]any{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada", out)

	require.NoError(t, store.Save(ctx, &StoredTemplate{Name: "hello", Source: "Hi {{ name }}"}))

	out, err = engine.RenderNamed(ctx, "hello", map[string]any{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada", out, "cached compile is reused")
	assert.Equal(t, CacheStats{Entries: 1, Hits: 1, Misses: 1}, engine.CacheStats())
	assert.Equal(t, 1, logs.FilterMessage(LogMsgCacheHit).Len())

	engine.Invalidate("hello")
	out, err = engine.RenderNamed(ctx, "hello", map[string]any{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Hi Ada", out)

	t.Run("registered template wins over store", func(t *testing.T) {
		engine.MustRegisterTemplate("hello", "registered")
		out, err := engine.RenderNamed(ctx, "hello", nil)
		require.NoError(t, err)
		assert.Equal(t, "registered", out)
		engine.UnregisterTemplate("hello")
	})

	t.Run("store errors pass through", func(t *testing.T) {
		_, err := engine.Load(ctx, "missing")
		assert.ErrorIs(t, err, ErrTemplateNotFound)

		_, err = engine.Load(ctx, "bad")
		assert.True(t, IsSyntaxError(err))
	})

	t.Run("invalidate all", func(t *testing.T) {
		engine.InvalidateAll()
		assert.Equal(t, 0, engine.CacheStats().Entries)
	})

	t.Run("close leaves caller store open", func(t *testing.T) {
		require.NoError(t, engine.Close())
		_, err := store.List(ctx)
		assert.NoError(t, err)
	})
}

func TestEngine_StoreWithoutCache(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, &StoredTemplate{Name: "v", Source: "one"}))
	engine := MustNew(WithStore(store))

	out, err := engine.RenderNamed(ctx, "v", nil)
	require.NoError(t, err)
	assert.Equal(t, "one", out)

	require.NoError(t, store.Save(ctx, &StoredTemplate{Name: "v", Source: "two"}))
	out, err = engine.RenderNamed(ctx, "v", nil)
	require.NoError(t, err)
	assert.Equal(t, "two", out)

	engine.Invalidate("v")
	engine.InvalidateAll()
}

func TestEngine_RenderNamedAsync(t *testing.T) {
	engine := MustNew()
	engine.MustRegisterTemplate("greet", "Hi {{ who }}")
	ctx := context.Background()

	out, err := engine.RenderNamedAsync(ctx, "greet", map[string]any{"who": Resolved("Ada")}).Wait()
	require.NoError(t, err)
	assert.Equal(t, "Hi Ada", out)

	_, err = engine.RenderNamedAsync(ctx, "missing", nil).Wait()
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestEngine_PendingInSyncRender(t *testing.T) {
	_, err := MustNew().Render(context.Background(), "{{ v }}", map[string]any{"v": Resolved(1)})
	require.Error(t, err)
	assert.True(t, IsRenderError(err))
	assert.ErrorIs(t, err, internal.ErrPendingInSync)
}

func TestEngine_PendingInsideCollections(t *testing.T) {
	engine := MustNew()
	ctx := context.Background()
	tmpl := engine.MustCompile(`{{ arr | join: "," }}|{{ arr }}|{{ rows | map: "name" | join: "+" }}`)
	data := map[string]any{
		"arr":  []any{Resolved("a"), Resolved("b")},
		"rows": []any{map[string]any{"name": Resolved("x")}, map[string]any{"name": "y"}},
	}

	out, err := tmpl.RenderAsync(ctx, data).Wait()
	require.NoError(t, err)
	assert.Equal(t, "a,b|ab|x+y", out)

	_, err = tmpl.Render(ctx, data)
	assert.ErrorIs(t, err, internal.ErrPendingInSync)
}
