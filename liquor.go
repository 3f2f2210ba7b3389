// Package liquor provides a Liquid-style template engine.
//
// Templates mix literal text with output expressions and control tags:
//
//	Hello, {{ user.name | capitalize }}!
//	{% for item in cart limit: 3 %}- {{ item.title }}{% endfor %}
//
// # Basic Usage
//
// Create an engine, compile once and render many times:
//
//	engine := liquor.MustNew()
//	tmpl, err := engine.Compile("Hello, {{ name | upcase }}!")
//	result, err := tmpl.Render(ctx, map[string]any{"name": "ada"})
//	// result: "Hello, ADA!"
//
// Compiled templates are immutable and safe to render concurrently.
//
// # Template Syntax
//
// Output: {{ expression | filter: arg, key: value }}
//
//	{{ product.tags[0] | append: "!" }}
//	{{ (1..5) | join: "," }}
//
// Tags: {% name markup %}
//
//	{% assign total = price | times: qty %}
//	{% capture greeting %}Hi {{ name }}{% endcapture %}
//	{% if user.admin and active %}...{% elsif guest %}...{% else %}...{% endif %}
//	{% unless done %}...{% endunless %}
//	{% case kind %}{% when "a", "b" %}...{% else %}...{% endcase %}
//	{% for x in list reversed offset: 1 %}{{ forloop.index }}{% else %}empty{% endfor %}
//	{% include "partials/card" with product %}
//	{% raw %}{{ kept as is }}{% endraw %}
//	{% comment %}dropped{% endcomment %}
//
// A "-" inside a delimiter ({{- -}} or {%- -%}) trims the whitespace next
// to it.
//
// Undefined variables render as "" and never fail the render.
//
// # Front Matter
//
// A template may start with a YAML block, available as page:
//
//	---
//	title: Welcome
//	---
//	<h1>{{ page.title }}</h1>
//
// # Asynchronous Values
//
// Render data may hold Pending values, e.g. from Go or Defer. Render
// rejects them; RenderAsync awaits each one where it is used and keeps
// output in source order:
//
//	data := map[string]any{"user": liquor.Go(fetchUser)}
//	out, err := tmpl.RenderAsync(ctx, data).Wait()
//
// # Custom Filters and Tags
//
//	engine.MustRegisterFilter(&liquor.Filter{
//	    Name: "shout", MaxArgs: 0,
//	    Fn: func(in any, _ []any) (any, error) { return fmt.Sprint(in) + "!", nil },
//	})
//	engine.MustRegisterTag(liquor.NewTagFunc("year",
//	    func(_ *liquor.RenderState, _ any, _ func(liquor.Sink) error, sink liquor.Sink) error {
//	        _, err := sink.WriteString(strconv.Itoa(time.Now().Year()))
//	        return err
//	    }))
//
// # Named Templates and Stores
//
// Named templates come from RegisterTemplate or a TemplateStore
// ("memory", "filesystem" or "postgres"):
//
//	store, _ := liquor.OpenStore("filesystem", "./templates")
//	engine := liquor.MustNew(liquor.WithStore(store), liquor.WithCache(liquor.DefaultCacheConfig()))
//	out, err := engine.RenderNamed(ctx, "page", data)
//
// # Errors
//
// Compile errors satisfy IsSyntaxError and render errors IsRenderError;
// both carry line and column metadata readable with ErrorPosition.
package liquor
