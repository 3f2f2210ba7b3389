package internal

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type testProduct struct {
	Title string
	Price int `json:"price"`
	note  string
}

func TestToText(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"nil", nil, ""},
		{"undefined", Undefined{}, ""},
		{"string", "abc", "abc"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"int", 42, "42"},
		{"int64", int64(-3), "-3"},
		{"float", 2.5, "2.5"},
		{"whole float", 3.0, "3"},
		{"array", []any{"a", 1, nil, true}, "a1true"},
		{"string slice", []string{"x", "y"}, "xy"},
		{"map", map[string]any{"a": 1}, `{"a":1}`},
		{"error", errors.New("boom"), "boom"},
		{"empty sentinel", Empty, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToText(tt.input))
		})
	}
}

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected bool
	}{
		{"nil", nil, false},
		{"undefined", Undefined{}, false},
		{"false", false, false},
		{"true", true, true},
		{"empty string", "", true},
		{"zero", 0, true},
		{"empty array", []any{}, true},
		{"nil pointer", (*testProduct)(nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTruthy(tt.input))
		})
	}
}

func TestProperty(t *testing.T) {
	data := map[string]any{
		"name": "Ada",
		"tags": []any{"a", "b", "c"},
		"size": "custom",
	}

	tests := []struct {
		name     string
		value    any
		key      any
		expected any
	}{
		{"map key", data, "name", "Ada"},
		{"map key shadows size", data, "size", "custom"},
		{"missing key", data, "nope", Undefined{}},
		{"array index", data["tags"], 1, "b"},
		{"negative index", data["tags"], -1, "c"},
		{"out of range", data["tags"], 5, Undefined{}},
		{"whole float index", data["tags"], 1.0, "b"},
		{"fractional float index", data["tags"], 1.5, Undefined{}},
		{"infinite index", data["tags"], math.Inf(1), Undefined{}},
		{"negative infinite index", data["tags"], math.Inf(-1), Undefined{}},
		{"NaN index", data["tags"], math.NaN(), Undefined{}},
		{"array size", data["tags"], "size", 3},
		{"array first", data["tags"], "first", "a"},
		{"array last", data["tags"], "last", "c"},
		{"text size", "héllo", "size", 5},
		{"property of nil", nil, "x", Undefined{}},
		{"property of undefined", Undefined{}, "x", Undefined{}},
		{"index into text", "abc", 0, Undefined{}},
		{"struct field", testProduct{Title: "Mug"}, "Title", "Mug"},
		{"struct json tag", &testProduct{Price: 9}, "price", 9},
		{"unexported field", testProduct{note: "x"}, "note", Undefined{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Property(tt.value, tt.key))
		})
	}
}

func TestIterate(t *testing.T) {
	items, ok := Iterate([]any{1, 2})
	assert.True(t, ok)
	assert.Equal(t, []any{1, 2}, items)

	items, ok = Iterate(map[string]any{"b": 2, "a": 1})
	assert.True(t, ok)
	assert.Equal(t, []any{[]any{"a", 1}, []any{"b", 2}}, items)

	_, ok = Iterate("text")
	assert.False(t, ok)

	_, ok = Iterate(nil)
	assert.False(t, ok)
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name     string
		a, b     any
		expected bool
	}{
		{"same int", 1, 1, true},
		{"int and float", 1, 1.0, true},
		{"int and int64", 2, int64(2), true},
		{"number and text", 1, "1", false},
		{"nil and undefined", nil, Undefined{}, true},
		{"arrays", []any{1, "a"}, []string{"1", "a"}, false},
		{"equal arrays", []any{"x"}, []string{"x"}, true},
		{"empty text is empty", "", Empty, true},
		{"empty array is empty", []any{}, Empty, true},
		{"text is not empty", "a", Empty, false},
		{"whitespace is blank", "  ", Blank, true},
		{"false is blank", false, Blank, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Equal(tt.a, tt.b))
		})
	}
}

func TestCompareAndContains(t *testing.T) {
	c, ok := Compare(1, 2.5)
	assert.True(t, ok)
	assert.Equal(t, -1, c)

	c, ok = Compare("b", "a")
	assert.True(t, ok)
	assert.Equal(t, 1, c)

	_, ok = Compare(1, "a")
	assert.False(t, ok)

	assert.True(t, Contains("hello", "ell"))
	assert.True(t, Contains([]any{"go", "rust"}, "go"))
	assert.False(t, Contains([]any{1, 2}, 3))
	assert.True(t, Contains(map[string]any{"k": nil}, "k"))
	assert.False(t, Contains(nil, "x"))
}

func TestToList(t *testing.T) {
	assert.Equal(t, []any{}, ToList(nil))
	assert.Equal(t, []any{}, ToList(Undefined{}))
	assert.Equal(t, []any{"a"}, ToList("a"))
	assert.Equal(t, []any{1, 2}, ToList([]int{1, 2}))
}

func TestScope(t *testing.T) {
	data := map[string]any{"user": map[string]any{"name": "Ada"}, "x": "data"}
	globals := map[string]any{"site": "example", "x": "global"}
	scope := NewScope(data, globals)

	t.Run("lookup order", func(t *testing.T) {
		assert.Equal(t, "data", scope.Lookup("x"))
		assert.Equal(t, "example", scope.Lookup("site"))
		assert.Equal(t, Undefined{}, scope.Lookup("missing"))
	})

	t.Run("path lookup never fails", func(t *testing.T) {
		assert.Equal(t, "Ada", scope.GetPath("user", "name"))
		assert.Equal(t, Undefined{}, scope.GetPath("user", "address", "city"))
		assert.Equal(t, Undefined{}, scope.GetPath("missing", 0))
	})

	t.Run("push shadows and pop restores", func(t *testing.T) {
		scope.Push()
		scope.Set("x", "inner")
		assert.Equal(t, "inner", scope.Lookup("x"))
		assert.Equal(t, 1, scope.Depth())
		scope.Pop()
		assert.Equal(t, "data", scope.Lookup("x"))
		assert.Equal(t, 0, scope.Depth())
	})

	t.Run("set global survives pop", func(t *testing.T) {
		scope.Push()
		scope.SetGlobal("g", 1)
		scope.Pop()
		assert.Equal(t, 1, scope.Lookup("g"))
	})

	t.Run("global frame is never popped", func(t *testing.T) {
		scope.Pop()
		scope.Pop()
		assert.Equal(t, 0, scope.Depth())
		assert.Equal(t, 1, scope.Lookup("g"))
	})

	t.Run("caller data untouched", func(t *testing.T) {
		scope.Set("x", "shadow")
		assert.Equal(t, "data", data["x"])
		_, ok := data["g"]
		assert.False(t, ok)
	})
}
