package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestNames(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		candidates []string
		limit      int
		expected   []string
	}{
		{"transposed letters", "upcaes", []string{"downcase", "upcase", "append"}, 3, []string{"upcase"}},
		{"short target allows one edit", "fo", []string{"for", "if"}, 3, []string{"for"}},
		{"case insensitive", "UPCASE", []string{"upcase"}, 3, []string{"upcase"}},
		{"limit keeps candidate order", "ab", []string{"abc", "abd", "abe"}, 2, []string{"abc", "abd"}},
		{"closest first", "sort", []string{"sorted", "sort_natural", "sor"}, 3, []string{"sor", "sorted"}},
		{"empty target", "", []string{"for"}, 3, nil},
		{"no candidates", "for", nil, 3, nil},
		{"zero limit", "fo", []string{"for"}, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestNames(tt.target, tt.candidates, tt.limit)
			if tt.expected == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSuggestNames_ExactMatchExcluded(t *testing.T) {
	assert.Empty(t, SuggestNames("for", []string{"for"}, 3))
}

func TestFormatSuggestions(t *testing.T) {
	assert.Equal(t, "", FormatSuggestions(nil))
	assert.Equal(t, ". Did you mean 'a'?", FormatSuggestions([]string{"a"}))
	assert.Equal(t, ". Did you mean 'a' or 'b'?", FormatSuggestions([]string{"a", "b"}))
	assert.Equal(t, ". Did you mean 'a', 'b' or 'c'?", FormatSuggestions([]string{"a", "b", "c"}))
}

func TestEditDistance(t *testing.T) {
	assert.Equal(t, 3, editDistance("kitten", "sitting"))
	assert.Equal(t, 3, editDistance("", "abc"))
	assert.Equal(t, 3, editDistance("abc", ""))
	assert.Equal(t, 1, editDistance("héllo", "hello"))
	assert.Equal(t, 0, editDistance("same", "same"))
}
