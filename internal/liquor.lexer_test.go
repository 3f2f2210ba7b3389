package internal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLexer_Tokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:  "plain text",
			input: "Hello, world!",
			expected: []Token{
				{Kind: TokenKindText, Value: "Hello, world!", Position: Position{Offset: 0, Line: 1, Column: 1}, End: 13},
			},
		},
		{
			name:  "output between text",
			input: "Hi {{ name }}!",
			expected: []Token{
				{Kind: TokenKindText, Value: "Hi ", Position: Position{Offset: 0, Line: 1, Column: 1}, End: 3},
				{Kind: TokenKindOutput, Value: "name", Position: Position{Offset: 3, Line: 1, Column: 4}, End: 13},
				{Kind: TokenKindText, Value: "!", Position: Position{Offset: 13, Line: 1, Column: 14}, End: 14},
			},
		},
		{
			name:  "tag on second line",
			input: "a\n{% assign x = 1 %}",
			expected: []Token{
				{Kind: TokenKindText, Value: "a\n", Position: Position{Offset: 0, Line: 1, Column: 1}, End: 2},
				{Kind: TokenKindTag, Value: "assign x = 1", Position: Position{Offset: 2, Line: 2, Column: 1}, End: 20},
			},
		},
		{
			name:  "trim markers",
			input: "{%- if x -%}{{- y -}}",
			expected: []Token{
				{Kind: TokenKindTag, Value: "if x", Position: Position{Offset: 0, Line: 1, Column: 1}, End: 12, TrimLeft: true, TrimRight: true},
				{Kind: TokenKindOutput, Value: "y", Position: Position{Offset: 12, Line: 1, Column: 13}, End: 21, TrimLeft: true, TrimRight: true},
			},
		},
		{
			name:  "closing delimiter inside quotes",
			input: `{{ "a }} b" }}`,
			expected: []Token{
				{Kind: TokenKindOutput, Value: `"a }} b"`, Position: Position{Offset: 0, Line: 1, Column: 1}, End: 14},
			},
		},
		{
			name:  "empty output",
			input: "{{}}",
			expected: []Token{
				{Kind: TokenKindOutput, Value: "", Position: Position{Offset: 0, Line: 1, Column: 1}, End: 4},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewLexer(tt.input, zap.NewNop()).Tokenize()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tokens)
		})
	}
}

func TestLexer_TokensCoverSource(t *testing.T) {
	input := "a {{ b }} c {%- d -%}\n e {% raw %}{{ x }}{% endraw %}"
	tokens, err := NewLexer(input, nil).Tokenize()
	require.NoError(t, err)

	offset := 0
	for _, tok := range tokens {
		assert.Equal(t, offset, tok.Position.Offset, "token %s", tok)
		offset = tok.End
	}
	assert.Equal(t, len(input), offset)
}

func TestLexer_Unterminated(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
		pos     Position
	}{
		{"output", "abc {{ name", ErrMsgUnterminatedOutput, Position{Offset: 4, Line: 1, Column: 5}},
		{"tag", "x\n  {% if", ErrMsgUnterminatedTag, Position{Offset: 4, Line: 2, Column: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLexer(tt.input, nil).Tokenize()
			require.Error(t, err)
			var lexErr *LexerError
			require.ErrorAs(t, err, &lexErr)
			assert.Equal(t, tt.message, lexErr.Message)
			assert.Equal(t, tt.pos, lexErr.Position)
		})
	}
}

func TestLexer_CustomDelimiters(t *testing.T) {
	config := DefaultLexerConfig()
	config.OutputOpen, config.OutputClose = "[[", "]]"
	config.TagOpen, config.TagClose = "[%", "%]"

	tokens, err := NewLexerWithConfig("{{ x }} [[ y ]][% z %]", config, nil).Tokenize()
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, "{{ x }} ", tokens[0].Value)
	assert.True(t, tokens[1].IsOutput())
	assert.Equal(t, "y", tokens[1].Value)
	assert.True(t, tokens[2].IsTag())
	assert.Equal(t, "z", tokens[2].Value)
}

func TestLexer_FirstLine(t *testing.T) {
	config := DefaultLexerConfig()
	config.FirstLine = 5

	tokens, err := NewLexerWithConfig("a\n{{ b }}", config, nil).Tokenize()
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, 6, tokens[1].Position.Line)
}

func TestApplyWhitespaceControl(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"no markers", "a {{ x }} b", []string{"a ", "x", " b"}},
		{"trim left", "a \n\t{{- x }} b", []string{"a", "x", " b"}},
		{"trim right", "a {{ x -}} \n b", []string{"a ", "x", "b"}},
		{"both sides", "{%- assign x = 1 -%}\n  {{x}}", []string{"assign x = 1", "x"}},
		{"unicode space", "a  {{- x }}", []string{"a", "x"}},
		{"marker without neighbour text", "{{- x -}}{{- y -}}", []string{"x", "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewLexer(tt.input, nil).Tokenize()
			require.NoError(t, err)
			trimmed := ApplyWhitespaceControl(tokens)

			values := make([]string, len(trimmed))
			for i, tok := range trimmed {
				values[i] = tok.Value
			}
			assert.Equal(t, tt.expected, values)
		})
	}
}

func TestApplyWhitespaceControl_Pure(t *testing.T) {
	tokens, err := NewLexer("a  {{- x -}}  b", nil).Tokenize()
	require.NoError(t, err)

	first := ApplyWhitespaceControl(tokens)
	second := ApplyWhitespaceControl(tokens)
	assert.Equal(t, first, second)
	assert.Equal(t, "a  ", tokens[0].Value)
	assert.Equal(t, "  b", tokens[2].Value)
}

func TestApplyWhitespaceControl_AdjustsPosition(t *testing.T) {
	tokens, err := NewLexer("{{ x -}}\n\n  b", nil).Tokenize()
	require.NoError(t, err)

	trimmed := ApplyWhitespaceControl(tokens)
	require.Len(t, trimmed, 2)
	assert.Equal(t, Position{Offset: 12, Line: 3, Column: 3}, trimmed[1].Position)
	assert.True(t, strings.HasPrefix(trimmed[1].Value, "b"))
}
