package liquor

import (
	"errors"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-liquor/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSyntaxError(t *testing.T) {
	t.Run("with cause", func(t *testing.T) {
		pos := Position{Line: 3, Column: 7, Offset: 21}
		cause := errors.New("unexpected token")
		err := NewSyntaxError(ErrMsgSyntax, pos, cause)

		assert.Contains(t, err.Error(), ErrMsgSyntax)
		assert.ErrorIs(t, err, cause)
		assert.True(t, IsSyntaxError(err))
		assert.False(t, IsRenderError(err))
		assert.Equal(t, "unexpected token", ErrorDetail(err))

		got, ok := ErrorPosition(err)
		require.True(t, ok)
		assert.Equal(t, pos, got)
	})

	t.Run("without position", func(t *testing.T) {
		err := NewSyntaxError(ErrMsgSyntax, Position{}, nil)

		_, ok := ErrorPosition(err)
		assert.False(t, ok)
		assert.True(t, IsSyntaxError(err))
	})
}

func TestNewRenderError(t *testing.T) {
	err := NewRenderError(ErrMsgRender, "for", "upcase", Position{Line: 1, Column: 4}, errors.New("bad"))

	var ce *cuserr.CustomError
	require.ErrorAs(t, err, &ce)

	tag, ok := ce.GetMetadata(MetaKeyTag)
	assert.True(t, ok)
	assert.Equal(t, "for", tag)

	filter, ok := ce.GetMetadata(MetaKeyFilter)
	assert.True(t, ok)
	assert.Equal(t, "upcase", filter)

	assert.True(t, IsRenderError(err))
	assert.False(t, IsSyntaxError(err))
}

func TestWrapCompileError(t *testing.T) {
	t.Run("lexer error", func(t *testing.T) {
		lexErr := &internal.LexerError{Message: "unterminated tag", Position: Position{Line: 2, Column: 3, Offset: 4}}
		err := wrapCompileError(lexErr)

		assert.True(t, IsSyntaxError(err))
		var target *internal.LexerError
		assert.ErrorAs(t, err, &target)
		pos, ok := ErrorPosition(err)
		require.True(t, ok)
		assert.Equal(t, 2, pos.Line)
		assert.Equal(t, lexErr.Error(), ErrorDetail(err))
	})

	t.Run("parser error carries tag", func(t *testing.T) {
		parseErr := &internal.ParserError{Message: "unclosed tag", Tag: "for", Position: Position{Line: 1, Column: 1}}
		err := wrapCompileError(parseErr)

		var ce *cuserr.CustomError
		require.ErrorAs(t, err, &ce)
		tag, ok := ce.GetMetadata(MetaKeyTag)
		assert.True(t, ok)
		assert.Equal(t, "for", tag)
	})

	t.Run("other error", func(t *testing.T) {
		cause := errors.New("odd")
		err := wrapCompileError(cause)
		assert.True(t, IsSyntaxError(err))
		assert.ErrorIs(t, err, cause)
	})
}

func TestWrapRenderError(t *testing.T) {
	renderErr := &internal.RenderError{Message: "filter failed", Filter: "divided_by", Position: Position{Line: 4, Column: 2}}
	err := wrapRenderError(renderErr)

	assert.True(t, IsRenderError(err))
	pos, ok := ErrorPosition(err)
	require.True(t, ok)
	assert.Equal(t, 4, pos.Line)

	var ce *cuserr.CustomError
	require.ErrorAs(t, err, &ce)
	filter, _ := ce.GetMetadata(MetaKeyFilter)
	assert.Equal(t, "divided_by", filter)
}

func TestNewTemplateNotFoundError(t *testing.T) {
	err := NewTemplateNotFoundError("page")

	assert.ErrorIs(t, err, ErrTemplateNotFound)
	var ce *cuserr.CustomError
	require.ErrorAs(t, err, &ce)
	name, ok := ce.GetMetadata(MetaKeyName)
	assert.True(t, ok)
	assert.Equal(t, "page", name)
}

func TestNewConfigError(t *testing.T) {
	cause := errors.New("missing")
	err := NewConfigError(ErrMsgConfigRead, "liquor.yaml", cause)

	assert.Contains(t, err.Error(), ErrMsgConfigRead)
	assert.ErrorIs(t, err, cause)

	var ce *cuserr.CustomError
	require.ErrorAs(t, err, &ce)
	path, ok := ce.GetMetadata(MetaKeyPath)
	assert.True(t, ok)
	assert.Equal(t, "liquor.yaml", path)
}

func TestErrorHelpers_PlainErrors(t *testing.T) {
	plain := errors.New("plain")

	assert.False(t, IsSyntaxError(plain))
	assert.False(t, IsRenderError(plain))
	_, ok := ErrorPosition(plain)
	assert.False(t, ok)
	assert.Equal(t, "plain", ErrorDetail(plain))
}
