package liquor

import (
	"errors"
	"strconv"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-liquor/internal"
)

// Error message constants
const (
	ErrMsgSyntax              = "template syntax error"
	ErrMsgRender              = "template render failed"
	ErrMsgRegistrationFailed  = "registration failed"
	ErrMsgTemplateNotFound    = "template not found"
	ErrMsgEmptyTemplateName   = "template name cannot be empty"
	ErrMsgConfigRead          = "failed to read config file"
	ErrMsgConfigParse         = "failed to parse config"
	ErrMsgConfigInvalid       = "invalid config value"
	ErrMsgFrontMatterUnclosed = "front matter is not closed"
	ErrMsgFrontMatterTooLarge = "front matter exceeds maximum size"
	ErrMsgFrontMatterParse    = "front matter is not valid YAML"
	ErrMsgNilFilterFunc       = "filter function is nil"
	ErrMsgNilTagHandler       = "tag handler is nil"
)

// Error code constants for categorization
const (
	ErrCodeSyntax   = "LIQUOR_SYNTAX"
	ErrCodeRender   = "LIQUOR_RENDER"
	ErrCodeRegistry = "LIQUOR_REGISTRY"
	ErrCodeStore    = "LIQUOR_STORE"
	ErrCodeConfig   = "LIQUOR_CONFIG"
)

// MetaKeyDetail holds the full description of the underlying failure
const MetaKeyDetail = "detail"

// ErrTemplateNotFound is matched by errors.Is for any store lookup miss
var ErrTemplateNotFound = errors.New(ErrMsgTemplateNotFound)

// Position is a location in template source
type Position = internal.Position

// NewSyntaxError creates a syntax error with position context
func NewSyntaxError(msg string, pos Position, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeSyntax, msg).
			WithMetadata(MetaKeyDetail, cause.Error())
	} else {
		err = cuserr.NewValidationError(ErrCodeSyntax, msg)
	}
	return withPosition(err, pos).WithMetadata(MetaKeyKind, ErrorKindSyntax)
}

// NewRenderError creates a render error with tag and filter context
func NewRenderError(msg, tag, filter string, pos Position, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeRender, msg).
			WithMetadata(MetaKeyDetail, cause.Error())
	} else {
		err = cuserr.NewValidationError(ErrCodeRender, msg)
	}
	if tag != "" {
		err = err.WithMetadata(MetaKeyTag, tag)
	}
	if filter != "" {
		err = err.WithMetadata(MetaKeyFilter, filter)
	}
	return withPosition(err, pos).WithMetadata(MetaKeyKind, ErrorKindRender)
}

// NewTemplateNotFoundError creates an error for a name missing from a store
func NewTemplateNotFoundError(name string) error {
	return cuserr.WrapStdError(ErrTemplateNotFound, ErrCodeStore, ErrMsgTemplateNotFound).
		WithMetadata(MetaKeyName, name)
}

// NewConfigError creates a configuration error
func NewConfigError(msg, path string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeConfig, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeConfig, msg)
	}
	if path != "" {
		err = err.WithMetadata(MetaKeyPath, path)
	}
	return err
}

func withPosition(err *cuserr.CustomError, pos Position) *cuserr.CustomError {
	if pos.Line == 0 {
		return err
	}
	return err.
		WithMetadata(MetaKeyLine, strconv.Itoa(pos.Line)).
		WithMetadata(MetaKeyColumn, strconv.Itoa(pos.Column)).
		WithMetadata(MetaKeyOffset, strconv.Itoa(pos.Offset))
}

// wrapCompileError converts lexer and parser errors into syntax errors
func wrapCompileError(err error) error {
	var lexErr *internal.LexerError
	if errors.As(err, &lexErr) {
		return NewSyntaxError(ErrMsgSyntax, lexErr.Position, err)
	}
	var parseErr *internal.ParserError
	if errors.As(err, &parseErr) {
		wrapped := NewSyntaxError(ErrMsgSyntax, parseErr.Position, err)
		if parseErr.Tag != "" {
			var ce *cuserr.CustomError
			if errors.As(wrapped, &ce) {
				return ce.WithMetadata(MetaKeyTag, parseErr.Tag)
			}
		}
		return wrapped
	}
	return NewSyntaxError(ErrMsgSyntax, Position{}, err)
}

// wrapRenderError converts renderer errors into render errors
func wrapRenderError(err error) error {
	var renderErr *internal.RenderError
	if errors.As(err, &renderErr) {
		return NewRenderError(ErrMsgRender, renderErr.Tag, renderErr.Filter, renderErr.Position, err)
	}
	return NewRenderError(ErrMsgRender, "", "", Position{}, err)
}

// wrapRegistryError converts registry collisions into registry errors
func wrapRegistryError(err error) error {
	var regErr *internal.RegistryError
	if errors.As(err, &regErr) {
		return cuserr.WrapStdError(err, ErrCodeRegistry, ErrMsgRegistrationFailed).
			WithMetadata(MetaKeyName, regErr.Name)
	}
	return cuserr.WrapStdError(err, ErrCodeRegistry, ErrMsgRegistrationFailed)
}

// IsSyntaxError reports whether err came from compiling a template
func IsSyntaxError(err error) bool {
	return errorKind(err) == ErrorKindSyntax
}

// IsRenderError reports whether err came from rendering a template
func IsRenderError(err error) bool {
	return errorKind(err) == ErrorKindRender
}

// ErrorPosition returns the source position recorded on a syntax or
// render error
func ErrorPosition(err error) (Position, bool) {
	var ce *cuserr.CustomError
	if !errors.As(err, &ce) {
		return Position{}, false
	}
	line, ok := ce.GetMetadata(MetaKeyLine)
	if !ok {
		return Position{}, false
	}
	column, _ := ce.GetMetadata(MetaKeyColumn)
	offset, _ := ce.GetMetadata(MetaKeyOffset)

	var pos Position
	pos.Line, _ = strconv.Atoi(line)
	pos.Column, _ = strconv.Atoi(column)
	pos.Offset, _ = strconv.Atoi(offset)
	return pos, true
}

// ErrorDetail returns the full description of the underlying failure,
// including position, or err.Error() when none was recorded
func ErrorDetail(err error) string {
	var ce *cuserr.CustomError
	if errors.As(err, &ce) {
		if detail, ok := ce.GetMetadata(MetaKeyDetail); ok {
			return detail
		}
	}
	return err.Error()
}

func errorKind(err error) string {
	var ce *cuserr.CustomError
	if !errors.As(err, &ce) {
		return ""
	}
	kind, _ := ce.GetMetadata(MetaKeyKind)
	return kind
}
