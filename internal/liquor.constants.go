package internal

// TokenKind identifies the lexical class of a template token
type TokenKind string

// Token kind constants
const (
	TokenKindText   TokenKind = "TEXT"
	TokenKindOutput TokenKind = "OUTPUT"
	TokenKindTag    TokenKind = "TAG"
)

// NodeType identifies AST node types
type NodeType int

// Node type constants
const (
	NodeTypeRoot NodeType = iota
	NodeTypeText
	NodeTypeOutput
	NodeTypeTag
)

// Node type string names for debugging
const (
	NodeTypeNameRoot   = "ROOT"
	NodeTypeNameText   = "TEXT"
	NodeTypeNameOutput = "OUTPUT"
	NodeTypeNameTag    = "TAG"
)

// String returns the string representation of the node type
func (n NodeType) String() string {
	switch n {
	case NodeTypeText:
		return NodeTypeNameText
	case NodeTypeOutput:
		return NodeTypeNameOutput
	case NodeTypeTag:
		return NodeTypeNameTag
	default:
		return NodeTypeNameRoot
	}
}

// Default delimiters
const (
	StrOutputOpen  = "{{"
	StrOutputClose = "}}"
	StrTagOpen     = "{%"
	StrTagClose    = "%}"
	StrTrimMarker  = "-"
)

// Character constants
const (
	CharNewline     = '\n'
	CharDoubleQuote = '"'
	CharSingleQuote = '\''
	CharBackslash   = '\\'
	CharHash        = '#'
	CharDash        = '-'
	CharUnderscore  = '_'
	CharQuestion    = '?'
	CharDot         = '.'
)

// Built-in tag names
const (
	TagNameAssign     = "assign"
	TagNameCapture    = "capture"
	TagNameEndCapture = "endcapture"
	TagNameFor        = "for"
	TagNameEndFor     = "endfor"
	TagNameBreak      = "break"
	TagNameContinue   = "continue"
	TagNameIf         = "if"
	TagNameElsif      = "elsif"
	TagNameElse       = "else"
	TagNameEndIf      = "endif"
	TagNameUnless     = "unless"
	TagNameEndUnless  = "endunless"
	TagNameCase       = "case"
	TagNameWhen       = "when"
	TagNameEndCase    = "endcase"
	TagNameComment    = "comment"
	TagNameEndComment = "endcomment"
	TagNameRaw        = "raw"
	TagNameEndRaw     = "endraw"
	TagNameEcho       = "echo"
	TagNameInclude    = "include"
)

// Expression keywords
const (
	KeywordTrue     = "true"
	KeywordFalse    = "false"
	KeywordNil      = "nil"
	KeywordNull     = "null"
	KeywordEmpty    = "empty"
	KeywordBlank    = "blank"
	KeywordAnd      = "and"
	KeywordOr       = "or"
	KeywordContains = "contains"
	KeywordIn       = "in"
	KeywordReversed = "reversed"
	KeywordLimit    = "limit"
	KeywordOffset   = "offset"
	KeywordWith     = "with"
)

// Virtual properties available on every collection value
const (
	PropSize  = "size"
	PropFirst = "first"
	PropLast  = "last"
)

// Loop metadata keys bound under the forloop variable
const (
	ForloopVar        = "forloop"
	ForloopIndex      = "index"
	ForloopIndex0     = "index0"
	ForloopRindex     = "rindex"
	ForloopRindex0    = "rindex0"
	ForloopFirst      = "first"
	ForloopLast       = "last"
	ForloopLength     = "length"
	ForloopName       = "name"
	ForloopParentloop = "parentloop"
)

// Filter defaults
const (
	DefaultTruncateLength = 50
	DefaultTruncateWords  = 15
	DefaultEllipsis       = "..."
	LineBreakTag          = "<br />"
)

// Limits
const (
	DefaultMaxDepth      = 100
	DefaultMaxIterations = 1000000
	MaxSuggestions       = 3
	SuggestionDistance   = 3
	MaxResolveDepth      = 64
)

// Log messages
const (
	LogMsgLexerCreated      = "lexer created"
	LogMsgTokenizerStart    = "starting tokenization"
	LogMsgTokenizerEnd      = "tokenization complete"
	LogMsgParserCreated     = "parser created"
	LogMsgParserStart       = "starting parse"
	LogMsgParserEnd         = "parse complete"
	LogMsgRendererCreated   = "renderer created"
	LogMsgRenderStart       = "starting render"
	LogMsgRenderEnd         = "render complete"
	LogMsgRenderFailed      = "render failed"
	LogMsgTagInvoked        = "tag invoked"
	LogMsgFilterMissing     = "unknown filter passed through"
	LogMsgFilterRegistered  = "filter registered"
	LogMsgFilterCollision   = "filter registration collision - first-come-wins"
	LogMsgTagRegistered     = "tag registered"
	LogMsgTagCollision      = "tag registration collision - first-come-wins"
	LogMsgRegistryCreated   = "registry created"
	LogMsgPendingAwait      = "awaiting pending value"
	LogMsgForStart          = "starting for loop"
	LogMsgForEnd            = "for loop complete"
	LogMsgBranchSelected    = "branch selected"
	LogMsgTemplateIncluded  = "template included"
	LogMsgWhitespaceTrimmed = "whitespace control applied"
)

// Log field names
const (
	LogFieldSource     = "source_length"
	LogFieldTokens     = "token_count"
	LogFieldNodes      = "node_count"
	LogFieldTag        = "tag"
	LogFieldFilter     = "filter"
	LogFieldLine       = "line"
	LogFieldColumn     = "column"
	LogFieldDepth      = "depth"
	LogFieldBranch     = "branch"
	LogFieldIterations = "iterations"
	LogFieldTemplate   = "template_name"
	LogFieldMode       = "mode"
	LogFieldError      = "error"
)

// Render modes, used in logs
const (
	RenderModeSync  = "sync"
	RenderModeAsync = "async"
)
