package liquor

import (
	"time"

	"github.com/itsatony/go-liquor/internal"
)

// Default delimiters
const (
	DefaultOutputOpen  = internal.StrOutputOpen
	DefaultOutputClose = internal.StrOutputClose
	DefaultTagOpen     = internal.StrTagOpen
	DefaultTagClose    = internal.StrTagClose
)

// Default configuration values
const (
	DefaultMaxDepth           = internal.DefaultMaxDepth
	DefaultMaxIterations      = internal.DefaultMaxIterations
	DefaultMaxFrontMatterSize = 64 * 1024 // 64KB
)

// YAML front matter constants
const (
	FrontMatterDelimiter = "---"
	FrontMatterVar       = "page"
)

// Cache configuration defaults
const (
	DefaultCacheTTL        = 5 * time.Minute
	DefaultCacheMaxEntries = 1000
)

// Filesystem store constants
const (
	FilesystemDirPermissions  = 0755
	FilesystemFilePermissions = 0644
	FilesystemExtension       = ".liquid"
)

// Store driver names
const (
	StoreDriverNameMemory     = "memory"
	StoreDriverNameFilesystem = "filesystem"
	StoreDriverNamePostgres   = "postgres"
)

// PostgreSQL store driver configuration defaults
const (
	PostgresTablePrefix            = "liquor_"
	PostgresDefaultMaxOpenConns    = 25
	PostgresDefaultMaxIdleConns    = 5
	PostgresDefaultConnMaxLifetime = 5 * time.Minute
	PostgresDefaultConnMaxIdleTime = 5 * time.Minute
	PostgresDefaultQueryTimeout    = 30 * time.Second
)

// Metadata keys for cuserr.WithMetadata
const (
	MetaKeyLine     = "line"
	MetaKeyColumn   = "column"
	MetaKeyOffset   = "offset"
	MetaKeyTag      = "tag"
	MetaKeyFilter   = "filter"
	MetaKeyKind     = "kind"
	MetaKeyTemplate = "template"
	MetaKeyName     = "name"
	MetaKeyDriver   = "driver"
	MetaKeyPath     = "path"
)

// Error kinds stored under MetaKeyKind
const (
	ErrorKindSyntax = "syntax"
	ErrorKindRender = "render"
)

// Log messages
const (
	LogMsgEngineCreated     = "engine created"
	LogMsgTemplateCompiled  = "template compiled"
	LogMsgCompileFailed     = "template compilation failed"
	LogMsgTemplateLoaded    = "template loaded from store"
	LogMsgCacheHit          = "template cache hit"
	LogMsgCacheMiss         = "template cache miss"
	LogMsgCacheEvicted      = "template cache entry evicted"
	LogMsgTemplateRemoved   = "template invalidated"
	LogMsgFilterRegistered  = "custom filter registered"
	LogMsgTagRegistered     = "custom tag registered"
	LogMsgAsyncRenderStart  = "async render started"
	LogMsgAsyncRenderFailed = "async render failed"
)

// Log field names
const (
	LogFieldTemplate = "template_name"
	LogFieldFilter   = "filter"
	LogFieldTag      = "tag"
	LogFieldVersion  = "version"
	LogFieldEntries  = "entries"
	LogFieldSource   = "source_length"
)
