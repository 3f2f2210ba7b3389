package main

// Command names
const (
	CmdNameRender   = "render"
	CmdNameValidate = "validate"
	CmdNameVersion  = "version"
	CmdNameHelp     = "help"
)

// Flag names - long form
const (
	FlagTemplate = "template"
	FlagName     = "name"
	FlagData     = "data"
	FlagDataFile = "data-file"
	FlagOutput   = "output"
	FlagFormat   = "format"
	FlagConfig   = "config"
	FlagAsync    = "async"
	FlagStrict   = "strict"
	FlagVerbose  = "verbose"
)

// Flag names - short form
const (
	FlagTemplateShort = "t"
	FlagNameShort     = "n"
	FlagDataShort     = "d"
	FlagDataFileShort = "f"
	FlagOutputShort   = "o"
	FlagFormatShort   = "F"
	FlagConfigShort   = "c"
	FlagVerboseShort  = "v"
)

// Flag usage strings
const (
	FlagUsageTemplate = `template file (use "-" for stdin)`
	FlagUsageName     = "named template from the configured store"
	FlagUsageData     = "JSON data string"
	FlagUsageDataFile = "JSON or YAML data file"
	FlagUsageOutput   = "output file"
	FlagUsageFormat   = "output format: text, json"
	FlagUsageConfig   = "engine config file (YAML)"
	FlagUsageAsync    = "render asynchronously"
	FlagUsageStrict   = "fail on unknown filters"
	FlagUsageVerbose  = "log engine activity to stderr"
)

// Flag default values
const (
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = "text"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Data file extensions parsed as YAML
const (
	ExtYAML = ".yaml"
	ExtYML  = ".yml"
)

// Error messages - ALL must be constants
const (
	ErrMsgUnknownCommand      = "unknown command"
	ErrMsgUsage               = "invalid usage"
	ErrMsgMissingTemplate     = "template source required"
	ErrMsgTemplateAndName     = "use either --template or --name, not both"
	ErrMsgInvalidData         = "invalid data"
	ErrMsgReadFileFailed      = "failed to read file"
	ErrMsgWriteOutputFailed   = "failed to write output"
	ErrMsgParseTemplateFailed = "template parsing failed"
	ErrMsgLoadTemplateFailed  = "failed to load template"
	ErrMsgExecuteFailed       = "template execution failed"
	ErrMsgEngineFailed        = "failed to create engine"
	ErrMsgInvalidFormat       = "invalid output format"
)

// CLI metadata
const (
	CLIName        = "liquor"
	CLIDescription = "Liquid-style template rendering CLI"
	CLILong        = `liquor renders and validates Liquid-style templates.

Templates come from a file, stdin, or a store named in the config file.`
)

// Command descriptions
const (
	CmdShortRender   = "Render a template with data"
	CmdShortValidate = "Validate a template without rendering"
	CmdShortVersion  = "Show version information"

	CmdExampleRender = `  liquor render -t page.liquid -d '{"name": "Alice"}'
  liquor render -t page.liquid -f data.yaml -o page.html
  cat page.liquid | liquor render -t - -d '{"name": "Bob"}'
  liquor render -c liquor.yaml -n emails/welcome -f user.json`

	CmdExampleValidate = `  liquor validate -t page.liquid
  cat page.liquid | liquor validate -t - -F json`
)

// Version output format templates
const (
	VersionTextTemplate = "liquor version %s\nCommit: %s\nBuilt: %s\nGo: %s"
	VersionUnknown      = "unknown"
)

// Validation output format templates
const (
	ValidationTextSuccess = "Template is valid"
	ValidationTextFailure = "Template is invalid:"
	ValidationTextIssue   = "  line %d, column %d: %s"
	ValidationTextNoPos   = "  %s"
)

// File permission constant
const (
	FilePermissions = 0644
)

// Format string constants
const (
	FmtErrorWithDetail = "%s: %s\n"
	FmtErrorWithCause  = "%s: %v\n"
	FmtNewline         = "\n"
)
