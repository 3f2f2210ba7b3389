package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/itsatony/go-liquor"
	"github.com/spf13/cobra"
)

// validateConfig holds parsed validate command configuration
type validateConfig struct {
	templatePath string
	format       string
}

// validationOutput represents JSON output for validation
type validationOutput struct {
	Valid bool                   `json:"valid"`
	Error *validationErrorOutput `json:"error,omitempty"`
}

type validationErrorOutput struct {
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

func newValidateCmd() *cobra.Command {
	cfg := &validateConfig{}

	cmd := &cobra.Command{
		Use:     CmdNameValidate,
		Short:   CmdShortValidate,
		Example: CmdExampleValidate,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.templatePath, FlagTemplate, FlagTemplateShort, "", FlagUsageTemplate)
	flags.StringVarP(&cfg.format, FlagFormat, FlagFormatShort, FlagDefaultFormat, FlagUsageFormat)

	return cmd
}

func runValidate(cmd *cobra.Command, cfg *validateConfig) error {
	if cfg.templatePath == "" {
		return newCLIError(ExitCodeUsageError, ErrMsgMissingTemplate, nil)
	}
	if cfg.format != OutputFormatText && cfg.format != OutputFormatJSON {
		return newCLIError(ExitCodeUsageError, ErrMsgInvalidFormat, errors.New(cfg.format))
	}

	source, err := readInput(cfg.templatePath, cmd.InOrStdin())
	if err != nil {
		return newCLIError(ExitCodeInputError, ErrMsgReadFileFailed, err)
	}

	engine, err := newEngine(cmd, false)
	if err != nil {
		return newCLIError(ExitCodeError, ErrMsgEngineFailed, err)
	}
	defer engine.Close()

	err = engine.Validate(string(source))
	if err != nil && !liquor.IsSyntaxError(err) {
		return newCLIError(ExitCodeError, ErrMsgParseTemplateFailed, err)
	}

	if cfg.format == OutputFormatJSON {
		outputValidationJSON(err, cmd.OutOrStdout())
	} else {
		outputValidationText(err, cmd.OutOrStdout())
	}

	if err != nil {
		// Already reported on stdout
		return newCLIError(ExitCodeValidationError, "", err)
	}
	return nil
}

func outputValidationText(err error, stdout io.Writer) {
	if err == nil {
		fmt.Fprintln(stdout, ValidationTextSuccess)
		return
	}

	fmt.Fprintln(stdout, ValidationTextFailure)
	if pos, ok := liquor.ErrorPosition(err); ok {
		fmt.Fprintf(stdout, ValidationTextIssue+FmtNewline, pos.Line, pos.Column, liquor.ErrorDetail(err))
		return
	}
	fmt.Fprintf(stdout, ValidationTextNoPos+FmtNewline, liquor.ErrorDetail(err))
}

func outputValidationJSON(err error, stdout io.Writer) {
	output := validationOutput{Valid: err == nil}
	if err != nil {
		output.Error = &validationErrorOutput{Message: liquor.ErrorDetail(err)}
		if pos, ok := liquor.ErrorPosition(err); ok {
			output.Error.Line = pos.Line
			output.Error.Column = pos.Column
		}
	}

	jsonBytes, _ := json.MarshalIndent(output, "", "  ")
	fmt.Fprintln(stdout, string(jsonBytes))
}
