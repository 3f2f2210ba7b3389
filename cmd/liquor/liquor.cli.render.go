package main

import (
	"errors"

	"github.com/itsatony/go-liquor"
	"github.com/spf13/cobra"
)

// renderConfig holds parsed render command configuration
type renderConfig struct {
	templatePath string
	name         string
	dataJSON     string
	dataFilePath string
	outputPath   string
	async        bool
	strict       bool
}

func newRenderCmd() *cobra.Command {
	cfg := &renderConfig{}

	cmd := &cobra.Command{
		Use:     CmdNameRender,
		Short:   CmdShortRender,
		Example: CmdExampleRender,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.templatePath, FlagTemplate, FlagTemplateShort, "", FlagUsageTemplate)
	flags.StringVarP(&cfg.name, FlagName, FlagNameShort, "", FlagUsageName)
	flags.StringVarP(&cfg.dataJSON, FlagData, FlagDataShort, "", FlagUsageData)
	flags.StringVarP(&cfg.dataFilePath, FlagDataFile, FlagDataFileShort, "", FlagUsageDataFile)
	flags.StringVarP(&cfg.outputPath, FlagOutput, FlagOutputShort, FlagDefaultOutput, FlagUsageOutput)
	flags.BoolVar(&cfg.async, FlagAsync, false, FlagUsageAsync)
	flags.BoolVar(&cfg.strict, FlagStrict, false, FlagUsageStrict)

	return cmd
}

func runRender(cmd *cobra.Command, cfg *renderConfig) error {
	if cfg.templatePath == "" && cfg.name == "" {
		return newCLIError(ExitCodeUsageError, ErrMsgMissingTemplate, nil)
	}
	if cfg.templatePath != "" && cfg.name != "" {
		return newCLIError(ExitCodeUsageError, ErrMsgTemplateAndName, nil)
	}

	data, err := loadData(cfg.dataJSON, cfg.dataFilePath)
	if err != nil {
		return newCLIError(ExitCodeInputError, ErrMsgInvalidData, err)
	}

	engine, err := newEngine(cmd, cfg.strict)
	if err != nil {
		return newCLIError(ExitCodeError, ErrMsgEngineFailed, err)
	}
	defer engine.Close()

	tmpl, err := loadTemplate(cmd, engine, cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var result string
	if cfg.async {
		result, err = tmpl.RenderAsync(ctx, data).Wait()
	} else {
		result, err = tmpl.Render(ctx, data)
	}
	if err != nil {
		return newCLIError(ExitCodeError, ErrMsgExecuteFailed, errors.New(liquor.ErrorDetail(err)))
	}

	if err := writeOutput(cfg.outputPath, []byte(result), cmd.OutOrStdout()); err != nil {
		return newCLIError(ExitCodeError, ErrMsgWriteOutputFailed, err)
	}
	return nil
}

// loadTemplate compiles the --template source or loads --name from the
// engine's store
func loadTemplate(cmd *cobra.Command, engine *liquor.Engine, cfg *renderConfig) (*liquor.Template, error) {
	if cfg.name != "" {
		tmpl, err := engine.Load(cmd.Context(), cfg.name)
		switch {
		case err == nil:
			return tmpl, nil
		case liquor.IsSyntaxError(err):
			return nil, newCLIError(ExitCodeValidationError, ErrMsgParseTemplateFailed, errors.New(liquor.ErrorDetail(err)))
		default:
			return nil, newCLIError(ExitCodeInputError, ErrMsgLoadTemplateFailed, err)
		}
	}

	source, err := readInput(cfg.templatePath, cmd.InOrStdin())
	if err != nil {
		return nil, newCLIError(ExitCodeInputError, ErrMsgReadFileFailed, err)
	}
	tmpl, err := engine.Compile(string(source))
	if err != nil {
		return nil, newCLIError(ExitCodeValidationError, ErrMsgParseTemplateFailed, errors.New(liquor.ErrorDetail(err)))
	}
	return tmpl, nil
}
