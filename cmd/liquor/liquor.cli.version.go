package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	version = VersionUnknown
	commit  = VersionUnknown
	date    = VersionUnknown
)

// versionOutput represents JSON output for version
type versionOutput struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

func newVersionCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   CmdNameVersion,
		Short: CmdShortVersion,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != OutputFormatText && format != OutputFormatJSON {
				return newCLIError(ExitCodeUsageError, ErrMsgInvalidFormat, errors.New(format))
			}
			v := versionOutput{
				Version:   version,
				Commit:    commit,
				BuildTime: date,
				GoVersion: runtime.Version(),
			}
			if format == OutputFormatJSON {
				return outputVersionJSON(v, cmd.OutOrStdout())
			}
			return outputVersionText(v, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&format, FlagFormat, FlagFormatShort, FlagDefaultFormat, FlagUsageFormat)
	return cmd
}

func outputVersionText(v versionOutput, stdout io.Writer) error {
	_, err := fmt.Fprintf(stdout, VersionTextTemplate+FmtNewline, v.Version, v.Commit, v.BuildTime, v.GoVersion)
	return err
}

func outputVersionJSON(v versionOutput, stdout io.Writer) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(jsonBytes))
	return err
}
