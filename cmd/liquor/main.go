package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func main() {
	exitCode := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	os.Exit(exitCode)
}

// run is the main entry point for the CLI, separated for testing
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(stdin, stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	if err == nil {
		return ExitCodeSuccess
	}

	var ce *cliError
	if errors.As(err, &ce) {
		ce.report(stderr)
		return ce.code
	}

	// Anything else comes from cobra: bad flags or an unknown command
	if strings.HasPrefix(err.Error(), ErrMsgUnknownCommand) {
		fmt.Fprintf(stdout, FmtErrorWithDetail, ErrMsgUnknownCommand, strings.Join(args, " "))
		_ = root.Usage()
		return ExitCodeUsageError
	}
	fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgUsage, err)
	return ExitCodeUsageError
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           CLIName,
		Short:         CLIDescription,
		Long:          CLILong,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringP(FlagConfig, FlagConfigShort, "", FlagUsageConfig)
	root.PersistentFlags().BoolP(FlagVerbose, FlagVerboseShort, false, FlagUsageVerbose)

	root.AddCommand(newRenderCmd(), newValidateCmd(), newVersionCmd())
	return root
}

// cliError carries the exit code for a failed command
type cliError struct {
	code  int
	msg   string
	cause error
}

func newCLIError(code int, msg string, cause error) *cliError {
	return &cliError{code: code, msg: msg, cause: cause}
}

func (e *cliError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *cliError) Unwrap() error {
	return e.cause
}

// report writes the error to stderr. Errors without a message have
// already been reported on stdout.
func (e *cliError) report(stderr io.Writer) {
	switch {
	case e.msg == "":
	case e.cause == nil:
		fmt.Fprintln(stderr, e.msg)
	default:
		fmt.Fprintf(stderr, FmtErrorWithCause, e.msg, e.cause)
	}
}
