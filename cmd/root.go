package cmd

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/pkg/errors"
	"github.com/relloyd/stageload/constants"
	"github.com/relloyd/stageload/logger"
	"github.com/spf13/cobra"
)

var (
	// Default values may be set at compile time.
	version          = "0.1.0"
	buildDate        = "2024-01-02T03:04+0000"
	stackDumpOnPanic bool
)

var rootCmd = &cobra.Command{
	Use:   "sl",
	Short: "Stageload moves staged CSV files into a remote table store",
	Long: `Stageload is the last step of a small data pipeline. It reads a staged CSV file,
normalizes its columns to a known destination schema, coerces values to their wire
types and inserts the rows in paced batches into Supabase, PostgREST, Postgres,
SQL Server or Snowflake.

Store credentials are read from the environment (a .env file in the working
directory is loaded first) or from connections saved with 'sl config conn add'.`,
	SilenceErrors: false,
}

func init() {
	// General setup.
	cobra.EnableCommandSorting = false
	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&stackDumpOnPanic, "print-stack", false, "Print a stack dump if there is a panic")
	_ = rootCmd.PersistentFlags().MarkHidden("print-stack")
}

// newLogger returns the logger used by commands.
// Lambda runs log JSON for CloudWatch.
func newLogger(level string) logger.Logger {
	log := logger.NewLogger("stageload", level, stackDumpOnPanic)
	if lambdaMode {
		log.SetFormatJSON()
	}
	return log
}

// exitError carries the process exit code for runs that finished without loading everything.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	return e.msg
}

// exitCode maps the error returned by a command to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return constants.ExitCodeSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return constants.ExitCodeFatal
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if twelveFactorMode { // if we are running based on environment variables...
		if lambdaMode { // if we should handle lambda execution...
			lambda.Start(func() error { return execute12FactorMode(twelveFactorActions) })
		} else {
			// execute12FactorMode logs the error.
			os.Exit(exitCode(execute12FactorMode(twelveFactorActions)))
		}
	} else { // else we're using CLI args and flags via Cobra...
		// Execute() prints the error.
		os.Exit(exitCode(rootCmd.Execute()))
	}
}
