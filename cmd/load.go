package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/relloyd/stageload/actions"
	"github.com/relloyd/stageload/constants"
	"github.com/relloyd/stageload/report"
	"github.com/spf13/cobra"
)

type loadCmdConfig struct {
	actions.LoadConfig
	LogLevel string
	Output   string
}

var loadCfg = loadCmdConfig{}

var loadCmd = &cobra.Command{
	Use:   "load <collection>",
	Short: "Load a staged CSV file into a destination collection",
	Long: `Load the staged CSV file for a destination collection into the remote store:

- The destination is checked with a zero-row read before anything else happens;
  if it is missing the CREATE TABLE statement needed to provision it is printed
- Incoming columns are matched to the destination's fields case-insensitively and
  through its alias table; unknown columns are dropped
- Values are coerced to each field's type; missing markers such as NaN, null and
  N/A become null
- Rows are inserted in batches with a fixed pause between requests; a rejected
  batch is reported and the remaining batches are still attempted

Exit status is 0 when every row loaded (or there was nothing to load), 2 when
some batches failed, 3 when every batch failed and 1 for any other error.

Loads are not idempotent: running the same load twice inserts the rows twice
unless the destination enforces uniqueness.`,
	Args: getCollectionArgFunc(&loadCfg.Collection),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runLoad()
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().SortFlags = false
	switches.addFlag(loadCmd, &loadCfg.ConnectionName, "connection-name", constants.ConnectionNameDefault, false, "")
	switches.addFlag(loadCmd, &loadCfg.PipelineDir, "pipeline-dir", ".", false, "")
	switches.addFlag(loadCmd, &loadCfg.StagedFile, "staged-file", "", false, "")
	switches.addFlag(loadCmd, &loadCfg.SchemaFiles, "schema-file", "", false, "")
	switches.addFlag(loadCmd, &loadCfg.BatchSize, "batch-size", "0", false, "")
	switches.addFlag(loadCmd, &loadCfg.PauseMillis, "pause-ms", "300", false, "")
	switches.addFlag(loadCmd, &loadCfg.Aliases, "alias", "", false, "")
	switches.addFlag(loadCmd, &loadCfg.DateLayouts, "date-layout", "", false, "")
	switches.addFlag(loadCmd, &loadCfg.S3Region, "s3-region", "", false, "")
	switches.addFlag(loadCmd, &loadCfg.FailedRowsDir, "failed-rows-dir", "", false, "")
	switches.addFlag(loadCmd, &loadCfg.Output, "output", constants.OutputFormatText, false, "")
	switches.addFlag(loadCmd, &loadCfg.LogLevel, "log-level", "info", false, "")
}

func runLoad() error {
	log := newLogger(loadCfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cfg := loadCfg.LoadConfig
	cfg.ConnectionsFile = getConnectionsFile(log)
	cfg.Diagnostics = os.Stderr
	rep, err := actions.RunLoad(ctx, log, &cfg)
	if err != nil {
		return err
	}
	if err = rep.Render(os.Stdout, loadCfg.Output, report.IsTerminal(os.Stdout)); err != nil {
		return err
	}
	if code := rep.ExitCode(); code != constants.ExitCodeSuccess {
		return &exitError{code: code, msg: rep.StatusLine()}
	}
	return nil
}
