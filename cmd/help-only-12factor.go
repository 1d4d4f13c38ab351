package cmd

import (
	"fmt"

	"github.com/relloyd/stageload/constants"
	"github.com/spf13/cobra"
)

var twelveFactorCmd = &cobra.Command{
	Use:   "12f",
	Short: `View help notes for running in Twelve-Factor mode`,
	Long: fmt.Sprintf(`
Stageload can be controlled by environment variables, which suits schedulers,
containers and serverless environments.

To enable Twelve-Factor mode, set environment variable %[1]s_12FACTOR_MODE=1,
or %[1]s_12FACTOR_MODE=lambda to run as an AWS Lambda handler. To supply flags
documented by the regular command-line usage, set an equivalent environment
variable using the following convention:

<%[1]s>_<flag long-name in upper case with dashes as underscores>

For example, this will load the staged NASA APOD file into Supabase:

export %[1]s_12FACTOR_MODE=1
export %[1]s_LOG_LEVEL=debug
export %[1]s_COMMAND=load
export %[1]s_COLLECTION=nasa_apod
export %[1]s_PIPELINE_DIR=/srv/pipeline
export %[1]s_BATCH_SIZE=50
export SUPABASE_URL=https://<project>.supabase.co
export SUPABASE_KEY=<service key>

Then execute the CLI tool without any arguments or flags to kick off the load.
Use %[1]s_COMMAND=schema with %[1]s_SUBCOMMAND=list or show to inspect schemas.
`, constants.EnvVarPrefix),
}

func init() {
	rootCmd.AddCommand(twelveFactorCmd)
}
