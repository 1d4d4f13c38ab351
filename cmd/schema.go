package cmd

import (
	"os"

	"github.com/relloyd/stageload/actions"
	"github.com/relloyd/stageload/constants"
	"github.com/spf13/cobra"
)

var schemaCfg = actions.SchemaConfig{}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect destination schemas",
	Long: `Inspect the destination schemas known to the loader, including any declared in
files supplied with --schema-file.`,
}

var schemaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List destination collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runSchemaList()
	},
}

var schemaShowCmd = &cobra.Command{
	Use:   "show <collection>",
	Short: "Show the fields, aliases and CREATE TABLE statement for a collection",
	Args:  getCollectionArgFunc(&schemaCfg.Collection),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runSchemaShow()
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaListCmd)
	schemaCmd.AddCommand(schemaShowCmd)
	switches.addFlag(schemaListCmd, &schemaCfg.SchemaFiles, "schema-file", "", false, "")
	switches.addFlag(schemaShowCmd, &schemaCfg.SchemaFiles, "schema-file", "", false, "")
	switches.addFlag(schemaShowCmd, &schemaCfg.StoreType, "store-type", constants.ConnectionTypePostgres, false, "")
}

func runSchemaList() error {
	schemaCfg.Out = os.Stdout
	return actions.RunSchemaList(&schemaCfg)
}

func runSchemaShow() error {
	schemaCfg.Out = os.Stdout
	return actions.RunSchemaShow(&schemaCfg)
}
