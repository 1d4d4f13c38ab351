package cmd

import (
	"os"

	"github.com/relloyd/stageload/actions"
	"github.com/spf13/cobra"
)

var configConnListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all connections",
	Long:  `List saved connections by printing them all to STDOUT with secrets redacted`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := getConnectionGetterSetter()
		if err != nil {
			return err
		}
		return actions.RunConnectionList(os.Stdout, f)
	},
}

func initConnList() {
	configConnCmd.AddCommand(configConnListCmd)
	configConnListCmd.SilenceUsage = true
}
