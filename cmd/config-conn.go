package cmd

import (
	"fmt"

	"github.com/relloyd/stageload/config"
	"github.com/spf13/cobra"
)

var configConnCmd = &cobra.Command{
	Use:     "connections",
	Aliases: []string{"conn"},
	Short:   "Configure connection details",
	Long: fmt.Sprintf(`Configure named store connections for use by the load command where:

- Connections are stored in file %q
- The file is readable by its owner only`, configFilePath(config.ConnectionsConfigFileFullName)),
}

func init() {
	configCmd.AddCommand(configConnCmd)
	configCmd.Flags().SortFlags = false
	initConnAdd()
	initConnList()
	initConnRemove()
}
