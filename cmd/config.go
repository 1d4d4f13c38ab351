package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/relloyd/stageload/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure connections and default flag values",
	Long: fmt.Sprintf(`Configure connections & default parameters where:

- Connections are stored in file %q
- Default flag values are stored in file %q
`, configFilePath(config.ConnectionsConfigFileFullName), configFilePath(config.DefaultsConfigFileFullName)),
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// configFilePath returns the full path of a file in the config home directory for help text.
func configFilePath(name string) string {
	dir, err := config.GetConfigHomeDir()
	if err != nil {
		dir = "~/" + config.MainDir
	}
	return filepath.Join(dir, name)
}
