package cmd

import (
	"fmt"
	"os"

	"github.com/relloyd/stageload/actions"
	"github.com/relloyd/stageload/config"
	"github.com/spf13/cobra"
)

var defaultCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Configure default values for command flags",
	Long: fmt.Sprintf(`Configure default values for command flags, where:

- Defaults are stored in config file %q
- Keys match the long name of a flag, e.g. batch-size or pause-ms`, configFilePath(config.DefaultsConfigFileFullName)),
}

var defaultAddCfg = actions.DefaultConfig{}

var defaultAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or set a default flag value",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := getDefaultsFile()
		if err != nil {
			return err
		}
		defaultAddCfg.ConfigFile = f
		defaultAddCfg.Out = os.Stdout
		return actions.RunDefaultAdd(&defaultAddCfg)
	},
}

var defaultListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all default flag values",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := getDefaultsFile()
		if err != nil {
			return err
		}
		return actions.RunDefaultList(os.Stdout, f)
	},
}

var defaultRemoveCfg = actions.DefaultConfig{}

var defaultRemoveCmd = &cobra.Command{
	Use:     "remove",
	Aliases: []string{"rm", "del", "delete"},
	Short:   "Remove a default flag value",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := getDefaultsFile()
		if err != nil {
			return err
		}
		defaultRemoveCfg.ConfigFile = f
		defaultRemoveCfg.Out = os.Stdout
		return actions.RunDefaultRemove(&defaultRemoveCfg)
	},
}

func init() {
	configCmd.AddCommand(defaultCmd)
	defaultCmd.AddCommand(defaultAddCmd, defaultListCmd, defaultRemoveCmd)
	defaultAddCmd.Flags().SortFlags = false
	defaultAddCmd.Flags().StringVarP(&defaultAddCfg.Key, "key", "k", "", "* The key to set in config. Match the name of the flag\n"+
		"to have this value take effect in commands")
	defaultAddCmd.Flags().StringVarP(&defaultAddCfg.Value, "value", "v", "", "* The default value to set")
	defaultAddCmd.Flags().BoolVarP(&defaultAddCfg.Force, "force", "f", false, "Overwrite existing values")
	_ = defaultAddCmd.MarkFlagRequired("key")
	_ = defaultAddCmd.MarkFlagRequired("value")
	defaultAddCmd.SilenceUsage = true
	defaultRemoveCmd.Flags().StringVarP(&defaultRemoveCfg.Key, "key", "k", "", "The key to remove from config")
	_ = defaultRemoveCmd.MarkFlagRequired("key")
	defaultRemoveCmd.SilenceUsage = true
	defaultListCmd.SilenceUsage = true
}

func getDefaultsFile() (*config.File, error) {
	if twelveFactorMode {
		return nil, fmt.Errorf("defaults cannot be configured when %v is set", envVarTwelveFactorMode)
	}
	return config.NewDefaultsFile()
}
