package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information for Stageload",
	Long:  `Show version information for Stageload`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf(`Stageload
  Version:	%v
  Build date:	%v
`, version, buildDate)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
