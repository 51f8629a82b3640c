package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/agentdex/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			out, err := version.Get().JSON()
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}
		fmt.Println(version.Get().String())
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("json", false, "Output version as JSON")
	rootCmd.AddCommand(versionCmd)
}
