package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cstaulbee/quickscope"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of quickscope",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("quickscope version %s\n", quickscope.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
