package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cstaulbee/quickscope/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate [flow-id...]",
	Short: "Check flow documents for consistency",
	Long: `Loads and validates flows from the flow directory: schema shape,
stage references, reachability from the start stage, and template
slot paths. With no arguments every flow in the directory is checked.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := runOptions(cmd)

		engine, closer, err := cli.CreateEngine(opts, nil)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer closer()

		ids := args
		if len(ids) == 0 {
			ids, err = engine.Flows()
			if err != nil {
				fmt.Printf("Error listing flows: %v\n", err)
				os.Exit(1)
			}
			if len(ids) == 0 {
				fmt.Printf("No flow documents found in %s\n", opts.FlowDir)
				os.Exit(1)
			}
		}

		failed := false
		for _, id := range ids {
			if err := engine.Validate(id); err != nil {
				failed = true
				fmt.Printf("✗ %s: %v\n", id, err)
				continue
			}
			fmt.Printf("✓ %s\n", id)
		}
		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
