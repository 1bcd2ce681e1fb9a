package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cstaulbee/quickscope/internal/cli"
	"github.com/cstaulbee/quickscope/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph <flow-id>",
	Short: "Export a flow's stage graph as a Mermaid diagram",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := runOptions(cmd)

		engine, closer, err := cli.CreateEngine(opts, nil)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer closer()

		fl, err := engine.Loader().Load(args[0])
		if err != nil {
			fmt.Printf("Error loading flow: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(graph.Mermaid(fl, nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
