package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cstaulbee/quickscope/internal/cli"
)

var runCmd = &cobra.Command{
	Use:   "run <flow-id>",
	Short: "Run an interview on the terminal",
	Long: `Starts the named flow in interactive mode. Answers are read from
stdin; pass --session to name the session so it can be resumed later.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := runOptions(cmd)
		opts.FlowID = args[0]

		if err := cli.RunSession(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", "", "Session id to resume or create")
	runCmd.Flags().Bool("fresh", false, "Discard the named session before starting")
	runCmd.Flags().Bool("plain", false, "Disable markdown rendering and the banner")
	runCmd.Flags().Bool("json", false, "Emit turns as NDJSON and read raw input lines")
}

// runOptions collects the flag values shared across commands.
func runOptions(cmd *cobra.Command) cli.RunOptions {
	opts := cli.RunOptions{}
	opts.FlowDir, _ = cmd.Flags().GetString("dir")
	opts.Debug, _ = cmd.Flags().GetBool("debug")
	opts.Store, _ = cmd.Flags().GetString("store")
	opts.StorePath, _ = cmd.Flags().GetString("store-path")
	opts.RedisAddr, _ = cmd.Flags().GetString("redis-addr")
	opts.RedisPass, _ = cmd.Flags().GetString("redis-password")
	opts.RedisDB, _ = cmd.Flags().GetInt("redis-db")
	opts.EncryptionKey, _ = cmd.Flags().GetString("encryption-key")
	opts.PIIPatterns, _ = cmd.Flags().GetStringSlice("pii-mask")

	if cmd.Flags().Lookup("session") != nil {
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		opts.Plain, _ = cmd.Flags().GetBool("plain")
		opts.JSON, _ = cmd.Flags().GetBool("json")
	}
	return opts
}
