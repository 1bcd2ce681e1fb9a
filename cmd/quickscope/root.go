package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quickscope",
	Short: "Quickscope is a deterministic structured-interview engine",
	Long: `Quickscope runs multi-turn interviews declared as YAML stage graphs:
questions, confirmations, routing gates, and deterministic parsing
actions, with sessions that survive restarts.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Local overrides first, then the committed defaults.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringP("dir", "d", ".", "Directory containing the flow documents")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")

	rootCmd.PersistentFlags().String("store", envOr("QUICKSCOPE_STORE", "memory"), "Session store backend: memory, file or redis")
	rootCmd.PersistentFlags().String("store-path", os.Getenv("QUICKSCOPE_STORE_PATH"), "Directory for the file store")
	rootCmd.PersistentFlags().String("redis-addr", envOr("QUICKSCOPE_REDIS_ADDR", "localhost:6379"), "Redis address for the redis store")
	rootCmd.PersistentFlags().String("redis-password", os.Getenv("QUICKSCOPE_REDIS_PASSWORD"), "Redis password")
	rootCmd.PersistentFlags().Int("redis-db", 0, "Redis database number")

	rootCmd.PersistentFlags().String("encryption-key", os.Getenv("QUICKSCOPE_ENCRYPTION_KEY"), "Base64 AES-256 key for session encryption at rest")
	rootCmd.PersistentFlags().StringSlice("pii-mask", nil, "Slot key patterns to mask before persisting (repeatable)")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
