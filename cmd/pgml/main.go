// Package main is the entry point for the pgml CLI, a small tool that stores
// documents with database-computed embeddings and searches them by meaning.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/postgresml/pgml-gorm/internal/config"
	"github.com/postgresml/pgml-gorm/internal/log"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "pgml",
		Short:         "Store and search documents with PostgresML embeddings",
		Long:          `pgml inserts text into a documents table, letting the database compute each row's embedding with pgml.embed, and ranks documents by vector distance to a query.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetContext(log.WithAttrs(cmd.Context(), "command", cmd.Name()))
		},
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	cmd.AddCommand(addCmd(&envFile))
	cmd.AddCommand(searchCmd(&envFile))
	cmd.AddCommand(explainCmd(&envFile))
	cmd.AddCommand(mcpCmd(&envFile))
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from .env file and environment variables.
func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
