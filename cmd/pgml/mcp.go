package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/postgresml/pgml-gorm/internal/mcp"
)

func mcpCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the search and add_document tools over MCP on stdio",
		Long: `Start a Model Context Protocol server on stdin and stdout.

Assistants can store documents and search them by meaning. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnv(cmd.Context(), *envFile)
			if err != nil {
				return err
			}
			defer env.close()

			env.logger.Info("starting MCP server", slog.String("version", version))
			return mcp.NewServer(env.store(), version, env.cfg.SearchLimit(), env.logger).ServeStdio()
		},
	}
}
