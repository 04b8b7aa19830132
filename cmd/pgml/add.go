package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func addCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "add TEXT...",
		Short: "Insert documents; the database embeds each one",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := openEnv(ctx, *envFile)
			if err != nil {
				return err
			}
			defer env.close()

			return runAdd(ctx, env.store(), args, cmd.OutOrStdout())
		},
	}
}

func runAdd(ctx context.Context, store documentStore, texts []string, w io.Writer) error {
	ids, err := store.Add(ctx, texts)
	if err != nil {
		return err
	}
	for _, id := range ids {
		_, _ = fmt.Fprintf(w, "added %d\n", id)
	}
	return nil
}
