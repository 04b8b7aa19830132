package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	pgml "github.com/postgresml/pgml-gorm"
	"github.com/postgresml/pgml-gorm/internal/database"
)

func explainCmd(envFile *string) *cobra.Command {
	var (
		limit    int
		distance string
	)

	cmd := &cobra.Command{
		Use:   "explain QUERY",
		Short: "Print the SQL a search for QUERY would run, without connecting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd.Context(), *envFile, database.WithDryRun())
			if err != nil {
				return err
			}
			defer env.close()

			if !cmd.Flags().Changed("limit") {
				limit = env.cfg.SearchLimit()
			}
			if !cmd.Flags().Changed("distance") {
				distance = env.cfg.Distance()
			}
			return runExplain(env.db.GORM(), env.model, args[0], limit, distance, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of results")
	cmd.Flags().StringVar(&distance, "distance", "cosine", "Distance metric: cosine, l2, inner_product, l1, hamming, jaccard")

	return cmd
}

// runExplain renders the search statement with its arguments inlined.
func runExplain(db *gorm.DB, model *pgml.Model[Document], query string, limit int, distance string, w io.Writer) error {
	d, err := pgml.ParseDistance(distance)
	if err != nil {
		return err
	}

	var searchErr error
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		q := model.VectorSearch(tx, embeddingColumn, query, pgml.WithDistance(d))
		if limit > 0 {
			q = q.Limit(limit)
		}
		var found []pgml.Neighbor[Document]
		q = q.Find(&found)
		searchErr = q.Error
		return q
	})
	if searchErr != nil {
		return searchErr
	}

	_, err = fmt.Fprintln(w, sql)
	return err
}
