package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/postgresml/pgml-gorm/internal/mcp"
)

// maxConcurrentSearches bounds the queries a single search command runs at
// once.
const maxConcurrentSearches = 4

// Output formats of the search command.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// searchResults is the structured output for one query.
type searchResults struct {
	Query   string       `json:"query" yaml:"query"`
	Results []mcp.Result `json:"results" yaml:"results"`
}

func searchCmd(envFile *string) *cobra.Command {
	var (
		limit    int
		distance string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "List documents nearest in meaning to each QUERY",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := openEnv(ctx, *envFile)
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
			return runSearch(ctx, env.store(), args, limit, distance, output, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of results per query")
	cmd.Flags().StringVar(&distance, "distance", "cosine", "Distance metric: cosine, l2, inner_product, l1, hamming, jaccard")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json or yaml")

	return cmd
}

// runSearch runs every query concurrently and prints the results in query
// order.
func runSearch(ctx context.Context, store documentStore, queries []string, limit int, distance, output string, w io.Writer) error {
	switch output {
	case outputText, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unknown output format %q", output)
	}

	all := make([]searchResults, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSearches)
	for i, query := range queries {
		g.Go(func() error {
			results, err := store.Search(gctx, query, limit, distance)
			if err != nil {
				return fmt.Errorf("search %q: %w", query, err)
			}
			if results == nil {
				results = []mcp.Result{}
			}
			all[i] = searchResults{Query: query, Results: results}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	switch output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(all)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		return enc.Encode(all)
	}

	for _, sr := range all {
		if len(queries) > 1 {
			_, _ = fmt.Fprintf(w, "# %s\n", sr.Query)
		}
		if len(sr.Results) == 0 {
			_, _ = fmt.Fprintln(w, "no documents found")
			continue
		}
		for _, r := range sr.Results {
			_, _ = fmt.Fprintf(w, "%d\t%.4f\t%s\n", r.ID, r.Distance, r.Body)
		}
	}
	return nil
}
