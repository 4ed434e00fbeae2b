package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lk2023060901/websearch-mcp/internal/websearch/biz"
)

func newSearchCmd(configFile *string) *cobra.Command {
	var (
		maxResults int
		region     string
		safeSearch string
		timeLimit  string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a single search and print the results",
		Example: `  websearch-mcp search "golang generics"
  websearch-mcp search -n 3 --json "site:go.dev errgroup"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := bootstrap(*configFile, true)
			if err != nil {
				return err
			}
			defer cleanup()

			raw := biz.RawParams{
				Query:      strings.Join(args, " "),
				Region:     region,
				SafeSearch: safeSearch,
				TimeLimit:  timeLimit,
			}
			if cmd.Flags().Changed("max-results") {
				raw.MaxResults = &maxResults
			}

			params, err := biz.NewParams(raw)
			if err != nil {
				return err
			}

			outcome, err := app.Search.Search(cmd.Context(), params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(outcome)
			}
			_, err = fmt.Fprintln(out, outcome.Text)
			return err
		},
	}

	cmd.Flags().IntVarP(&maxResults, "max-results", "n", 5, "Number of results (capped at 10)")
	cmd.Flags().StringVar(&region, "region", "", "Region code, e.g. us-en")
	cmd.Flags().StringVar(&safeSearch, "safesearch", "", "on, moderate or off")
	cmd.Flags().StringVar(&timeLimit, "timelimit", "", "d, w, m or y")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}
