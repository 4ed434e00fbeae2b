package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the result cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := bootstrap(*configFile, true)
			if err != nil {
				return err
			}
			defer cleanup()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(app.Search.CacheStats(cmd.Context()))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached result",
		Long:  "Remove every cached result. Only meaningful for the redis backend; the memory cache lives inside the serve process.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := bootstrap(*configFile, true)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := app.Search.ClearCache(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "All cached results have been cleared")
			return err
		},
	})

	return cmd
}
