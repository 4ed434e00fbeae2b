/*
Package main is the entry point for the websearch-mcp server.

Usage:

	websearch-mcp [command]

Available Commands:

	serve       Run the HTTP/SSE and gRPC health servers, or MCP over stdio
	search      Run a single query and print the formatted results
	cache       Inspect or clear the result cache
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
)

func main() {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "websearch-mcp",
		Short:         "Web search exposed as an MCP tool over HTTP SSE",
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (defaults and MCP_* env vars when empty)")

	rootCmd.AddCommand(newServeCmd(&configFile))
	rootCmd.AddCommand(newSearchCmd(&configFile))
	rootCmd.AddCommand(newCacheCmd(&configFile))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
