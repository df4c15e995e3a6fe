// Package main is the entrypoint for the docscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mischegoss/docscan/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "docscan",
		Short: "Documentation indexer and search engine",
		Long:  "docscan chunks markdown documentation into a JSON search index and serves it from the command line, a local HTTP API, or an MCP server.",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	root.AddCommand(scanCmd())
	root.AddCommand(searchCmd())
	root.AddCommand(watchCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(mcpCmd())
	root.AddCommand(statsCmd())
	root.AddCommand(configCmd())
	root.AddCommand(versionCmd())

	// Global --docs flag
	root.PersistentFlags().StringVar(&config.DocsOverride, "docs", "", "Docs directory (overrides auto-detect)")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the docscan version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("docscan %s\n", Version)
			return nil
		},
	}
}

// ---------- error helpers ----------

type docscanError struct {
	message string
	hint    string
}

func (e *docscanError) Error() string {
	return fmt.Sprintf("%s\n  Hint: %s", e.message, e.hint)
}

func userError(message, hint string) error {
	return &docscanError{message: message, hint: hint}
}
