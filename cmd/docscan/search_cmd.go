package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mischegoss/docscan/internal/cli"
	"github.com/mischegoss/docscan/internal/config"
	"github.com/mischegoss/docscan/internal/index"
	"github.com/mischegoss/docscan/internal/search"
)

func searchCmd() *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the docs index from the command line",
		Long: `Search indexed documentation pages by title, headers, keywords, and body.

Examples:
  docscan search "webhook configuration"
  docscan search --json "create user"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(query, limit, jsonOut)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results (default: search config)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func runSearch(query string, limit int, jsonOut bool) error {
	if strings.TrimSpace(query) == "" {
		return userError("Empty search query", "Provide a search term: docscan search \"your query\"")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	doc, err := index.Load(cfg.IndexPath())
	if err != nil {
		return userError("Cannot load the docs index", "Run 'docscan scan' first")
	}

	engine := search.NewEngine(doc, cfg.Search.MinScore)
	results := engine.Search(query)
	if limit <= 0 {
		limit = cfg.Search.MaxResults
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	if jsonOut {
		if results == nil {
			results = []search.Result{}
		}
		data, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("\n  No results found.")
		if suggestions := engine.Suggest(query); len(suggestions) > 0 {
			fmt.Printf("  %sDid you mean: %s?%s\n", cli.Dim, strings.Join(suggestions, ", "), cli.Reset)
		}
		fmt.Println()
		return nil
	}

	for i, r := range results {
		typeTag := ""
		if r.ContentType != "" {
			typeTag = fmt.Sprintf(" [%s]", r.ContentType)
		}

		fmt.Printf("\n%d. %s%s\n", i+1, r.Title, typeTag)
		fmt.Printf("   %s\n", r.Path)
		if r.Breadcrumbs != "" {
			fmt.Printf("   %s%s%s\n", cli.Dim, r.Breadcrumbs, cli.Reset)
		}
		fmt.Printf("   Score: %.1f\n", r.Score)

		if r.Snippet != "" {
			snippet := strings.ReplaceAll(r.Snippet, "\n", " ")
			fmt.Printf("   %s\n", cli.Truncate(snippet, 150))
		}
	}
	fmt.Println()
	return nil
}
