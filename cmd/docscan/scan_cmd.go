package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mischegoss/docscan/internal/cli"
	"github.com/mischegoss/docscan/internal/config"
	"github.com/mischegoss/docscan/internal/scanner"
)

func scanCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the docs tree and build the search index",
		Long:  "Walks the docs directory, parses every markdown page, chunks the content, analyzes page relationships, and writes the JSON index artifact.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output scan statistics as JSON")
	return cmd
}

func runScan(jsonOut bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	root := config.DocsPath()
	if root == "" {
		return userError("No docs directory found",
			"Pass --docs, set DOCSCAN_DOCS_PATH, or add [docs].path to .docscan.toml")
	}

	doc, stats, err := scanner.ScanAndWrite(root, cfg)
	if err != nil {
		return err
	}

	if jsonOut {
		data, _ := json.MarshalIndent(map[string]any{
			"pages_indexed":  stats.PagesIndexed,
			"chunks_created": stats.ChunksCreated,
			"files_skipped":  stats.FilesSkipped,
			"duration_ms":    stats.Duration.Milliseconds(),
			"checksum":       doc.Checksum,
			"index_file":     cfg.IndexPath(),
		}, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("\nScanned %s\n\n", cli.ShortenHome(root))
	fmt.Printf("  Pages:   %s indexed\n", cli.FormatNumber(stats.PagesIndexed))
	fmt.Printf("  Chunks:  %s created\n", cli.FormatNumber(stats.ChunksCreated))
	if stats.FilesSkipped > 0 {
		fmt.Printf("  Skipped: %s%d file(s) with errors%s\n", cli.Yellow, stats.FilesSkipped, cli.Reset)
	}
	fmt.Printf("  Took:    %s\n", stats.Duration.Round(time.Millisecond))
	fmt.Printf("  Index:   %s\n\n", cli.ShortenHome(cfg.IndexPath()))
	return nil
}
