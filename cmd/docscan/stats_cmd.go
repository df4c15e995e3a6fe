package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mischegoss/docscan/internal/cli"
	"github.com/mischegoss/docscan/internal/config"
	"github.com/mischegoss/docscan/internal/index"
)

func statsCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func runStats(jsonOut bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	indexPath := cfg.IndexPath()
	doc, err := index.Load(indexPath)
	if err != nil {
		return userError("Cannot load the docs index", "Run 'docscan scan' first")
	}

	artifactSize := int64(0)
	if info, err := os.Stat(indexPath); err == nil {
		artifactSize = info.Size()
	}

	if jsonOut {
		data, _ := json.MarshalIndent(map[string]any{
			"page_count":    doc.PageCount,
			"chunk_count":   doc.ChunkCount,
			"checksum":      doc.Checksum,
			"generated_at":  doc.GeneratedAt,
			"artifact_size": artifactSize,
			"index_file":    indexPath,
		}, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("\n%sdocscan Index%s\n\n", cli.Bold, cli.Reset)
	fmt.Printf("  Pages:    %s\n", cli.FormatNumber(doc.PageCount))
	fmt.Printf("  Chunks:   %s\n", cli.FormatNumber(doc.ChunkCount))
	fmt.Printf("  Checksum: %s\n", doc.Checksum[:12])
	if age := doc.Age(); age > 0 {
		fmt.Printf("  Indexed:  %s ago\n", formatDuration(age))
	}
	fmt.Printf("  Size:     %.1f KB\n", float64(artifactSize)/1024)
	fmt.Printf("  File:     %s\n\n", cli.ShortenHome(indexPath))
	return nil
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	days := int(d.Hours() / 24)
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
