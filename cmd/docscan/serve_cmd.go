package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mischegoss/docscan/internal/config"
	mcpserver "github.com/mischegoss/docscan/internal/mcp"
	"github.com/mischegoss/docscan/internal/scanner"
	"github.com/mischegoss/docscan/internal/watcher"
	"github.com/mischegoss/docscan/internal/web"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the docs index over a local HTTP API",
		Long:  "Starts a localhost-only HTTP server exposing /api/search, /api/status, and /api/pages over the current index artifact.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			if _, err := os.Stat(cfg.IndexPath()); err != nil {
				return userError("Cannot load the docs index", "Run 'docscan scan' first")
			}
			return web.Serve(addr, cfg.IndexPath(), Version)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server config)")
	return cmd
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the docs tree and rebuild the index on changes",
		Long:  "Monitors the docs directory for markdown changes and rebuilds the full index after a 2-second debounce. Runs an initial scan on startup.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			root := config.DocsPath()
			if root == "" {
				return userError("No docs directory found",
					"Pass --docs, set DOCSCAN_DOCS_PATH, or add [docs].path to .docscan.toml")
			}
			if _, _, err := scanner.ScanAndWrite(root, cfg); err != nil {
				return err
			}
			return watcher.Watch(root, cfg)
		},
	}
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP stdio server",
		RunE: func(cmd *cobra.Command, args []string) error {
			mcpserver.Version = Version
			return mcpserver.Serve()
		},
	}
}
