// Package mcp implements the MCP server for docscan.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mischegoss/docscan/internal/config"
	"github.com/mischegoss/docscan/internal/index"
	"github.com/mischegoss/docscan/internal/scanner"
	"github.com/mischegoss/docscan/internal/search"
)

var (
	cfg          *config.Config
	docsRoot     string
	lastScanTime time.Time
	scanMu       sync.Mutex

	engineMu sync.Mutex
	engine   *search.Engine
	doc      *index.Document
)

const rescanCooldown = 60 * time.Second

// Version is set by the caller (main) before calling Serve.
var Version = "dev"

// Serve starts the MCP server on stdio.
func Serve() error {
	var err error
	cfg, err = config.LoadConfig()
	if err != nil {
		return err
	}
	root := config.DocsPath()
	if root == "" {
		return config.ErrNoDocs
	}
	docsRoot, _ = filepath.Abs(root)

	if err := loadIndex(); err != nil {
		return err
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "docscan",
		Version: Version,
	}, nil)

	registerTools(server)

	return server.Run(context.Background(), &mcp.StdioTransport{})
}

// loadIndex loads the artifact from disk and rebuilds the engine.
func loadIndex() error {
	d, err := index.Load(cfg.IndexPath())
	if err != nil {
		return fmt.Errorf("%w (%v)", config.ErrNoIndex, err)
	}
	engineMu.Lock()
	doc = d
	engine = search.NewEngine(d, cfg.Search.MinScore)
	engineMu.Unlock()
	return nil
}

func currentEngine() (*search.Engine, *index.Document) {
	engineMu.Lock()
	defer engineMu.Unlock()
	return engine, doc
}

func registerTools(server *mcp.Server) {
	// search_docs
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_docs",
		Description: "Search the documentation index for relevant pages. Use this when the user asks about product features, configuration, or procedures covered by the docs.\n\nArgs:\n  query: Natural language search query (e.g. 'webhook configuration', 'create user')\n  top_k: Number of results (default 8, max 100)\n\nReturns ranked list of matching pages with titles, URLs, paths, and snippets.",
	}, handleSearchDocs)

	// get_page
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_page",
		Description: "Read the full markdown source of a documentation page. Use this after search_docs returns a relevant result and you need the complete text. Paths are relative to the docs root.\n\nArgs:\n  path: Relative path from docs root (as returned by search_docs)\n\nReturns full markdown text content.",
	}, handleGetPage)

	// rescan
	mcp.AddTool(server, &mcp.Tool{
		Name:        "rescan",
		Description: "Re-scan the docs tree and rebuild the search index. Use this if the user has added or changed documentation and search results seem stale.\n\nReturns scan statistics.",
	}, handleRescan)

	// index_stats
	mcp.AddTool(server, &mcp.Tool{
		Name:        "index_stats",
		Description: "Check the health and size of the docs index. Use this to verify the index is up to date or to report stats to the user.\n\nReturns page count, chunk count, checksum, generation timestamp, and artifact size.",
	}, handleIndexStats)
}

// Tool input types

type searchInput struct {
	Query string `json:"query" jsonschema:"Natural language search query"`
	TopK  int    `json:"top_k" jsonschema:"Number of results (default 8, max 100)"`
}

type getInput struct {
	Path string `json:"path" jsonschema:"Relative path from docs root"`
}

type emptyInput struct{}

// Tool handlers

func handleSearchDocs(ctx context.Context, req *mcp.CallToolRequest, input searchInput) (*mcp.CallToolResult, any, error) {
	eng, _ := currentEngine()
	topK := clampTopK(input.TopK, 8)

	results := eng.Search(input.Query)
	if len(results) > topK {
		results = results[:topK]
	}
	if len(results) == 0 {
		msg := "No results found."
		if suggestions := eng.Suggest(input.Query); len(suggestions) > 0 {
			msg = fmt.Sprintf("No results found. Did you mean: %s?", strings.Join(suggestions, ", "))
		}
		return textResult(msg), nil, nil
	}

	data, _ := json.MarshalIndent(results, "", "  ")
	return textResult(string(data)), nil, nil
}

func handleGetPage(ctx context.Context, req *mcp.CallToolRequest, input getInput) (*mcp.CallToolResult, any, error) {
	safePath := safeDocsPath(input.Path)
	if safePath == "" {
		return textResult("Error: path must be a relative path within the docs root."), nil, nil
	}

	content, err := os.ReadFile(safePath)
	if err != nil {
		if os.IsNotExist(err) {
			return textResult("File not found."), nil, nil
		}
		return textResult("Error reading file."), nil, nil
	}

	return textResult(string(content)), nil, nil
}

func handleRescan(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	scanMu.Lock()
	defer scanMu.Unlock()

	if time.Since(lastScanTime) < rescanCooldown {
		remaining := int(rescanCooldown.Seconds() - time.Since(lastScanTime).Seconds())
		data, _ := json.Marshal(map[string]string{
			"error": fmt.Sprintf("Rescan cooldown active. Try again in %ds.", remaining),
		})
		return textResult(string(data)), nil, nil
	}
	lastScanTime = time.Now()

	d, stats, err := scanner.ScanAndWrite(docsRoot, cfg)
	if err != nil {
		return textResult(fmt.Sprintf("Rescan error: %v", err)), nil, nil
	}
	engineMu.Lock()
	doc = d
	engine = search.NewEngine(d, cfg.Search.MinScore)
	engineMu.Unlock()

	data, _ := json.MarshalIndent(map[string]any{
		"pages_indexed":  stats.PagesIndexed,
		"chunks_created": stats.ChunksCreated,
		"files_skipped":  stats.FilesSkipped,
		"duration":       stats.Duration.Round(time.Millisecond).String(),
		"checksum":       d.Checksum,
	}, "", "  ")
	return textResult(string(data)), nil, nil
}

func handleIndexStats(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	_, d := currentEngine()

	artifactSize := int64(0)
	if info, err := os.Stat(cfg.IndexPath()); err == nil {
		artifactSize = info.Size()
	}

	data, _ := json.MarshalIndent(map[string]any{
		"page_count":    d.PageCount,
		"chunk_count":   d.ChunkCount,
		"checksum":      d.Checksum,
		"generated_at":  d.GeneratedAt,
		"index_age":     d.Age().Round(time.Second).String(),
		"artifact_size": artifactSize,
	}, "", "  ")
	return textResult(string(data)), nil, nil
}

// Helpers

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func clampTopK(topK, defaultVal int) int {
	if topK <= 0 {
		return defaultVal
	}
	if topK > 100 {
		return 100
	}
	return topK
}

// safeDocsPath resolves a relative path within the docs root, blocking
// traversal attacks and underscore-prefixed (unpublished) content.
func safeDocsPath(path string) string {
	if filepath.IsAbs(path) {
		return ""
	}
	clean := filepath.ToSlash(filepath.Clean(path))
	if strings.HasPrefix(clean, "_") || strings.Contains(clean, "/_") {
		return ""
	}
	full, err := filepath.Abs(filepath.Join(docsRoot, filepath.FromSlash(path)))
	if err != nil {
		return ""
	}
	if !strings.HasPrefix(full, docsRoot+string(filepath.Separator)) && full != docsRoot {
		return ""
	}
	return full
}
