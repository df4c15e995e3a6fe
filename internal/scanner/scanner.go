// Package scanner runs the full indexing pipeline: walk the docs tree, parse
// pages, substitute variables, classify, chunk, analyze relationships, and
// assemble the index document. A scan fully replaces the previous index.
package scanner

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mischegoss/docscan/internal/chunker"
	"github.com/mischegoss/docscan/internal/config"
	"github.com/mischegoss/docscan/internal/index"
	"github.com/mischegoss/docscan/internal/loader"
	"github.com/mischegoss/docscan/internal/relate"
	"github.com/mischegoss/docscan/internal/vars"
)

// numWorkers bounds concurrent file parsing.
const numWorkers = 4

// Stats summarizes one scan run.
type Stats struct {
	PagesIndexed  int
	ChunksCreated int
	FilesSkipped  int
	Duration      time.Duration
}

type parseResult struct {
	path string
	page *loader.Page
	err  error
}

// Scan indexes every document under root and returns the assembled index
// document. Individual file failures are logged and skipped; only systemic
// failures (an unwalkable tree) abort the scan.
func Scan(root string, cfg *config.Config) (*index.Document, *Stats, error) {
	start := time.Now()
	stats := &Stats{}

	files, err := loader.Walk(root)
	if err != nil {
		return nil, nil, err
	}

	sub := vars.New(cfg.Variables)
	pages := parseAll(root, files, sub, stats)

	// Parsing order is nondeterministic under the worker pool; sort by path
	// so chunk IDs and page ordering are stable across runs.
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].FilePath < pages[j].FilePath
	})
	stats.PagesIndexed = len(pages)

	refs := make([]relate.PageRef, len(pages))
	for i, p := range pages {
		refs[i] = relate.PageRef{Path: p.FilePath, Title: p.Title}
	}

	opts := chunkOptions(cfg.Chunking)
	var allChunks []chunker.Chunk
	for i, p := range pages {
		chunks := chunker.ChunkPage(p.Title, p.Body, opts)
		rels := relate.Analyze(refs[i], refs)
		for j := range chunks {
			chunks[j].Metadata.DirectoryRelationships = &rels
		}
		assignIDs(pageID(p.FilePath), chunks)
		allChunks = append(allChunks, chunks...)
	}
	stats.ChunksCreated = len(allChunks)

	doc, err := index.New(pages, allChunks, cfg.Variables)
	if err != nil {
		return nil, nil, err
	}
	stats.Duration = time.Since(start)
	return doc, stats, nil
}

// ScanAndWrite runs a scan and persists the index artifact.
func ScanAndWrite(root string, cfg *config.Config) (*index.Document, *Stats, error) {
	doc, stats, err := Scan(root, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := index.Write(doc, cfg.IndexPath()); err != nil {
		return nil, nil, err
	}
	return doc, stats, nil
}

// parseAll parses files through a small worker pool. Failures are logged to
// stderr and counted, never fatal.
func parseAll(root string, files []string, sub *vars.Substituter, stats *Stats) []*loader.Page {
	jobs := make(chan string)
	results := make(chan parseResult)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				p, err := loader.LoadFile(root, path, sub)
				results <- parseResult{path: path, page: p, err: err}
			}
		}()
	}
	go func() {
		for _, f := range files {
			jobs <- f
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	var pages []*loader.Page
	for r := range results {
		if r.err != nil {
			fmt.Fprintf(os.Stderr, "  [ERROR] %s: %v\n", r.path, r.err)
			stats.FilesSkipped++
			continue
		}
		pages = append(pages, r.page)
	}
	return pages
}

// chunkOptions maps chunking configuration onto chunker options. When sizing
// is "tokens" and max_size was left at the character default, the token
// default applies instead.
func chunkOptions(c config.ChunkingConfig) chunker.Options {
	opts := chunker.DefaultOptions()
	if strings.EqualFold(c.Sizing, "tokens") {
		opts = chunker.TokenOptions()
		if c.MaxSize > 0 && c.MaxSize != config.DefaultMaxChunkChars {
			opts.MaxSize = c.MaxSize
		}
	} else if c.MaxSize > 0 {
		opts.MaxSize = c.MaxSize
	}
	if c.Overlap > 0 {
		opts.Overlap = c.Overlap
	}
	if c.MinUseful > 0 {
		opts.MinUseful = c.MinUseful
	}
	return opts
}

// pageID slugs a relative file path into a chunk ID prefix: lowercase, the
// extension stripped, and separators collapsed to hyphens.
func pageID(filePath string) string {
	p := strings.TrimSuffix(filePath, ".mdx")
	p = strings.TrimSuffix(p, ".md")
	return strings.NewReplacer("/", "-", " ", "-", ".", "-").Replace(strings.ToLower(p))
}

// assignIDs numbers a page's chunks "<pageID>-s<section>-c<chunk>". A new
// section starts whenever the header changes; pieces of a force-split section
// share a section number and count up the chunk index.
func assignIDs(pageID string, chunks []chunker.Chunk) {
	section, idx := -1, 0
	var lastHeader string
	lastLevel := -1
	for i := range chunks {
		if section < 0 || chunks[i].Header != lastHeader || chunks[i].HeaderLevel != lastLevel {
			section++
			idx = 0
			lastHeader = chunks[i].Header
			lastLevel = chunks[i].HeaderLevel
		}
		chunks[i].ID = fmt.Sprintf("%s-s%d-c%d", pageID, section, idx)
		idx++
	}
}
