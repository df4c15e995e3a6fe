// Package watcher monitors a docs tree for changes and rebuilds the index.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mischegoss/docscan/internal/config"
	"github.com/mischegoss/docscan/internal/scanner"
)

// debounceDelay batches rapid change bursts (editor saves, git checkouts)
// into a single rescan.
const debounceDelay = 2 * time.Second

// Watch monitors root for markdown changes and rebuilds the full index after
// each debounced burst. The index is a single replace-on-write artifact, so
// every change triggers a complete rescan rather than an incremental update.
// Watch blocks until the watcher channel closes or an unrecoverable error
// occurs.
func Watch(root string, cfg *config.Config) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	dirs := walkDirs(root)
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			fmt.Fprintf(os.Stderr, "  [WARN] Could not watch %s: %v\n", d, err)
		}
	}

	fmt.Fprintf(os.Stderr, "Watching %d directories in %s\n", len(dirs), root)
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop.\n\n")

	// Debounce: collect changed paths over a window before rescanning.
	var (
		mu      sync.Mutex
		pending = make(map[string]bool)
		timer   *time.Timer
	)

	flush := func() {
		mu.Lock()
		n := len(pending)
		pending = make(map[string]bool)
		mu.Unlock()

		if n == 0 {
			return
		}
		fmt.Fprintf(os.Stderr, "  %d change(s) detected, rescanning...\n", n)
		doc, stats, err := scanner.ScanAndWrite(root, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  [ERROR] rescan: %v\n", err)
			return
		}
		fmt.Fprintf(os.Stderr, "  Indexed %d pages, %d chunks in %s (checksum %s)\n",
			doc.PageCount, doc.ChunkCount, stats.Duration.Round(time.Millisecond), doc.Checksum[:12])
	}

	schedule := func(path string) {
		mu.Lock()
		pending[path] = true
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceDelay, flush)
		mu.Unlock()
	}

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}

			if !isDocFile(event.Name) {
				// Watch newly created directories so nested changes surface.
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						if !skipDirName(filepath.Base(event.Name)) {
							if err := w.Add(event.Name); err != nil {
								fmt.Fprintf(os.Stderr, "  [WARN] Could not watch %s: %v\n", event.Name, err)
							}
						}
					}
				}
				continue
			}

			// Creates, writes, removes, and renames all change the corpus;
			// the flush rebuilds the whole artifact either way.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				schedule(event.Name)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "  [WARN] Watch error: %v\n", err)
		}
	}
}

// isDocFile reports whether a changed path is an indexable markdown file.
func isDocFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".md" && ext != ".mdx" {
		return false
	}
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") {
		return false
	}
	lower := strings.ToLower(base)
	if lower == "readme.md" || lower == "readme.mdx" {
		return false
	}
	return !config.SkipFiles[base]
}

func skipDirName(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return true
	}
	return config.SkipDirs[name]
}

// walkDirs enumerates watchable directories under root, honoring the same
// exclusions as the scanner.
func walkDirs(root string) []string {
	var dirs []string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && skipDirName(d.Name()) {
				return filepath.SkipDir
			}
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs
}
