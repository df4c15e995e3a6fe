// Package loader walks a documentation tree and parses markdown/MDX files
// into Pages. Per-file failures are logged and skipped; a single bad file
// never aborts the scan.
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mischegoss/docscan/internal/config"
	"github.com/mischegoss/docscan/internal/vars"
)

// Walk enumerates every .md/.mdx file under root, applying the exclusion
// rules. Returned paths are absolute; traversal is depth-first and
// deterministic for a fixed filesystem snapshot. A missing root is not an
// error: it is logged and yields zero files.
func Walk(root string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "  [WARN] docs directory %s not present, skipped\n", root)
			return nil, nil
		}
		return nil, fmt.Errorf("stat docs root: %w", err)
	}

	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			fmt.Fprintf(os.Stderr, "  [WARN] %s: %v\n", p, err)
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if p != root && skipDir(name) {
				return filepath.SkipDir
			}
			return nil
		}
		if skipFile(name) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

// skipDir reports whether a directory is excluded from the walk.
func skipDir(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return true
	}
	return config.SkipDirs[name]
}

// skipFile reports whether a file is excluded from parsing.
func skipFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".md" && ext != ".mdx" {
		return true
	}
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return true
	}
	base := strings.ToLower(name)
	if base == "readme.md" || base == "readme.mdx" {
		return true
	}
	return config.SkipFiles[name]
}

// LoadFile reads and parses one file into a Page. root anchors the relative
// path used as the page identity.
func LoadFile(root, absPath string, sub *vars.Substituter) (*Page, error) {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", absPath, err)
	}
	return ParsePage(RelativePath(root, absPath), string(data), sub)
}

// RelativePath returns the slash-separated path of absPath relative to root.
func RelativePath(root, absPath string) string {
	rel, err := filepath.Rel(root, absPath)
	if err != nil {
		return filepath.ToSlash(absPath)
	}
	return filepath.ToSlash(rel)
}
