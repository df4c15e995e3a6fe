// Package index defines the JSON search-index artifact and its disk format.
// A scan fully replaces the artifact; there are no incremental updates.
package index

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mischegoss/docscan/internal/chunker"
	"github.com/mischegoss/docscan/internal/loader"
)

// Document is the single JSON artifact produced by a scan. Metadata fields
// are prefixed with an underscore; page mappings are keyed by page title.
type Document struct {
	GeneratedAt string            `json:"_generatedAt"`
	PageCount   int               `json:"_pageCount"`
	ChunkCount  int               `json:"_chunkCount"`
	Checksum    string            `json:"_checksum"`
	Variables   map[string]string `json:"_variables,omitempty"`
	Chunks      []chunker.Chunk   `json:"chunks"`
	Pages       map[string]*loader.Page `json:"pages"`
}

// New assembles a Document from scan output and stamps counts, timestamp,
// and checksum.
func New(pages []*loader.Page, chunks []chunker.Chunk, variables map[string]string) (*Document, error) {
	pageMap := make(map[string]*loader.Page, len(pages))
	for _, p := range pages {
		pageMap[p.Title] = p
	}
	checksum, err := ChunkChecksum(chunks)
	if err != nil {
		return nil, err
	}
	return &Document{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		PageCount:   len(pageMap),
		ChunkCount:  len(chunks),
		Checksum:    checksum,
		Variables:   variables,
		Chunks:      chunks,
		Pages:       pageMap,
	}, nil
}

// ChunkChecksum is the SHA-256 hex digest of the serialized chunk array.
// Identical chunk content always yields an identical checksum, which is the
// downstream change-detection key and the scorer's cache key.
func ChunkChecksum(chunks []chunker.Chunk) (string, error) {
	data, err := json.Marshal(chunks)
	if err != nil {
		return "", fmt.Errorf("serialize chunks: %w", err)
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}

// Write saves the document atomically (temp file + rename) so readers never
// observe a partial index.
func Write(doc *Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace index: %w", err)
	}
	return nil
}

// Load reads a document from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", path, err)
	}
	return &doc, nil
}

// Verify recomputes the chunk checksum and compares it to the stored value.
func (d *Document) Verify() error {
	sum, err := ChunkChecksum(d.Chunks)
	if err != nil {
		return err
	}
	if sum != d.Checksum {
		return fmt.Errorf("checksum mismatch: stored %s, computed %s", d.Checksum, sum)
	}
	return nil
}

// Age returns how long ago the document was generated, or 0 when the
// timestamp cannot be parsed.
func (d *Document) Age() time.Duration {
	ts, err := time.Parse(time.RFC3339, d.GeneratedAt)
	if err != nil {
		return 0
	}
	return time.Since(ts)
}
