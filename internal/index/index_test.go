package index

import (
	"path/filepath"
	"testing"

	"github.com/mischegoss/docscan/internal/chunker"
	"github.com/mischegoss/docscan/internal/loader"
)

func testChunks() []chunker.Chunk {
	return []chunker.Chunk{
		{ID: "page-s0-c0", Content: "first chunk content", Header: "Intro", Tokens: 19},
		{ID: "page-s1-c0", Content: "second chunk content", Header: "Setup", HeaderLevel: 2, Tokens: 20},
	}
}

func TestChunkChecksumStable(t *testing.T) {
	a, err := ChunkChecksum(testChunks())
	if err != nil {
		t.Fatal(err)
	}
	b, err := ChunkChecksum(testChunks())
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("identical chunks produced different checksums: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("checksum length = %d, want 64 hex chars", len(a))
	}
}

func TestChunkChecksumChangesWithContent(t *testing.T) {
	a, _ := ChunkChecksum(testChunks())
	altered := testChunks()
	altered[0].Content = "different content"
	b, _ := ChunkChecksum(altered)
	if a == b {
		t.Error("checksum did not change when chunk content changed")
	}
}

func TestWriteLoadRoundTrip(t *testing.T) {
	pages := []*loader.Page{
		{Title: "Getting Started", FilePath: "docs/start.md", URL: "/docs/start"},
	}
	doc, err := New(pages, testChunks(), map[string]string{"PRODUCT": "Actions"})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "docs-index.json")
	if err := Write(doc, path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.PageCount != 1 || loaded.ChunkCount != 2 {
		t.Errorf("counts = %d pages, %d chunks", loaded.PageCount, loaded.ChunkCount)
	}
	if loaded.Checksum != doc.Checksum {
		t.Errorf("checksum changed across round trip")
	}
	if err := loaded.Verify(); err != nil {
		t.Errorf("Verify() = %v", err)
	}
	if loaded.Variables["PRODUCT"] != "Actions" {
		t.Errorf("variables not preserved: %v", loaded.Variables)
	}
	if _, ok := loaded.Pages["Getting Started"]; !ok {
		t.Error("page mapping not keyed by title")
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	doc, err := New(nil, testChunks(), nil)
	if err != nil {
		t.Fatal(err)
	}
	doc.Chunks[0].Content = "tampered"
	if err := doc.Verify(); err == nil {
		t.Error("Verify() accepted a tampered chunk array")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}
