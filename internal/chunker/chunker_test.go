package chunker

import (
	"strings"
	"testing"
)

func charOpts(maxSize, overlap int) Options {
	return Options{MaxSize: maxSize, Overlap: overlap, MinUseful: 50, Size: Chars}
}

func TestChunkPageSingleSectionNoHeaders(t *testing.T) {
	body := strings.Repeat("All work and no play makes documentation dull. ", 4)
	chunks := ChunkPage("My Page", body, DefaultOptions())
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Header != "My Page" {
		t.Errorf("header = %q, want page title", chunks[0].Header)
	}
	if chunks[0].HeaderLevel != 0 {
		t.Errorf("headerLevel = %d, want 0", chunks[0].HeaderLevel)
	}
}

func TestChunkPageSplitsAtHeaders(t *testing.T) {
	body := "Intro paragraph that is long enough to keep as a chunk of text.\n\n" +
		"## Setup\n\nSetup instructions go here and they are also long enough to keep.\n\n" +
		"### Advanced\n\nAdvanced configuration notes, again padded to a useful length."
	chunks := ChunkPage("Guide", body, DefaultOptions())
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3: %+v", len(chunks), chunks)
	}
	if chunks[0].Header != "Guide" || chunks[1].Header != "Setup" || chunks[2].Header != "Advanced" {
		t.Errorf("headers = %q, %q, %q", chunks[0].Header, chunks[1].Header, chunks[2].Header)
	}
	if chunks[1].HeaderLevel != 2 || chunks[2].HeaderLevel != 3 {
		t.Errorf("levels = %d, %d, want 2, 3", chunks[1].HeaderLevel, chunks[2].HeaderLevel)
	}
}

func TestChunkPageOversizedBodyThreeChunks(t *testing.T) {
	// 2500 chars with no sentence boundaries, maxSize=1000, overlap=100:
	// exactly 3 chunks, each within budget, covering the whole body.
	body := strings.Repeat("x", 2500)
	chunks := ChunkPage("Big", body, charOpts(1000, 100))
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for i, c := range chunks {
		if len(c.OriginalContent) > 1000 {
			t.Errorf("chunk %d is %d chars, want <= 1000", i, len(c.OriginalContent))
		}
	}

	// Coverage: every offset of the body appears in some chunk.
	covered := 0
	for _, c := range chunks {
		covered += len(c.OriginalContent)
	}
	if covered < len(body) {
		t.Errorf("chunks cover %d chars, body is %d", covered, len(body))
	}
}

func TestForceSplitPrefersSentenceBoundary(t *testing.T) {
	// A period sits 40 chars before the cutoff; the split should land
	// right after it.
	text := strings.Repeat("a", 960) + ". " + strings.Repeat("b", 600)
	pieces := forceSplit(text, charOpts(1000, 0))
	if len(pieces) != 2 {
		t.Fatalf("got %d pieces, want 2", len(pieces))
	}
	if !strings.HasSuffix(pieces[0], ".") {
		t.Errorf("first piece should end at the sentence boundary, got ...%q",
			pieces[0][len(pieces[0])-5:])
	}
}

func TestForceSplitForwardProgress(t *testing.T) {
	// Overlap larger than each piece: starts must still strictly advance.
	text := strings.Repeat("y", 300)
	pieces := forceSplit(text, charOpts(100, 200))
	if len(pieces) < 2 {
		t.Fatalf("expected multiple pieces, got %d", len(pieces))
	}
	total := 0
	for _, p := range pieces {
		if len(p) == 0 {
			t.Fatal("empty piece emitted")
		}
		total += len(p)
	}
	if total < len(text) {
		t.Errorf("pieces cover %d chars, text is %d", total, len(text))
	}
}

func TestChunkPageDiscardsTinyChunks(t *testing.T) {
	body := "## Stub\n\nshort\n\n## Real\n\n" +
		"This section carries enough content to clear the minimum useful length easily."
	chunks := ChunkPage("Page", body, DefaultOptions())
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1 (stub discarded)", len(chunks))
	}
	if chunks[0].Header != "Real" {
		t.Errorf("kept %q, want Real", chunks[0].Header)
	}
}

func TestChunkPageTableData(t *testing.T) {
	body := "Intro prose that is long enough to survive the minimum length filter.\n\n" +
		"| Name | Type | Required |\n" +
		"| ---- | ---- | -------- |\n" +
		"| url  | str  | yes      |\n" +
		"| auth | str  | no       |\n\n" +
		"Closing prose that is also long enough to survive the length filter."
	chunks := ChunkPage("Config", body, DefaultOptions())

	var table *Chunk
	for i := range chunks {
		if chunks[i].Header == "Table Data" {
			table = &chunks[i]
		}
	}
	if table == nil {
		t.Fatal("no Table Data chunk emitted")
	}
	if !strings.Contains(table.OriginalContent, "| url") {
		t.Errorf("table chunk missing rows: %q", table.OriginalContent)
	}
}

func TestScanTablesSeparatesAdjacentBlocks(t *testing.T) {
	body := "| a | b |\n| - | - |\n| 1 | 2 |\n" +
		"prose between\n" +
		"| c | d |\n| - | - |\n| 3 | 4 |\n"
	tables := scanTables(body)
	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(tables))
	}
}

func TestScanTablesIgnoresTwoLineBlocks(t *testing.T) {
	body := "| a | b |\n| 1 | 2 |\n"
	if tables := scanTables(body); len(tables) != 0 {
		t.Errorf("got %d tables, want 0 for a two-line block", len(tables))
	}
}

func TestChunkPageTokenSizing(t *testing.T) {
	// 8000 chars is ~2000 estimated tokens; an 800-token budget forces
	// multiple chunks.
	body := strings.Repeat("token sizing exercise text ", 300)
	chunks := ChunkPage("Tokens", body, TokenOptions())
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several under the token budget", len(chunks))
	}
	for i, c := range chunks {
		if EstimateTokens(c.OriginalContent) > 800 {
			t.Errorf("chunk %d is %d tokens, want <= 800", i, EstimateTokens(c.OriginalContent))
		}
	}
}

func TestChunkPageStripsFrontMatter(t *testing.T) {
	body := "---\ntitle: Hidden\n---\n" +
		"Visible prose that is comfortably past the minimum useful length filter."
	chunks := ChunkPage("Page", body, DefaultOptions())
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if strings.Contains(chunks[0].OriginalContent, "title: Hidden") {
		t.Error("front-matter leaked into chunk content")
	}
}

func TestChunkPageNeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"   \n\n   ",
		"## ",
		"######## too deep",
		"```\nunclosed fence",
		"|||||",
		strings.Repeat("#", 5000),
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("ChunkPage panicked on %q: %v", in, r)
				}
			}()
			ChunkPage("Edge", in, DefaultOptions())
		}()
	}
}

func TestChunkPageIdempotent(t *testing.T) {
	body := "## One\n\nSection one content long enough to keep around for chunking.\n\n" +
		"## Two\n\nSection two content long enough to keep around for chunking."
	a := ChunkPage("Page", body, DefaultOptions())
	b := ChunkPage("Page", body, DefaultOptions())
	if len(a) != len(b) {
		t.Fatalf("runs differ in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].OriginalContent != b[i].OriginalContent || a[i].Header != b[i].Header {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestCleanForSearchPlaceholders(t *testing.T) {
	text := "Before\n```go\nfmt.Println(\"hi\")\n```\nAfter ![alt](img.png)\n| a | b |\n| 1 | 2 |"
	got := cleanForSearch(text)
	if strings.Contains(got, "fmt.Println") {
		t.Error("code body survived cleaning")
	}
	if !strings.Contains(got, "[code example]") {
		t.Error("missing code placeholder")
	}
	if !strings.Contains(got, "[image]") {
		t.Error("missing image placeholder")
	}
	if !strings.Contains(got, "[table]") || strings.Contains(got, "| a | b |") {
		t.Error("table rows not collapsed to placeholder")
	}
}

func TestExtractMetadata(t *testing.T) {
	text := "See [setup](../setup.md) and [docs](https://example.com/docs).\n" +
		"```bash\necho hello\n```\n" +
		"If the request fails with an error, retry once."
	m := extractMetadata(text, "Install Guide")

	if !m.HasCode || !m.HasLinks {
		t.Errorf("flags = code:%v links:%v, want both true", m.HasCode, m.HasLinks)
	}
	if len(m.InternalLinks) != 1 || m.InternalLinks[0] != "../setup.md" {
		t.Errorf("internalLinks = %v", m.InternalLinks)
	}
	if len(m.ExternalLinks) != 1 {
		t.Errorf("externalLinks = %v", m.ExternalLinks)
	}
	if len(m.CodeExamples) != 1 || !strings.Contains(m.CodeExamples[0], "echo hello") {
		t.Errorf("codeExamples = %v", m.CodeExamples)
	}
	if len(m.TroubleshootingKeywords) == 0 {
		t.Error("expected troubleshooting keywords for failure text")
	}
	if len(m.QuestionVariations) != 3 {
		t.Errorf("questionVariations = %v", m.QuestionVariations)
	}
	if len(m.SearchTerms) == 0 || len(m.SearchTerms) > 25 {
		t.Errorf("searchTerms count = %d, want 1..25", len(m.SearchTerms))
	}
}
