// Package chunker splits a page body into bounded-size chunks along header
// boundaries, with overlap across forced splits and supplementary table
// chunks. Chunking is pure and total: it never fails for any input string;
// malformed markdown degrades to whole-body chunks.
package chunker

import (
	"sort"
	"strings"

	"github.com/mischegoss/docscan/internal/relate"
)

// charsPerToken is the token estimation divisor (~4 chars per token for
// English prose and code).
const charsPerToken = 4

// boundaryWindow is how far back from the size cutoff the splitter searches
// for a sentence or line boundary before hard-cutting.
const boundaryWindow = 100

// SizeFunc measures text against the chunk budget. Two measurements exist:
// raw characters and estimated tokens. Both are monotonic in content length.
type SizeFunc func(string) int

// Chars measures size in characters.
func Chars(s string) int { return len(s) }

// EstimateTokens measures size in estimated tokens.
func EstimateTokens(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// Options configures a chunking run.
type Options struct {
	MaxSize   int      // budget per chunk, in Size units
	Overlap   int      // carried context across forced splits, in Size units
	MinUseful int      // chunks with trimmed content shorter than this are discarded (chars)
	Size      SizeFunc // size measurement; nil means Chars
}

// DefaultOptions is the character-budget configuration.
func DefaultOptions() Options {
	return Options{MaxSize: 1500, Overlap: 100, MinUseful: 50, Size: Chars}
}

// TokenOptions is the token-estimate configuration.
func TokenOptions() Options {
	return Options{MaxSize: 800, Overlap: 100, MinUseful: 50, Size: EstimateTokens}
}

func (o Options) normalized() Options {
	if o.Size == nil {
		o.Size = Chars
	}
	if o.MaxSize <= 0 {
		o.MaxSize = DefaultOptions().MaxSize
	}
	if o.Overlap < 0 {
		o.Overlap = 0
	}
	return o
}

// Metadata carries extracted chunk facts used by search and retrieval.
type Metadata struct {
	HasCode                 bool                  `json:"hasCode"`
	HasTables               bool                  `json:"hasTables"`
	HasLinks                bool                  `json:"hasLinks"`
	CodeExamples            []string              `json:"codeExamples,omitempty"`
	InternalLinks           []string              `json:"internalLinks,omitempty"`
	ExternalLinks           []string              `json:"externalLinks,omitempty"`
	TagsFromContent         []string              `json:"tagsFromContent,omitempty"`
	QuestionVariations      []string              `json:"questionVariations,omitempty"`
	TroubleshootingKeywords []string              `json:"troubleshootingKeywords,omitempty"`
	DirectoryRelationships  *relate.Relationships `json:"directoryRelationships,omitempty"`
	SearchTerms             []string              `json:"searchTerms,omitempty"`
}

// Chunk is a contiguous, bounded-size slice of a page body.
type Chunk struct {
	ID              string   `json:"id"`
	Content         string   `json:"content"`
	OriginalContent string   `json:"originalContent"`
	Header          string   `json:"header"`
	HeaderLevel     int      `json:"headerLevel"`
	Tokens          int      `json:"tokens"`
	Metadata        Metadata `json:"metadata"`
}

// section is a header-delimited region of the body.
type section struct {
	header string
	level  int
	text   string
}

// ChunkPage turns one page body into an ordered chunk sequence. pageTitle
// names header-less content. The whole body is always covered: sections
// within budget emit unchanged, undersized sections are kept as-is (never
// merged), oversized sections split with overlap. Table blocks additionally
// emit supplementary "Table Data" chunks.
func ChunkPage(pageTitle, body string, opts Options) []Chunk {
	opts = opts.normalized()
	body = stripFrontMatter(body)
	if strings.TrimSpace(body) == "" {
		return nil
	}

	var chunks []Chunk
	for _, sec := range splitSections(pageTitle, body) {
		if opts.Size(sec.text) <= opts.MaxSize {
			chunks = appendChunk(chunks, sec.header, sec.level, sec.text, opts)
			continue
		}
		for _, piece := range forceSplit(sec.text, opts) {
			chunks = appendChunk(chunks, sec.header, sec.level, piece, opts)
		}
	}

	for _, table := range scanTables(body) {
		chunks = appendChunk(chunks, "Table Data", 0, table, opts)
	}
	return chunks
}

// appendChunk builds and appends a chunk unless its trimmed content is too
// short to be useful.
func appendChunk(chunks []Chunk, header string, level int, text string, opts Options) []Chunk {
	trimmed := strings.TrimSpace(text)
	minUseful := opts.MinUseful
	if minUseful <= 0 {
		minUseful = DefaultOptions().MinUseful
	}
	if len(trimmed) < minUseful {
		return chunks
	}
	cleaned := cleanForSearch(trimmed)
	c := Chunk{
		Content:         cleaned,
		OriginalContent: trimmed,
		Header:          header,
		HeaderLevel:     level,
		Tokens:          opts.Size(cleaned),
		Metadata:        extractMetadata(trimmed, header),
	}
	return append(chunks, c)
}

// splitSections partitions the body at H2-H6 headers. Content before the
// first header (or the whole body when no headers exist) is one section
// titled with the page title.
func splitSections(pageTitle, body string) []section {
	lines := strings.Split(body, "\n")
	var sections []section
	current := section{header: pageTitle, level: 0}
	var buf []string
	inFence := false

	flush := func() {
		text := strings.TrimSpace(strings.Join(buf, "\n"))
		if text != "" {
			current.text = text
			sections = append(sections, current)
		}
		buf = buf[:0]
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			buf = append(buf, line)
			continue
		}
		if !inFence {
			if level := headingLevel(trimmed); level >= 2 && level <= 6 {
				flush()
				current = section{header: cleanHeading(trimmed[level+1:]), level: level}
				continue
			}
		}
		buf = append(buf, line)
	}
	flush()
	return sections
}

// headingLevel returns the ATX level of a trimmed line, or 0.
func headingLevel(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n > 6 || n >= len(line) || line[n] != ' ' {
		return 0
	}
	return n
}

func cleanHeading(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, "{#"); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	replacer := strings.NewReplacer("**", "", "__", "", "`", "", "*", "", "{", "", "}", "")
	return strings.TrimSpace(replacer.Replace(strings.TrimRight(text, "#")))
}

// forceSplit cuts oversized text into budget-sized pieces. The cut prefers a
// sentence period or newline within boundaryWindow characters behind the
// budget cutoff; otherwise it hard-cuts at the budget. Each piece after the
// first starts Overlap units before the previous cut, with guaranteed
// forward progress even when the overlap exceeds the remaining length.
func forceSplit(text string, opts Options) []string {
	var pieces []string
	start := 0
	for start < len(text) {
		remaining := text[start:]
		if opts.Size(remaining) <= opts.MaxSize {
			pieces = append(pieces, remaining)
			break
		}

		cut := prefixWithin(remaining, opts.MaxSize, opts.Size)
		if cut <= 0 {
			cut = 1
		}

		// Look for a sentence or line boundary just behind the cutoff.
		boundary := -1
		low := cut - boundaryWindow
		if low < 0 {
			low = 0
		}
		for i := cut - 1; i > low; i-- {
			if remaining[i] == '\n' || remaining[i] == '.' {
				boundary = i + 1
				break
			}
		}
		if boundary > 0 {
			cut = boundary
		}

		pieces = append(pieces, remaining[:cut])

		overlapChars := suffixWithin(remaining[:cut], opts.Overlap, opts.Size)
		next := start + cut - overlapChars
		if cut+overlapChars >= len(remaining) || next <= start {
			next = start + cut
		}
		start = next
	}
	return pieces
}

// prefixWithin returns the longest prefix length of s whose size fits the
// budget. Size functions are monotonic, so binary search applies.
func prefixWithin(s string, budget int, size SizeFunc) int {
	if size(s) <= budget {
		return len(s)
	}
	// sort.Search finds the smallest n with size(s[:n]) > budget.
	n := sort.Search(len(s)+1, func(n int) bool {
		return size(s[:n]) > budget
	})
	return n - 1
}

// suffixWithin returns the longest suffix length of s whose size fits the
// budget.
func suffixWithin(s string, budget int, size SizeFunc) int {
	if budget <= 0 {
		return 0
	}
	if size(s) <= budget {
		return len(s)
	}
	n := sort.Search(len(s)+1, func(n int) bool {
		return size(s[len(s)-n:]) > budget
	})
	return n - 1
}

// scanTables finds pipe-delimited blocks spanning more than two lines.
// Consecutive pipe lines accumulate into one block; any non-pipe line
// terminates the current block, so adjacent tables separated by prose are
// distinct.
func scanTables(body string) []string {
	var tables []string
	var block []string
	inFence := false

	flush := func() {
		if len(block) > 2 {
			tables = append(tables, strings.Join(block, "\n"))
		}
		block = nil
	}

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			flush()
			continue
		}
		if !inFence && strings.HasPrefix(trimmed, "|") && strings.Contains(trimmed[1:], "|") {
			block = append(block, trimmed)
			continue
		}
		flush()
	}
	flush()
	return tables
}

// stripFrontMatter removes a leading --- delimited block.
func stripFrontMatter(body string) string {
	if !strings.HasPrefix(body, "---") {
		return body
	}
	rest := body[3:]
	if i := strings.Index(rest, "\n---"); i >= 0 {
		after := rest[i+4:]
		if j := strings.IndexByte(after, '\n'); j >= 0 {
			return after[j+1:]
		}
		return ""
	}
	return body
}
