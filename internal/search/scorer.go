package search

import (
	"sort"
	"strings"
	"sync"

	"github.com/mischegoss/docscan/internal/chunker"
	"github.com/mischegoss/docscan/internal/index"
	"github.com/mischegoss/docscan/internal/loader"
)

// Scoring weights. Title is the primary signal; everything else refines.
const (
	weightTitle        = 85.0
	titlePrefixBonus   = 25.0
	weightKeyword      = 35.0
	weightExcerpt      = 30.0
	weightHeader       = 18.0
	headerScoreCap     = 50.0
	weightMetadata     = 20.0
	weightTypeTerm     = 15.0
	weightPathSegment  = 25.0
	weightBody         = 12.0
	typeMentionBoost   = 10.0
	richnessBonusCap   = 25.0
	defaultMinScore    = 10.0
	maxResults         = 8
	maxSnippetLength   = 150
	shortQueryMaxLen   = 2
)

// Result is one ranked search hit.
type Result struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Path        string  `json:"path"`
	Breadcrumbs string  `json:"breadcrumbs"`
	Score       float64 `json:"score"`
	ContentType string  `json:"contentType"`
	Snippet     string  `json:"snippet,omitempty"`
}

// Engine scores queries against one index snapshot. Results are memoized
// per (checksum, query); the cache is a performance optimization only and
// never required for correctness.
type Engine struct {
	doc      *index.Document
	minScore float64

	mu    sync.Mutex
	cache map[string][]Result

	// chunksByTitle feeds body text and snippets per page.
	chunksByTitle map[string][]*chunker.Chunk
}

// NewEngine builds an Engine over a loaded index. minScore <= 0 selects the
// default threshold.
func NewEngine(doc *index.Document, minScore float64) *Engine {
	if minScore <= 0 {
		minScore = defaultMinScore
	}
	byTitle := make(map[string][]*chunker.Chunk)
	pageByID := make(map[string]string, len(doc.Pages))
	for title, p := range doc.Pages {
		pageByID[pageIDPrefix(p.FilePath)] = title
	}
	for i := range doc.Chunks {
		c := &doc.Chunks[i]
		if title, ok := pageByID[chunkPageID(c.ID)]; ok {
			byTitle[title] = append(byTitle[title], c)
		}
	}
	return &Engine{
		doc:           doc,
		minScore:      minScore,
		cache:         make(map[string][]Result),
		chunksByTitle: byTitle,
	}
}

// Search ranks pages against the query, truncated to the top 8. It never
// fails: an empty or whitespace query returns an empty result list.
func (e *Engine) Search(query string) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	key := e.doc.Checksum + "\x00" + strings.ToLower(query)
	e.mu.Lock()
	if cached, ok := e.cache[key]; ok {
		e.mu.Unlock()
		return cached
	}
	e.mu.Unlock()

	// Stable corpus order: iterate titles sorted so ties keep a
	// deterministic order across runs.
	titles := make([]string, 0, len(e.doc.Pages))
	for t := range e.doc.Pages {
		titles = append(titles, t)
	}
	sort.Strings(titles)

	var results []Result
	for _, title := range titles {
		page := e.doc.Pages[title]
		score := e.scorePage(page, query)
		if score < e.minScore {
			continue
		}
		results = append(results, Result{
			Title:       page.Title,
			URL:         page.URL,
			Path:        page.FilePath,
			Breadcrumbs: breadcrumbs(page.FilePath),
			Score:       score,
			ContentType: page.ContentType.Type,
			Snippet:     e.snippet(page),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	e.mu.Lock()
	e.cache[key] = results
	e.mu.Unlock()
	return results
}

// scorePage sums the weighted factor contributions for one page.
func (e *Engine) scorePage(page *loader.Page, query string) float64 {
	titleMatch := MatchText(page.Title, query)
	shortQuery := len(strings.TrimSpace(query)) <= shortQueryMaxLen

	// Titles are the primary relevance signal: no title match means the
	// page is discarded outright, except for short queries which already
	// passed the strict prefix rule or matched nothing at all.
	if !titleMatch.Matched && !shortQuery {
		return 0
	}

	score := titleMatch.Score * weightTitle
	if titleMatch.Matched && strings.HasPrefix(strings.ToLower(page.Title), strings.ToLower(query)) {
		score += titlePrefixBonus
	}

	for _, kw := range page.Metadata.Keywords {
		if m := MatchText(kw, query); m.Matched {
			score += m.Score * weightKeyword
			break
		}
	}

	if m := MatchText(page.Excerpt, query); m.Matched {
		score += m.Score * weightExcerpt
	}

	headerScore := 0.0
	for _, h := range page.Headers {
		if m := MatchText(h, query); m.Matched {
			headerScore += m.Score * weightHeader
		}
	}
	if headerScore > headerScoreCap {
		headerScore = headerScoreCap
	}
	score += headerScore

	if m := MatchText(metadataText(page), query); m.Matched {
		score += m.Score * weightMetadata
	}

	for _, term := range page.ContentType.SearchTerms {
		if m := MatchText(term, query); m.Matched {
			score += m.Score * weightTypeTerm
			break
		}
	}

	for _, seg := range strings.Split(page.FilePath, "/") {
		seg = strings.TrimSuffix(seg, ".md")
		seg = strings.TrimSuffix(seg, ".mdx")
		if m := MatchText(strings.ReplaceAll(seg, "-", " "), query); m.Matched {
			score += m.Score * weightPathSegment
		}
	}

	if m := MatchText(e.bodyText(page), query); m.Matched {
		score += m.Score * weightBody
	}

	// Boosts and richness only refine pages that already matched somewhere;
	// they never promote a page with zero textual relevance.
	if score == 0 {
		return 0
	}

	q := strings.ToLower(query)
	if strings.Contains(q, page.ContentType.Type) {
		score += typeMentionBoost
	}
	if strings.Contains(q, page.Complexity) {
		score += typeMentionBoost
	}

	score += richnessBonus(page)
	return score
}

// richnessBonus rewards substantive pages, capped so richness never
// outweighs relevance.
func richnessBonus(page *loader.Page) float64 {
	bonus := float64(len(page.Headers)) * 2
	if page.HasCode {
		bonus += 5
	}
	if page.HasImages {
		bonus += 3
	}
	switch page.Complexity {
	case "detailed":
		bonus += 10
	case "moderate":
		bonus += 5
	}
	if bonus > richnessBonusCap {
		bonus = richnessBonusCap
	}
	return bonus
}

// Suggest returns corpus title words that loosely match the query, for
// "did you mean" output when a search comes back empty.
func (e *Engine) Suggest(query string) []string {
	query = strings.TrimSpace(query)
	if len(query) < 3 {
		return nil
	}
	seen := make(map[string]bool)
	var suggestions []string

	titles := make([]string, 0, len(e.doc.Pages))
	for t := range e.doc.Pages {
		titles = append(titles, t)
	}
	sort.Strings(titles)

	q := strings.ToLower(query)
	for _, title := range titles {
		for _, w := range splitWords(strings.ToLower(title)) {
			if len(w) < 3 || seen[w] || w == q {
				continue
			}
			if sim := similarity(q, w); sim >= suggestionThreshold {
				seen[w] = true
				suggestions = append(suggestions, w)
			}
		}
		if len(suggestions) >= 5 {
			break
		}
	}
	return suggestions
}

// bodyText concatenates the page's cleaned chunk content.
func (e *Engine) bodyText(page *loader.Page) string {
	chunks := e.chunksByTitle[page.Title]
	if len(chunks) == 0 {
		return ""
	}
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Content)
		b.WriteByte('\n')
	}
	return b.String()
}

// snippet returns the first chunk's cleaned content, truncated.
func (e *Engine) snippet(page *loader.Page) string {
	chunks := e.chunksByTitle[page.Title]
	var text string
	if len(chunks) > 0 {
		text = chunks[0].Content
	} else {
		text = page.Excerpt
	}
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", "")
	if len(text) > maxSnippetLength {
		text = strings.TrimSpace(text[:maxSnippetLength]) + "..."
	}
	return text
}

func metadataText(page *loader.Page) string {
	parts := []string{
		page.Metadata.Description,
		page.Metadata.SidebarLabel,
		page.Metadata.Category,
		page.Metadata.Author,
	}
	parts = append(parts, page.Metadata.Tags...)
	return strings.Join(parts, " ")
}

// breadcrumbs renders the directory segments of a page path.
func breadcrumbs(filePath string) string {
	segs := strings.Split(filePath, "/")
	if len(segs) <= 1 {
		return ""
	}
	var crumbs []string
	for _, s := range segs[:len(segs)-1] {
		crumbs = append(crumbs, strings.ReplaceAll(s, "-", " "))
	}
	return strings.Join(crumbs, " > ")
}

// pageIDPrefix and chunkPageID tie chunks back to their page. Chunk IDs are
// "<pageID>-s<section>-c<chunk>"; the page ID is the slugged file path.
func pageIDPrefix(filePath string) string {
	p := strings.TrimSuffix(filePath, ".mdx")
	p = strings.TrimSuffix(p, ".md")
	return strings.NewReplacer("/", "-", " ", "-", ".", "-").Replace(strings.ToLower(p))
}

func chunkPageID(chunkID string) string {
	if i := strings.LastIndex(chunkID, "-s"); i > 0 && isSectionSuffix(chunkID[i:]) {
		return chunkID[:i]
	}
	return chunkID
}

// isSectionSuffix reports whether s looks like "-s<digits>-c<digits>".
func isSectionSuffix(s string) bool {
	if !strings.HasPrefix(s, "-s") {
		return false
	}
	rest := s[2:]
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(rest)-1 || rest[i] != '-' || rest[i+1] != 'c' {
		return false
	}
	for _, r := range rest[i+2:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return i+2 < len(rest)
}
