package chunker

import (
	"regexp"
	"strings"
)

const (
	maxSearchTerms  = 25
	maxCodeExamples = 5
)

var (
	linkRe  = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)\)`)
	fenceRe = regexp.MustCompile("(?s)```[a-zA-Z0-9]*\\n(.*?)```")
	imageRe = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	wordRe  = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9_-]{2,}`)
)

// stopWords are excluded from extracted search terms.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"her": true, "was": true, "one": true, "our": true, "out": true,
	"this": true, "that": true, "with": true, "have": true, "from": true,
	"they": true, "been": true, "will": true, "when": true, "where": true,
	"which": true, "what": true, "your": true, "their": true, "there": true,
	"then": true, "than": true, "them": true, "these": true, "those": true,
	"each": true, "such": true, "into": true, "more": true, "some": true,
	"also": true, "only": true, "other": true, "about": true, "after": true,
	"before": true, "using": true, "used": true, "use": true, "how": true,
	"does": true, "should": true, "would": true, "could": true, "must": true,
}

// troubleshootingTerms flag support-oriented content when present.
var troubleshootingTerms = []string{
	"error", "fail", "failed", "failure", "issue", "problem", "fix",
	"troubleshoot", "warning", "invalid", "cannot", "unable", "retry",
}

// cleanForSearch replaces code blocks, tables, and images with placeholders
// so the searchable content stays prose-shaped.
func cleanForSearch(text string) string {
	text = fenceRe.ReplaceAllString(text, "[code example]")
	text = imageRe.ReplaceAllString(text, "[image]")

	// Collapse pipe-table lines to a single placeholder per block.
	var out []string
	inTable := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "|") && strings.Contains(trimmed[1:], "|") {
			if !inTable {
				out = append(out, "[table]")
				inTable = true
			}
			continue
		}
		inTable = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// extractMetadata derives the chunk's searchable facts from its original
// content.
func extractMetadata(text, header string) Metadata {
	m := Metadata{
		HasCode: strings.Contains(text, "```"),
	}

	for _, code := range fenceRe.FindAllStringSubmatch(text, maxCodeExamples) {
		snippet := strings.TrimSpace(code[1])
		if snippet != "" {
			m.CodeExamples = append(m.CodeExamples, snippet)
		}
	}

	for _, link := range linkRe.FindAllStringSubmatch(text, -1) {
		target := link[2]
		if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
			m.ExternalLinks = append(m.ExternalLinks, target)
		} else {
			m.InternalLinks = append(m.InternalLinks, target)
		}
	}
	m.HasLinks = len(m.InternalLinks)+len(m.ExternalLinks) > 0

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "|") && strings.Contains(trimmed[1:], "|") {
			m.HasTables = true
			break
		}
	}

	lower := strings.ToLower(text)
	for _, term := range troubleshootingTerms {
		if strings.Contains(lower, term) {
			m.TroubleshootingKeywords = append(m.TroubleshootingKeywords, term)
		}
	}

	m.TagsFromContent = headerTags(header)
	m.QuestionVariations = questionVariations(header)
	m.SearchTerms = extractSearchTerms(text, header)
	return m
}

// headerTags lowercases the meaningful words of the header.
func headerTags(header string) []string {
	var tags []string
	for _, w := range wordRe.FindAllString(strings.ToLower(header), -1) {
		if !stopWords[w] {
			tags = append(tags, w)
		}
	}
	return tags
}

// questionVariations phrases the header as the questions users actually type.
func questionVariations(header string) []string {
	h := strings.TrimSpace(header)
	if h == "" || h == "Table Data" {
		return nil
	}
	return []string{
		"What is " + h + "?",
		"How do I use " + h + "?",
		"How does " + h + " work?",
	}
}

// extractSearchTerms pulls deduplicated keywords from the content and
// header, stop-word filtered and capped at maxSearchTerms.
func extractSearchTerms(text, header string) []string {
	seen := make(map[string]bool)
	var terms []string
	add := func(w string) {
		w = strings.ToLower(w)
		if stopWords[w] || seen[w] || len(terms) >= maxSearchTerms {
			return
		}
		seen[w] = true
		terms = append(terms, w)
	}

	for _, w := range wordRe.FindAllString(header, -1) {
		add(w)
	}
	// Strip code and links before keyword extraction so identifiers inside
	// fences don't dominate the term list.
	prose := fenceRe.ReplaceAllString(text, " ")
	prose = linkRe.ReplaceAllString(prose, "$1")
	for _, w := range wordRe.FindAllString(prose, -1) {
		if len(terms) >= maxSearchTerms {
			break
		}
		add(w)
	}
	return terms
}
