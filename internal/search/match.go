// Package search scores indexed pages against free-text queries with a
// weighted, fuzzy, multi-factor heuristic. The scorer is a pure function of
// (query, corpus snapshot) plus a memoization cache keyed by corpus checksum.
package search

import (
	"regexp"
	"strings"
)

// Match kinds, strongest first.
const (
	KindExact  = "exact"
	KindWord   = "word"
	KindPrefix = "prefix"
	KindFuzzy  = "fuzzy"
)

// Fuzzy acceptance thresholds. Suggestions cast a wider net than scoring.
const (
	fuzzyThreshold      = 0.75
	suggestionThreshold = 0.6
)

// Match is the result of the fuzzy string-match primitive.
type Match struct {
	Matched bool
	Score   float64
	Kind    string
}

var splitRe = regexp.MustCompile(`[^a-z0-9]+`)

// MatchText checks query against text. Rules, in order: case-insensitive
// substring containment scores 1.0; queries of length <= 2 only qualify via
// a whole-word prefix on a 2-char query (0.8) and 1-char queries never
// match; a word containing the query scores 0.9 and a word starting with it
// 0.85; otherwise edit-distance similarity >= 0.75 against words of 3+ chars
// scores similarity * 0.75.
func MatchText(text, query string) Match {
	return matchText(text, query, fuzzyThreshold)
}

func matchText(text, query string, minSimilarity float64) Match {
	t := strings.ToLower(strings.TrimSpace(text))
	q := strings.ToLower(strings.TrimSpace(query))
	if t == "" || q == "" {
		return Match{}
	}

	if strings.Contains(t, q) {
		if len(q) > 2 {
			return Match{Matched: true, Score: 1.0, Kind: KindExact}
		}
		// Short queries are noisy: only a whole-word prefix on a
		// 2-char query qualifies, and 1-char queries never match.
		if len(q) == 2 {
			for _, w := range splitWords(t) {
				if strings.HasPrefix(w, q) {
					return Match{Matched: true, Score: 0.8, Kind: KindPrefix}
				}
			}
		}
		return Match{}
	}
	if len(q) <= 2 {
		return Match{}
	}

	words := splitWords(t)
	for _, w := range words {
		if strings.Contains(w, q) {
			return Match{Matched: true, Score: 0.9, Kind: KindWord}
		}
	}
	for _, w := range words {
		if strings.HasPrefix(w, q) {
			return Match{Matched: true, Score: 0.85, Kind: KindPrefix}
		}
	}

	best := 0.0
	for _, w := range words {
		if len(w) < 3 {
			continue
		}
		sim := similarity(q, w)
		if sim > best {
			best = sim
		}
	}
	if best >= minSimilarity {
		return Match{Matched: true, Score: best * 0.75, Kind: KindFuzzy}
	}
	return Match{}
}

// similarity is 1 - editDistance/maxLen.
func similarity(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}
	return 1.0 - float64(editDistance(a, b))/float64(maxLen)
}

// editDistance computes Levenshtein distance with a rolling row.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func splitWords(s string) []string {
	var words []string
	for _, w := range splitRe.Split(s, -1) {
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}
