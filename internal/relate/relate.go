// Package relate computes directory and similarity relationships between
// documentation pages. The analysis is all-pairs over the corpus and is the
// dominant cost of a scan on large trees.
package relate

import (
	"path"
	"sort"
	"strings"
)

// Relationship caps per kind.
const (
	maxSiblings        = 8
	maxCousins         = 6
	maxParentSiblings  = 4
	maxSemanticMatches = 5

	// semanticThreshold is the minimum combined filename/title similarity
	// for a semantic match.
	semanticThreshold = 0.3
)

// PageRef identifies a page for relationship analysis.
type PageRef struct {
	Path  string
	Title string
}

// Related is one directed relationship entry.
type Related struct {
	Path       string  `json:"path"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
	MatchType  string  `json:"matchType,omitempty"`
}

// Relationships groups a page's related pages by kind. Each list is sorted
// descending by similarity and capped.
type Relationships struct {
	Siblings        []Related `json:"siblings,omitempty"`
	Cousins         []Related `json:"cousins,omitempty"`
	ParentSiblings  []Related `json:"parentSiblings,omitempty"`
	SemanticMatches []Related `json:"semanticMatches,omitempty"`
}

// Analyze classifies every other page in the corpus against the target.
// Directory kinds are mutually exclusive in precedence order sibling >
// cousin > parent-sibling; semantic matches are computed independently and
// may repeat pages that already appear in a directory kind.
func Analyze(target PageRef, corpus []PageRef) Relationships {
	targetDir := path.Dir(target.Path)
	targetParent := path.Dir(targetDir)
	targetDepth := pathDepth(target.Path)
	targetName := baseName(target.Path)

	var rel Relationships
	for _, other := range corpus {
		if other.Path == target.Path {
			continue
		}
		otherDir := path.Dir(other.Path)

		switch {
		case otherDir == targetDir:
			rel.Siblings = append(rel.Siblings, Related{
				Path:       other.Path,
				Title:      other.Title,
				Similarity: Similarity(target.Title, other.Title),
			})
		case targetDepth > 1 && pathDepth(other.Path) > 1 &&
			otherDir != targetDir && path.Dir(otherDir) == targetParent:
			rel.Cousins = append(rel.Cousins, Related{
				Path:       other.Path,
				Title:      other.Title,
				Similarity: Similarity(target.Title, other.Title),
			})
		case otherDir == targetParent && targetDir != targetParent:
			rel.ParentSiblings = append(rel.ParentSiblings, Related{
				Path:       other.Path,
				Title:      other.Title,
				Similarity: Similarity(target.Title, other.Title),
			})
		}

		// Semantic matching is independent of directory structure:
		// 60% filename similarity, 40% title similarity.
		score := 0.6*Similarity(targetName, baseName(other.Path)) +
			0.4*Similarity(target.Title, other.Title)
		if score >= semanticThreshold {
			rel.SemanticMatches = append(rel.SemanticMatches, Related{
				Path:       other.Path,
				Title:      other.Title,
				Similarity: score,
				MatchType:  matchType(targetName, baseName(other.Path), target.Title, other.Title),
			})
		}
	}

	rel.Siblings = sortAndCap(rel.Siblings, maxSiblings)
	rel.Cousins = sortAndCap(rel.Cousins, maxCousins)
	rel.ParentSiblings = sortAndCap(rel.ParentSiblings, maxParentSiblings)
	rel.SemanticMatches = sortAndCap(rel.SemanticMatches, maxSemanticMatches)
	return rel
}

// Similarity scores two names or titles in [0,1]. Exact normalized match is
// 1.0; otherwise the max of word-overlap ratio and a 0.8 containment bonus.
// The same routine serves sibling ranking and semantic-match scoring.
func Similarity(a, b string) float64 {
	na, nb := normalize(a), normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}

	wordsA := strings.Fields(na)
	wordsB := strings.Fields(nb)
	shared := 0
	seen := make(map[string]bool, len(wordsA))
	for _, w := range wordsA {
		if len(w) >= 3 {
			seen[w] = true
		}
	}
	for _, w := range wordsB {
		if seen[w] {
			shared++
			delete(seen, w)
		}
	}
	larger := len(wordsA)
	if len(wordsB) > larger {
		larger = len(wordsB)
	}
	score := 0.0
	if larger > 0 {
		score = float64(shared) / float64(larger)
	}

	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		if score < 0.8 {
			score = 0.8
		}
	}
	return score
}

// matchType tags a semantic match by shared keyword presence in both
// filenames, checked in a fixed priority order.
func matchType(nameA, nameB, titleA, titleB string) string {
	la, lb := strings.ToLower(nameA), strings.ToLower(nameB)
	switch {
	case strings.Contains(la, "create") && strings.Contains(lb, "create"):
		return "create_action"
	case strings.Contains(la, "delete") && strings.Contains(lb, "delete"):
		return "delete_action"
	case strings.Contains(la, "update") && strings.Contains(lb, "update"):
		return "update_action"
	case strings.Contains(la, "user") && strings.Contains(lb, "user"):
		return "user_management"
	case Similarity(titleA, titleB) >= 0.5:
		return "title_similarity"
	default:
		return "general_similarity"
	}
}

func sortAndCap(list []Related, limit int) []Related {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Similarity > list[j].Similarity
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list
}

// normalize lowercases and collapses non-alphanumeric runs to single spaces.
func normalize(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// baseName returns the filename without extension.
func baseName(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// pathDepth counts the path segments of a slash-separated relative path.
func pathDepth(p string) int {
	return len(strings.Split(strings.Trim(p, "/"), "/"))
}
