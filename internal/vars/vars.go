// Package vars rewrites placeholder tokens in documentation text using a
// fixed substitution table.
package vars

import (
	"regexp"
	"sort"
	"strings"
)

// pattern holds the compiled surface forms for one variable. The bracketed
// forms are plain strings; the colon and bare forms need word boundaries.
type pattern struct {
	name        string
	replacement string
	dollar      string // ${NAME}
	brace       string // {{NAME}}
	bracket     string // [NAME]
	colonRe     *regexp.Regexp
	bareRe      *regexp.Regexp
}

// Substituter applies a variable table to text. Patterns are applied in a
// fixed order per variable: bracketed forms first, then the colon form, then
// the bare word form, so a replacement is never substituted twice.
type Substituter struct {
	patterns []pattern
}

// New builds a Substituter from a name -> replacement table. Variables are
// processed longest-name-first so overlapping names (PRODUCT, PRODUCT_NAME)
// resolve deterministically.
func New(table map[string]string) *Substituter {
	names := make([]string, 0, len(table))
	for name := range table {
		if strings.TrimSpace(name) == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	s := &Substituter{}
	for _, name := range names {
		quoted := regexp.QuoteMeta(name)
		s.patterns = append(s.patterns, pattern{
			name:        name,
			replacement: table[name],
			dollar:      "${" + name + "}",
			brace:       "{{" + name + "}}",
			bracket:     "[" + name + "]",
			colonRe:     regexp.MustCompile(`\b` + quoted + `:`),
			bareRe:      regexp.MustCompile(`\b` + quoted + `\b`),
		})
	}
	return s
}

// Apply rewrites every occurrence of every variable in text.
func (s *Substituter) Apply(text string) string {
	if s == nil || text == "" {
		return text
	}
	for _, p := range s.patterns {
		text = strings.ReplaceAll(text, p.dollar, p.replacement)
		text = strings.ReplaceAll(text, p.brace, p.replacement)
		text = strings.ReplaceAll(text, p.bracket, p.replacement)
		// NAME: keeps the colon; after this pass the bare form cannot
		// re-match the colon occurrences.
		text = p.colonRe.ReplaceAllLiteralString(text, p.replacement+":")
		text = p.bareRe.ReplaceAllLiteralString(text, p.replacement)
	}
	return text
}
