// Package classify assigns content-type and complexity labels to
// documentation pages. Both classifiers are pure functions of already
// extracted fields, so they are directly unit-testable.
package classify

import "strings"

// ContentType is the classification result for a page.
type ContentType struct {
	Type        string   `json:"type"`
	Subtype     string   `json:"subtype"`
	Category    string   `json:"category"`
	SearchTerms []string `json:"searchTerms,omitempty"`
}

// Complexity tiers.
const (
	Simple   = "simple"
	Moderate = "moderate"
	Detailed = "detailed"
)

// rule pairs a predicate with its classification result. Rules are evaluated
// in order; the first match wins.
type rule struct {
	match  func(path, title string, headers []string) bool
	result ContentType
}

func pathContains(fragment string) func(string, string, []string) bool {
	return func(path, _ string, _ []string) bool {
		return strings.Contains(strings.ToLower(path), fragment)
	}
}

func pathOrTitleContains(pathFragment, titleFragment string) func(string, string, []string) bool {
	return func(path, title string, _ []string) bool {
		return strings.Contains(strings.ToLower(path), pathFragment) ||
			strings.Contains(strings.ToLower(title), titleFragment)
	}
}

var rules = []rule{
	{
		match: pathContains("/activity-repository/"),
		result: ContentType{
			Type:        "activity",
			Subtype:     "general-activity",
			Category:    "automation",
			SearchTerms: []string{"activity", "action", "automation", "workflow"},
		},
	},
	{
		match: pathContains("/getting-started/"),
		result: ContentType{
			Type:        "tutorial",
			Subtype:     "onboarding",
			Category:    "learning",
			SearchTerms: []string{"tutorial", "getting started", "setup", "introduction"},
		},
	},
	{
		match: pathOrTitleContains("/troubleshooting/", "troubleshoot"),
		result: ContentType{
			Type:        "troubleshooting",
			Subtype:     "problem-solving",
			Category:    "support",
			SearchTerms: []string{"troubleshooting", "error", "problem", "fix", "issue"},
		},
	},
	{
		match: pathOrTitleContains("/configuration/", "configur"),
		result: ContentType{
			Type:        "configuration",
			Subtype:     "setup",
			Category:    "administration",
			SearchTerms: []string{"configuration", "settings", "options", "setup"},
		},
	},
	{
		match: func(path, title string, _ []string) bool {
			return strings.Contains(strings.ToLower(path), "/api/") ||
				strings.Contains(title, "API")
		},
		result: ContentType{
			Type:        "api",
			Subtype:     "endpoint-reference",
			Category:    "development",
			SearchTerms: []string{"api", "endpoint", "request", "response"},
		},
	},
	{
		match: func(path, _ string, _ []string) bool {
			p := strings.ToLower(path)
			return strings.Contains(p, "/release-notes/") || strings.Contains(p, "/changelog/")
		},
		result: ContentType{
			Type:        "release-notes",
			Subtype:     "version-history",
			Category:    "reference",
			SearchTerms: []string{"release", "version", "changelog", "what's new"},
		},
	},
	{
		match: func(path, _ string, _ []string) bool {
			p := strings.ToLower(path)
			return strings.Contains(p, "/guides/") || strings.Contains(p, "/how-to/")
		},
		result: ContentType{
			Type:        "guide",
			Subtype:     "walkthrough",
			Category:    "learning",
			SearchTerms: []string{"guide", "how to", "walkthrough", "steps"},
		},
	},
	{
		match: pathOrTitleContains("/video", "video"),
		result: ContentType{
			Type:        "media",
			Subtype:     "video-content",
			Category:    "learning",
			SearchTerms: []string{"video", "demo", "watch"},
		},
	},
}

// defaultType is the fallback when no rule matches.
var defaultType = ContentType{
	Type:        "reference",
	Subtype:     "documentation",
	Category:    "general",
	SearchTerms: []string{"documentation", "reference"},
}

// Classify labels a page by its path, title, and headers. First matching
// rule wins; the fallback is reference/documentation.
func Classify(path, title string, headers []string) ContentType {
	for _, r := range rules {
		if r.match(path, title, headers) {
			return r.result
		}
	}
	return defaultType
}

// Complexity derives the complexity tier from header count and code/image
// presence.
func Complexity(headerCount int, hasCode, hasImages bool) string {
	if headerCount > 8 || (headerCount > 5 && hasCode) {
		return Detailed
	}
	if headerCount > 3 || hasCode || hasImages {
		return Moderate
	}
	return Simple
}
