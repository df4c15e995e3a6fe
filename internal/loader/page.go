package loader

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/mischegoss/docscan/internal/classify"
	"github.com/mischegoss/docscan/internal/vars"
)

// Metadata holds the front-matter fields carried through to the index.
type Metadata struct {
	Description     string   `json:"description,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	SidebarLabel    string   `json:"sidebarLabel,omitempty"`
	SidebarPosition int      `json:"sidebarPosition,omitempty"`
	Category        string   `json:"category,omitempty"`
	Author          string   `json:"author,omitempty"`
	Date            string   `json:"date,omitempty"`
}

// Page is one parsed source document.
type Page struct {
	Title       string               `json:"title"`
	Headers     []string             `json:"headers,omitempty"`
	FilePath    string               `json:"filePath"`
	URL         string               `json:"url"`
	Excerpt     string               `json:"excerpt,omitempty"`
	Metadata    Metadata             `json:"metadata"`
	ContentType classify.ContentType `json:"contentType"`
	Complexity  string               `json:"complexity"`
	HasCode     bool                 `json:"hasCode"`
	HasImages   bool                 `json:"hasImages"`
	WordCount   int                  `json:"wordCount"`

	// Body is the substituted markdown body. It feeds the chunker and is
	// not serialized into page mappings.
	Body string `json:"-"`
}

type frontMatter struct {
	Title           string   `yaml:"title"`
	ID              string   `yaml:"id"`
	Slug            string   `yaml:"slug"`
	Description     string   `yaml:"description"`
	Keywords        []string `yaml:"keywords"`
	Tags            []string `yaml:"tags"`
	SidebarLabel    string   `yaml:"sidebar_label"`
	SidebarPosition int      `yaml:"sidebar_position"`
	Category        string   `yaml:"category"`
	Author          string   `yaml:"author"`
	Date            string   `yaml:"date"`
}

const maxExcerptLen = 150

// ParsePage builds a Page from raw file content. relPath is slash-separated
// and relative to the docs root. The substituter is applied to the body,
// title, description, and headers before classification so every downstream
// consumer sees substituted text.
func ParsePage(relPath, content string, sub *vars.Substituter) (*Page, error) {
	var fm frontMatter
	body := content
	rest, err := frontmatter.Parse(strings.NewReader(content), &fm)
	if err != nil {
		// Malformed front-matter: treat the whole file as body.
		fm = frontMatter{}
	} else {
		body = string(rest)
	}

	body = sub.Apply(body)
	title := resolveTitle(fm, body, relPath)
	title = sub.Apply(title)
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("no resolvable title for %s", relPath)
	}

	headers := extractHeaders(body)
	hasCode := strings.Contains(body, "```")
	hasImages := strings.Contains(body, "![")

	p := &Page{
		Title:    title,
		Headers:  headers,
		FilePath: relPath,
		URL:      deriveURL(relPath, fm),
		Excerpt:  makeExcerpt(body),
		Metadata: Metadata{
			Description:     sub.Apply(fm.Description),
			Keywords:        fm.Keywords,
			Tags:            fm.Tags,
			SidebarLabel:    fm.SidebarLabel,
			SidebarPosition: fm.SidebarPosition,
			Category:        fm.Category,
			Author:          fm.Author,
			Date:            fm.Date,
		},
		HasCode:   hasCode,
		HasImages: hasImages,
		WordCount: len(strings.Fields(body)),
		Body:      body,
	}
	p.ContentType = classify.Classify(relPath, title, headers)
	p.Complexity = classify.Complexity(len(headers), hasCode, hasImages)
	return p, nil
}

// resolveTitle applies the title resolution chain:
// front-matter title -> front-matter id -> first H1 -> filename.
func resolveTitle(fm frontMatter, body, relPath string) string {
	if t := strings.TrimSpace(fm.Title); t != "" {
		return t
	}
	if t := strings.TrimSpace(fm.ID); t != "" {
		return t
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return cleanHeaderText(strings.TrimPrefix(trimmed, "# "))
		}
	}
	return filenameToTitle(relPath)
}

// filenameToTitle converts "user-guide.mdx" to "User Guide".
func filenameToTitle(relPath string) string {
	base := path.Base(relPath)
	base = strings.TrimSuffix(base, path.Ext(base))
	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// deriveURL builds the site URL from the relative path and front-matter
// slug/id. Directory segments are percent-encoded.
func deriveURL(relPath string, fm frontMatter) string {
	dir := path.Dir(relPath)
	leaf := strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))
	if fm.Slug != "" {
		leaf = strings.Trim(fm.Slug, "/")
	} else if fm.ID != "" {
		leaf = fm.ID
	}

	var segs []string
	if dir != "." {
		for _, s := range strings.Split(dir, "/") {
			segs = append(segs, url.PathEscape(s))
		}
	}
	segs = append(segs, leaf)
	return "/" + strings.Join(segs, "/")
}

// extractHeaders returns the cleaned text of every H2-H6 heading, in order.
func extractHeaders(body string) []string {
	var headers []string
	inFence := false
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		level := headingLevel(trimmed)
		if level >= 2 && level <= 6 {
			text := cleanHeaderText(trimmed[level+1:])
			if text != "" {
				headers = append(headers, text)
			}
		}
	}
	return headers
}

// headingLevel returns the ATX heading level of a trimmed line, or 0 if the
// line is not a heading. A heading needs 1-6 leading '#' followed by a space.
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

// cleanHeaderText strips markdown emphasis, inline code, trailing anchor
// braces ({#anchor}), and trailing closing hashes from heading text.
func cleanHeaderText(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, "{#"); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	text = strings.TrimRight(text, "#")
	replacer := strings.NewReplacer("**", "", "__", "", "`", "", "*", "", "{", "", "}", "")
	return strings.TrimSpace(replacer.Replace(text))
}

// makeExcerpt returns the first one or two sentences of the body, capped at
// 150 characters, skipping headings, code fences, and imports.
func makeExcerpt(body string) string {
	var prose []string
	inFence := false
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence || trimmed == "" || strings.HasPrefix(trimmed, "#") ||
			strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "<") ||
			strings.HasPrefix(trimmed, "|") || strings.HasPrefix(trimmed, "![") {
			continue
		}
		prose = append(prose, trimmed)
		if len(strings.Join(prose, " ")) > maxExcerptLen {
			break
		}
	}
	text := strings.Join(prose, " ")
	if text == "" {
		return ""
	}

	// Keep the first sentence, plus the second if it still fits.
	out := text
	if i := strings.Index(text, ". "); i >= 0 {
		first := text[:i+1]
		if j := strings.Index(text[i+2:], ". "); j >= 0 && len(first)+2+j+1 <= maxExcerptLen {
			out = text[:i+2+j+1]
		} else {
			out = first
		}
	}
	if len(out) > maxExcerptLen {
		out = strings.TrimSpace(out[:maxExcerptLen])
	}
	return out
}
