package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/mischegoss/docscan/internal/classify"
	"github.com/mischegoss/docscan/internal/index"
	"github.com/mischegoss/docscan/internal/loader"
)

func testServer(t *testing.T) *server {
	t.Helper()
	pages := []*loader.Page{
		{
			Title:       "Webhook Configuration",
			FilePath:    "config/webhooks.md",
			URL:         "/config/webhooks",
			ContentType: classify.Classify("config/webhooks.md", "Webhook Configuration", nil),
			Complexity:  "simple",
			WordCount:   120,
		},
		{
			Title:       "Getting Started",
			FilePath:    "guides/getting-started.md",
			URL:         "/guides/getting-started",
			ContentType: classify.Classify("guides/getting-started.md", "Getting Started", nil),
			Complexity:  "simple",
			WordCount:   300,
		},
	}
	doc, err := index.New(pages, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "docs-index.json")
	if err := index.Write(doc, path); err != nil {
		t.Fatal(err)
	}

	s := &server{indexPath: path, version: "test"}
	if err := s.reload(); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestLocalhostOnly(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := localhostOnly(inner)

	cases := []struct {
		host string
		want int
	}{
		{"localhost:8750", http.StatusOK},
		{"127.0.0.1:8750", http.StatusOK},
		{"[::1]:8750", http.StatusOK},
		{"example.com", http.StatusForbidden},
		{"10.0.0.5:8750", http.StatusForbidden},
	}
	for _, c := range cases {
		req := httptest.NewRequest("GET", "/", nil)
		req.Host = c.host
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != c.want {
			t.Errorf("host %q: status %d, want %d", c.host, rec.Code, c.want)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := securityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("X-Frame-Options missing")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("X-Content-Type-Options missing")
	}
}

func TestHandleStatus(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.handleStatus(rec, httptest.NewRequest("GET", "/api/status", nil))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["page_count"].(float64) != 2 {
		t.Errorf("page_count = %v", body["page_count"])
	}
	if body["checksum"] == "" {
		t.Error("checksum missing from status")
	}
}

func TestHandleSearch(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.handleSearch(rec, httptest.NewRequest("GET", "/api/search?q=webhook", nil))

	var body struct {
		Results []struct {
			Title string `json:"title"`
		} `json:"results"`
		Query string `json:"query"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Results) == 0 || body.Results[0].Title != "Webhook Configuration" {
		t.Errorf("results = %+v", body.Results)
	}
}

func TestHandleSearchMissingQuery(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.handleSearch(rec, httptest.NewRequest("GET", "/api/search", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSearchSuggestionsOnMiss(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	// "webhk" is too far for the fuzzy scoring tier but close enough for the
	// wider suggestion threshold.
	s.handleSearch(rec, httptest.NewRequest("GET", "/api/search?q=webhk", nil))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if results := body["results"].([]any); len(results) != 0 {
		t.Fatalf("results = %v, want empty", results)
	}
	if _, ok := body["suggestions"]; !ok {
		t.Error("no suggestions for a near-miss query")
	}
}

func TestHandlePages(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.handlePages(rec, httptest.NewRequest("GET", "/api/pages", nil))

	var summaries []pageSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summaries); err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d pages", len(summaries))
	}
	// Sorted by path.
	if summaries[0].Path != "config/webhooks.md" {
		t.Errorf("pages not sorted by path: %+v", summaries)
	}
}

func TestHandlePageByPath(t *testing.T) {
	s := testServer(t)
	escaped := url.PathEscape("config/webhooks.md")
	rec := httptest.NewRecorder()
	s.handlePageByPath(rec, httptest.NewRequest("GET", "/api/pages/"+escaped, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var page loader.Page
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatal(err)
	}
	if page.Title != "Webhook Configuration" {
		t.Errorf("Title = %q", page.Title)
	}
}

func TestHandlePageByPathRejectsTraversal(t *testing.T) {
	s := testServer(t)
	for _, p := range []string{"../etc/passwd", "/etc/passwd", "a/../../b"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/pages/"+url.PathEscape(p), nil)
		s.handlePageByPath(rec, req)
		if rec.Code != http.StatusBadRequest && rec.Code != http.StatusNotFound {
			t.Errorf("path %q: status %d, want rejection", p, rec.Code)
		}
	}
}

func TestHandlePageByPathUnknown(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.handlePageByPath(rec, httptest.NewRequest("GET", "/api/pages/absent.md", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
