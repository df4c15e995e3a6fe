// Package web provides a local read-only HTTP API over the docs index.
package web

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mischegoss/docscan/internal/index"
	"github.com/mischegoss/docscan/internal/loader"
	"github.com/mischegoss/docscan/internal/search"
)

// Serve starts the API server on the given address. The index artifact is
// reloaded automatically when its file changes on disk (e.g. a concurrent
// `docscan watch` rewrote it).
func Serve(addr, indexPath, version string) error {
	s := &server{
		indexPath: indexPath,
		version:   version,
	}
	if err := s.reload(); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/pages", s.handlePages)
	mux.HandleFunc("/api/pages/", s.handlePageByPath) // /api/pages/{path}

	handler := localhostOnly(securityHeaders(mux))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	fmt.Fprintf(os.Stderr, "docscan API: http://%s\n", listener.Addr())
	return http.Serve(listener, handler)
}

type server struct {
	indexPath string
	version   string

	mu      sync.Mutex
	doc     *index.Document
	engine  *search.Engine
	modTime time.Time
}

// reload swaps in a fresh index snapshot when the artifact changed on disk.
func (s *server) reload() error {
	info, err := os.Stat(s.indexPath)
	if err != nil {
		return fmt.Errorf("stat index %s: %w", s.indexPath, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc != nil && info.ModTime().Equal(s.modTime) {
		return nil
	}
	doc, err := index.Load(s.indexPath)
	if err != nil {
		return err
	}
	s.doc = doc
	s.engine = search.NewEngine(doc, 0)
	s.modTime = info.ModTime()
	return nil
}

// snapshot returns the current doc and engine, reloading first if possible.
// A failed reload keeps serving the last good snapshot.
func (s *server) snapshot() (*index.Document, *search.Engine) {
	if err := s.reload(); err != nil {
		fmt.Fprintf(os.Stderr, "  [WARN] index reload: %v\n", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc, s.engine
}

// --- Middleware ---

func localhostOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if idx := strings.LastIndex(host, ":"); idx >= 0 {
			host = host[:idx]
		}
		host = strings.Trim(host, "[]") // strip IPv6 brackets

		if host == "localhost" {
			next.ServeHTTP(w, r)
			return
		}
		if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
			next.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Forbidden", http.StatusForbidden)
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		next.ServeHTTP(w, r)
	})
}

// --- Handlers ---

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]any{
		"name":      "docscan",
		"version":   s.version,
		"endpoints": []string{"/api/status", "/api/search?q=", "/api/pages", "/api/pages/{path}"},
	})
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	doc, _ := s.snapshot()

	indexSize := int64(0)
	if info, err := os.Stat(s.indexPath); err == nil {
		indexSize = info.Size()
	}
	indexAge := ""
	if age := doc.Age(); age > 0 {
		indexAge = age.Round(time.Second).String()
	}

	writeJSON(w, map[string]any{
		"page_count":  doc.PageCount,
		"chunk_count": doc.ChunkCount,
		"checksum":    doc.Checksum,
		"index_size":  indexSize,
		"index_age":   indexAge,
		"version":     s.version,
	})
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" || len(query) > 10000 {
		writeError(w, http.StatusBadRequest, "missing or oversized query")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	_, engine := s.snapshot()
	results := engine.Search(query)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	resp := map[string]any{
		"results": results,
		"query":   query,
	}
	if len(results) == 0 {
		if suggestions := engine.Suggest(query); len(suggestions) > 0 {
			resp["suggestions"] = suggestions
		}
	}
	if results == nil {
		resp["results"] = []search.Result{}
	}
	writeJSON(w, resp)
}

// pageSummary is the list-view shape of a page.
type pageSummary struct {
	Title      string `json:"title"`
	Path       string `json:"path"`
	URL        string `json:"url"`
	Type       string `json:"type"`
	Complexity string `json:"complexity"`
	WordCount  int    `json:"wordCount"`
}

func (s *server) handlePages(w http.ResponseWriter, r *http.Request) {
	doc, _ := s.snapshot()
	summaries := make([]pageSummary, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		summaries = append(summaries, pageSummary{
			Title:      p.Title,
			Path:       p.FilePath,
			URL:        p.URL,
			Type:       p.ContentType.Type,
			Complexity: p.Complexity,
			WordCount:  p.WordCount,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Path < summaries[j].Path })
	writeJSON(w, summaries)
}

func (s *server) handlePageByPath(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/api/pages/")
	if raw == "" {
		s.handlePages(w, r)
		return
	}

	decoded, err := url.PathUnescape(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid path encoding")
		return
	}
	clean := filepath.ToSlash(filepath.Clean(decoded))

	// Block traversal and absolute paths.
	if strings.HasPrefix(clean, "..") || strings.HasPrefix(clean, "/") || strings.Contains(clean, "/..") {
		writeError(w, http.StatusBadRequest, "invalid path")
		return
	}

	doc, _ := s.snapshot()
	page := findPage(doc, clean)
	if page == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, page)
}

// findPage looks a page up by its relative file path.
func findPage(doc *index.Document, relPath string) *loader.Page {
	for _, p := range doc.Pages {
		if p.FilePath == relPath {
			return p
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
