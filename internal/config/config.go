// Package config provides configuration for the docscan binary.
// Loads from: CLI flags > env vars > .docscan.toml > built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

// Chunking defaults. Sizes are in the unit selected by [chunking].sizing:
// characters ("chars", default) or estimated tokens ("tokens").
const (
	DefaultMaxChunkChars     = 1500
	DefaultOverlapChars      = 100
	DefaultMaxChunkTokens    = 800
	DefaultOverlapTokens     = 100
	DefaultMinUsefulChars    = 50
	DefaultIndexFile         = "docs-index.json"
	DefaultServerAddr        = "127.0.0.1:8750"
	DefaultMaxSearchResults  = 8
	DefaultMinRelevanceScore = 10.0
)

// Config holds all docscan configuration, loaded from TOML + env + flags.
type Config struct {
	Docs      DocsConfig        `toml:"docs"`
	Chunking  ChunkingConfig    `toml:"chunking"`
	Variables map[string]string `toml:"variables"`
	Search    SearchConfig      `toml:"search"`
	Server    ServerConfig      `toml:"server"`
}

// DocsConfig holds source-tree settings.
type DocsConfig struct {
	Path      string   `toml:"path"`
	IndexFile string   `toml:"index_file"`
	SkipDirs  []string `toml:"skip_dirs"`
	SkipFiles []string `toml:"skip_files"`
}

// ChunkingConfig holds chunk size budgets.
type ChunkingConfig struct {
	Sizing    string `toml:"sizing"` // "chars" (default) or "tokens"
	MaxSize   int    `toml:"max_size"`
	Overlap   int    `toml:"overlap"`
	MinUseful int    `toml:"min_useful"`
}

// SearchConfig holds scorer settings.
type SearchConfig struct {
	MaxResults int     `toml:"max_results"`
	MinScore   float64 `toml:"min_score"`
}

// ServerConfig holds the local HTTP API settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns a Config with all built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Docs: DocsConfig{
			IndexFile: DefaultIndexFile,
		},
		Chunking: ChunkingConfig{
			Sizing:    "chars",
			MaxSize:   DefaultMaxChunkChars,
			Overlap:   DefaultOverlapChars,
			MinUseful: DefaultMinUsefulChars,
		},
		Search: SearchConfig{
			MaxResults: DefaultMaxSearchResults,
			MinScore:   DefaultMinRelevanceScore,
		},
		Server: ServerConfig{
			Addr: DefaultServerAddr,
		},
	}
}

// LoadConfig merges all configuration sources: defaults < TOML file < env
// vars. The CLI --docs flag (DocsOverride) is handled by DocsPath().
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(findConfigFile())
}

// LoadConfigFrom loads configuration from a specific file path, merging with
// defaults and env vars.
func LoadConfigFrom(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			meta, err := toml.DecodeFile(configPath, cfg)
			if err != nil {
				return nil, fmt.Errorf("parse config %s: %w", configPath, err)
			}
			warnUnknownKeys(meta, configPath)
		}
	}

	if v := os.Getenv("DOCSCAN_DOCS_PATH"); v != "" {
		cfg.Docs.Path = v
	}
	if v := os.Getenv("DOCSCAN_INDEX_FILE"); v != "" {
		cfg.Docs.IndexFile = v
	}
	if v := os.Getenv("DOCSCAN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DOCSCAN_SKIP_DIRS"); v != "" {
		for _, d := range strings.Split(v, ",") {
			d = strings.TrimSpace(d)
			if d != "" {
				cfg.Docs.SkipDirs = append(cfg.Docs.SkipDirs, d)
			}
		}
	}

	// Apply TOML/env skip lists to the package-level maps used by the walker.
	if len(cfg.Docs.SkipDirs) > 0 {
		RebuildSkipDirs(cfg.Docs.SkipDirs)
	}
	for _, f := range cfg.Docs.SkipFiles {
		f = strings.TrimSpace(f)
		if f != "" {
			SkipFiles[f] = true
		}
	}

	return cfg, nil
}

// findConfigFile looks for .docscan.toml starting from the docs path, then CWD.
func findConfigFile() string {
	if dp := resolveDocsForConfig(); dp != "" {
		p := filepath.Join(dp, ".docscan.toml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, ".docscan.toml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// resolveDocsForConfig resolves the docs path for config discovery without
// calling DocsPath(), which would itself load config.
func resolveDocsForConfig() string {
	if DocsOverride != "" {
		return DocsOverride
	}
	if v := os.Getenv("DOCSCAN_DOCS_PATH"); v != "" {
		return v
	}
	return ""
}

// ConfigFilePath returns the path where the config file should be written
// for the given docs root.
func ConfigFilePath(docsPath string) string {
	return filepath.Join(docsPath, ".docscan.toml")
}

// GenerateConfig writes a default .docscan.toml with comments.
func GenerateConfig(docsPath string) error {
	configPath := ConfigFilePath(docsPath)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(configPath, []byte(generateTOMLContent(docsPath)), 0o600)
}

func generateTOMLContent(docsPath string) string {
	var b strings.Builder
	b.WriteString("# docscan configuration\n")
	b.WriteString("#\n")
	b.WriteString("# Priority: CLI flags > environment variables > this file > built-in defaults\n")
	b.WriteString("# Environment variables: DOCSCAN_DOCS_PATH, DOCSCAN_INDEX_FILE,\n")
	b.WriteString("#   DOCSCAN_SKIP_DIRS, DOCSCAN_ADDR\n\n")

	b.WriteString("[docs]\n")
	if docsPath != "" {
		b.WriteString(fmt.Sprintf("path = %q\n", docsPath))
	} else {
		b.WriteString("# path = \"/path/to/your/docs\"\n")
	}
	b.WriteString("index_file = \"docs-index.json\"\n")
	b.WriteString("# skip_dirs = [\"drafts\", \"archive\"]   # added to built-in exclusions\n")
	b.WriteString("# skip_files = [\"TEMPLATE.md\"]\n\n")

	b.WriteString("[chunking]\n")
	b.WriteString("# sizing: \"chars\" (character budget) or \"tokens\" (estimated tokens, ~4 chars each)\n")
	b.WriteString("sizing = \"chars\"\n")
	b.WriteString("max_size = 1500\n")
	b.WriteString("overlap = 100\n")
	b.WriteString("min_useful = 50\n\n")

	b.WriteString("[variables]\n")
	b.WriteString("# Placeholder substitution applied before chunking. Each NAME is rewritten\n")
	b.WriteString("# in the forms ${NAME}, {{NAME}}, [NAME], NAME:, and bare NAME.\n")
	b.WriteString("# PRODUCT = \"Actions\"\n\n")

	b.WriteString("[search]\n")
	b.WriteString("max_results = 8\n")
	b.WriteString("min_score = 10.0\n\n")

	b.WriteString("[server]\n")
	b.WriteString("addr = \"127.0.0.1:8750\"\n")

	return b.String()
}

// ShowConfig returns the current effective configuration as TOML.
func ShowConfig() string {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Sprintf("# Error loading config: %v\n", err)
	}
	if cfg.Docs.Path == "" {
		cfg.Docs.Path = DocsPath()
	}
	var b strings.Builder
	b.WriteString("# Effective docscan configuration (merged from all sources)\n\n")
	enc := toml.NewEncoder(&b)
	enc.Encode(cfg)
	return b.String()
}

// FindConfigFile returns the path to the active config file, or empty string
// if none was found.
func FindConfigFile() string {
	return findConfigFile()
}

// configSuggestions maps common wrong keys to the correct TOML key name.
var configSuggestions = map[string]string{
	"exclude_paths": "skip_dirs",
	"exclude_dirs":  "skip_dirs",
	"skip_paths":    "skip_dirs",
	"ignored_dirs":  "skip_dirs",
	"ignore_dirs":   "skip_dirs",
	"excludes":      "skip_dirs",
	"chunk_size":    "max_size",
	"max_chars":     "max_size",
	"max_tokens":    "max_size",
	"min_size":      "min_useful",
	"top_k":         "max_results",
	"output":        "index_file",
	"out":           "index_file",
}

// warnUnknownKeys prints warnings for unrecognized config keys.
func warnUnknownKeys(meta toml.MetaData, configPath string) {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return
	}
	fname := filepath.Base(configPath)
	for _, key := range undecoded {
		keyStr := key.String()
		lastPart := key[len(key)-1]
		if suggestion, ok := configSuggestions[lastPart]; ok {
			fmt.Fprintf(os.Stderr, "docscan: WARNING: unknown key %q in %s, did you mean %q?\n",
				keyStr, fname, suggestion)
		} else {
			fmt.Fprintf(os.Stderr, "docscan: WARNING: unknown key %q in %s (will be ignored)\n",
				keyStr, fname)
		}
	}
}

// defaultSkipDirs are directories always excluded from docs walks, on top of
// the dot/underscore prefix rule applied by the walker.
var defaultSkipDirs = map[string]bool{
	"node_modules": true,
	"build":        true,
	"dist":         true,
}

// SkipFiles are filenames excluded from indexing beyond the built-in rules.
var SkipFiles = map[string]bool{}

// SkipDirs is the active set of excluded directory names.
var SkipDirs = buildSkipDirs()

func buildSkipDirs() map[string]bool {
	dirs := make(map[string]bool)
	for k, v := range defaultSkipDirs {
		dirs[k] = v
	}
	if extra := os.Getenv("DOCSCAN_SKIP_DIRS"); extra != "" {
		for _, d := range strings.Split(extra, ",") {
			d = strings.TrimSpace(d)
			if d != "" {
				dirs[d] = true
			}
		}
	}
	return dirs
}

// RebuildSkipDirs rebuilds the SkipDirs map, incorporating config settings.
func RebuildSkipDirs(extra []string) {
	dirs := buildSkipDirs()
	for _, d := range extra {
		d = strings.TrimSpace(d)
		if d != "" {
			dirs[d] = true
		}
	}
	SkipDirs = dirs
}

// DocsOverride is set by the --docs global flag.
var DocsOverride string

// DocsPath returns the docs root directory.
// Validates the path is a reasonable root (not / or another top-level path
// that would make the scanner walk the entire filesystem).
func DocsPath() string {
	var path string
	switch {
	case DocsOverride != "":
		path = DocsOverride
	case os.Getenv("DOCSCAN_DOCS_PATH") != "":
		path = os.Getenv("DOCSCAN_DOCS_PATH")
	default:
		if cfg, err := LoadConfig(); err == nil && cfg.Docs.Path != "" {
			path = cfg.Docs.Path
		} else if cwd, err := os.Getwd(); err == nil {
			// Auto-detect: a docs/ directory under CWD, else CWD itself.
			if info, err := os.Stat(filepath.Join(cwd, "docs")); err == nil && info.IsDir() {
				path = filepath.Join(cwd, "docs")
			} else {
				path = cwd
			}
		}
	}
	if path != "" {
		path = validateDocsPath(path)
	}
	return path
}

// validateDocsPath rejects docs roots that are too broad (e.g., /, /home).
func validateDocsPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	dangerous := []string{"/", "/home", "/Users", "/tmp", "/var", "/etc", "/opt"}
	if runtime.GOOS == "windows" && len(abs) >= 3 {
		for _, letter := range "ABCDEFGHIJKLMNOPQRSTUVWXYZ" {
			dangerous = append(dangerous, string(letter)+":\\")
		}
	}
	for _, d := range dangerous {
		if abs == d {
			fmt.Fprintf(os.Stderr, "WARNING: docs path %q is too broad, ignoring.\n", abs)
			return ""
		}
	}
	return path
}

// IndexPath returns the absolute path of the index artifact for the given
// config, anchored at the docs root when the configured path is relative.
func (c *Config) IndexPath() string {
	p := c.Docs.IndexFile
	if p == "" {
		p = DefaultIndexFile
	}
	if filepath.IsAbs(p) {
		return p
	}
	root := DocsPath()
	if root == "" {
		return p
	}
	return filepath.Join(root, p)
}

// Sentinel errors for consistent messaging across surfaces.
var (
	// ErrNoDocs is returned when no docs root can be resolved.
	ErrNoDocs = fmt.Errorf("no docs directory found: pass --docs or set DOCSCAN_DOCS_PATH")
	// ErrNoIndex is returned when the index artifact is missing.
	ErrNoIndex = fmt.Errorf("no index found: run 'docscan scan' first")
)
