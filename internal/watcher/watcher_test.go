package watcher

import (
	"os"
	"path/filepath"
	"testing"
)

func mkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func TestWalkDirsSkipsExcludedDirs(t *testing.T) {
	root := t.TempDir()

	mkdirAll(t, filepath.Join(root, "guides", "nested"))
	mkdirAll(t, filepath.Join(root, "_drafts"))
	mkdirAll(t, filepath.Join(root, ".git"))
	mkdirAll(t, filepath.Join(root, "node_modules"))
	mkdirAll(t, filepath.Join(root, "build"))

	got := walkDirs(root)
	relSet := make(map[string]bool, len(got))
	for _, p := range got {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatalf("rel path: %v", err)
		}
		relSet[filepath.ToSlash(rel)] = true
	}

	if !relSet["."] {
		t.Fatalf("expected docs root in watched dirs")
	}
	if !relSet["guides"] || !relSet["guides/nested"] {
		t.Fatalf("expected guides dirs to be watched, got: %#v", relSet)
	}
	for _, skipped := range []string{"_drafts", ".git", "node_modules", "build"} {
		if relSet[skipped] {
			t.Fatalf("expected %s to be skipped, got: %#v", skipped, relSet)
		}
	}
}

func TestIsDocFile(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"/docs/guide.md", true},
		{"/docs/guide.mdx", true},
		{"/docs/guide.txt", false},
		{"/docs/README.md", false},
		{"/docs/readme.mdx", false},
		{"/docs/_partial.md", false},
		{"/docs/.hidden.md", false},
		{"/docs/guide.md.swp", false},
	}
	for _, c := range cases {
		if got := isDocFile(c.path); got != c.want {
			t.Errorf("isDocFile(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}
