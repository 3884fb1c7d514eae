// Package testutil holds helpers for tests that work on real directory trees.
package testutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
)

// FindProjectRoot walks up from the calling test's source file to the
// directory holding go.mod.
func FindProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(1)
	if !ok {
		return "", fmt.Errorf("failed to get caller information")
	}

	for dir := filepath.Dir(filename); ; {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found in any parent directory of %s", filename)
		}
		dir = parent
	}
}

// MakeTree creates the given entries below root. Entries ending in "/" are
// directories, everything else is a small regular file; parents are created
// as needed.
func MakeTree(t *testing.T, root string, entries ...string) {
	t.Helper()

	for _, entry := range entries {
		path := filepath.Join(root, filepath.FromSlash(entry))
		if strings.HasSuffix(entry, "/") {
			if err := os.MkdirAll(path, 0o755); err != nil {
				t.Fatalf("failed to create dir %s: %v", entry, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create parent of %s: %v", entry, err)
		}
		if err := os.WriteFile(path, []byte(entry+"\n"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", entry, err)
		}
	}
}

// ListTree returns every entry below root in MakeTree notation, sorted.
func ListTree(t *testing.T, root string) []string {
	t.Helper()

	var entries []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			rel += "/"
		}
		entries = append(entries, rel)
		return nil
	})
	if err != nil {
		t.Fatalf("failed to list %s: %v", root, err)
	}

	sort.Strings(entries)
	return entries
}
