package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// MkdirAll creates a directory tree, failing the test on error.
func MkdirAll(t testing.TB, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
}

// WriteCSV writes content to dir/name and returns the full path.
func WriteCSV(t testing.TB, dir, name, content string) string {
	t.Helper()
	MkdirAll(t, dir)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Touch sets a file's modification time.
func Touch(t testing.TB, path string, modTime time.Time) {
	t.Helper()
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}
