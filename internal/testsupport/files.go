package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path, and any missing parents, holding size bytes of
// filler. The filler is no known audio container, so decoders reject it. A
// size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()
	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{'B'}, int(size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
