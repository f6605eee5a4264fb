package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteMediaFile drops a small placeholder media file at path and returns its
// size. The payload is inert; suites stub every tool that would read it.
func WriteMediaFile(t testing.TB, path string) int64 {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	payload := []byte("placeholder media: " + filepath.Base(path) + "\n")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return int64(len(payload))
}
