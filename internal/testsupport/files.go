package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes the given content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteExecutable writes an executable script to path, creating parent
// directories.
func WriteExecutable(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteModule lays out a notebook module directory with an executable
// main.sh holding the provided script body. It returns the module directory.
func WriteModule(t testing.TB, notebookDir, dirName, script string) string {
	t.Helper()

	moduleDir := filepath.Join(notebookDir, dirName)
	WriteExecutable(t, filepath.Join(moduleDir, "main.sh"), script)
	return moduleDir
}
