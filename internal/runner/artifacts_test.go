package runner

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCollectArtifactsKeepsNewestPerGroup(t *testing.T) {
	outputDir := t.TempDir()
	older := filepath.Join(outputDir, "results_20260101_080000.pdf")
	newer := filepath.Join(outputDir, "results_20260102_080000.pdf")
	other := filepath.Join(outputDir, "figure.pdf")
	for _, path := range []string{older, newer, other} {
		if err := os.WriteFile(path, []byte("%PDF"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	if err := os.WriteFile(filepath.Join(outputDir, "notes.txt"), nil, 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	if err := os.Chtimes(older, base, base); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if err := os.Chtimes(newer, base.Add(24*time.Hour), base.Add(24*time.Hour)); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	artifacts, err := collectArtifacts(outputDir)
	if err != nil {
		t.Fatalf("collectArtifacts: %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %v", artifacts)
	}
	if artifacts[0] != other {
		t.Fatalf("expected figure first, got %s", artifacts[0])
	}
	if artifacts[1] != newer {
		t.Fatalf("expected newest timestamped file, got %s", artifacts[1])
	}
}

func TestCollectArtifactsMissingDir(t *testing.T) {
	artifacts, err := collectArtifacts(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if artifacts != nil {
		t.Fatalf("expected nil artifacts, got %v", artifacts)
	}
}
