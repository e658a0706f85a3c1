package runner_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"labbook/internal/registry"
	"labbook/internal/runner"
	"labbook/internal/testsupport"
)

func TestRunDisabledModuleSkips(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	r := runner.New(cfg, nil)

	result := r.Run(context.Background(), registry.Descriptor{
		ID:        "2.1",
		EntryPath: filepath.Join(cfg.Paths.NotebookDir, "missing", "main.py"),
		Enabled:   false,
	})

	if result.Status != runner.StatusSkipped {
		t.Fatalf("expected skipped, got %s", result.Status)
	}
	if result.ErrorDetail != "" {
		t.Fatalf("skipped result should carry no error, got %q", result.ErrorDetail)
	}
}

func TestRunSuccessCollectsArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	moduleDir := testsupport.WriteModule(t, cfg.Paths.NotebookDir, "1.1_intro",
		"#!/bin/sh\nmkdir -p \"$LABBOOK_OUTPUT_DIR\"\n: > \"$LABBOOK_OUTPUT_DIR/intro_20260101_120000.pdf\"\necho done\n")
	r := runner.New(cfg, nil)

	desc := registry.Descriptor{
		ID:        "1.1",
		Path:      moduleDir,
		EntryPath: filepath.Join(moduleDir, "main.sh"),
		Enabled:   true,
	}
	result := r.Run(context.Background(), desc)

	if result.Status != runner.StatusSuccess {
		t.Fatalf("expected success, got %s (%s)", result.Status, result.ErrorDetail)
	}
	if len(result.ArtifactPaths) != 1 {
		t.Fatalf("expected 1 artifact, got %v", result.ArtifactPaths)
	}
	if !strings.HasSuffix(result.ArtifactPaths[0], "intro_20260101_120000.pdf") {
		t.Fatalf("unexpected artifact %s", result.ArtifactPaths[0])
	}
	if !strings.Contains(result.Output, "done") {
		t.Fatalf("expected captured stdout, got %q", result.Output)
	}
}

func TestRunFailureCapturesStderrTail(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	moduleDir := testsupport.WriteModule(t, cfg.Paths.NotebookDir, "1.2_broken",
		"#!/bin/sh\necho \"simulation diverged\" >&2\nexit 3\n")
	r := runner.New(cfg, nil)

	desc := registry.Descriptor{
		ID:        "1.2",
		Path:      moduleDir,
		EntryPath: filepath.Join(moduleDir, "main.sh"),
		Enabled:   true,
	}
	result := r.Run(context.Background(), desc)

	if result.Status != runner.StatusFailed {
		t.Fatalf("expected failed, got %s", result.Status)
	}
	if !strings.Contains(result.ErrorDetail, "simulation diverged") {
		t.Fatalf("expected stderr in detail, got %q", result.ErrorDetail)
	}
}

func TestRunMissingEntryFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	r := runner.New(cfg, nil)

	desc := registry.Descriptor{
		ID:        "9.9",
		EntryPath: filepath.Join(cfg.Paths.NotebookDir, "9.9_ghost", "main.py"),
		Enabled:   true,
	}
	result := r.Run(context.Background(), desc)

	if result.Status != runner.StatusFailed {
		t.Fatalf("expected failed, got %s", result.Status)
	}
	if !strings.Contains(result.ErrorDetail, "not found") {
		t.Fatalf("unexpected detail %q", result.ErrorDetail)
	}
}
