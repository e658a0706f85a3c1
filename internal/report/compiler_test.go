package report_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"labbook/internal/orchestrator"
	"labbook/internal/report"
	"labbook/internal/runner"
	"labbook/internal/services"
	"labbook/internal/testsupport"
)

// stubMergeTool copies nothing; it records its argv and touches the final
// argument so the output-existence check passes.
const stubMergeTool = "#!/bin/sh\n" +
	"for last in \"$@\"; do :; done\n" +
	"printf '%s\\n' \"$@\" > \"${last}.args\"\n" +
	": > \"$last\"\n"

func summaryWith(results ...runner.Result) *orchestrator.Summary {
	return &orchestrator.Summary{RunID: "run-1", Results: results}
}

func TestCompileMergesSuccessArtifactsInOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	tool := filepath.Join(testsupport.BaseDir(cfg), "mergepdf")
	testsupport.WriteExecutable(t, tool, stubMergeTool)
	cfg.Report.MergeTool = tool

	first := filepath.Join(testsupport.BaseDir(cfg), "a.pdf")
	second := filepath.Join(testsupport.BaseDir(cfg), "b.pdf")
	testsupport.WriteFile(t, first, "%PDF-a")
	testsupport.WriteFile(t, second, "%PDF-b")

	summary := summaryWith(
		runner.Result{ModuleID: "3.1", Status: runner.StatusSuccess, ArtifactPaths: []string{first}},
		runner.Result{ModuleID: "2.2", Status: runner.StatusFailed, ErrorDetail: "boom"},
		runner.Result{ModuleID: "1.4", Status: runner.StatusSuccess, ArtifactPaths: []string{second}},
	)

	compiler := report.New(cfg, nil)
	outPath, err := compiler.Compile(context.Background(), summary, "Lab Notebook")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if filepath.Dir(outPath) != cfg.Paths.OutputDir {
		t.Fatalf("report written outside output dir: %s", outPath)
	}
	if !strings.HasPrefix(filepath.Base(outPath), "lab_notebook_") {
		t.Fatalf("unexpected report name %s", filepath.Base(outPath))
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Fatalf("report not written: %v", err)
	}

	argsRaw, err := os.ReadFile(outPath + ".args")
	if err != nil {
		t.Fatalf("read recorded args: %v", err)
	}
	args := strings.Fields(string(argsRaw))
	if len(args) != 3 || args[0] != first || args[1] != second || args[2] != outPath {
		t.Fatalf("unexpected merge args %v", args)
	}
}

func TestCompileNoArtifactsIsCompileError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	compiler := report.New(cfg, nil)

	summary := summaryWith(
		runner.Result{ModuleID: "1.1", Status: runner.StatusFailed, ErrorDetail: "boom"},
		runner.Result{ModuleID: "2.1", Status: runner.StatusSkipped},
	)

	_, err := compiler.Compile(context.Background(), summary, "")
	if !errors.Is(err, services.ErrCompile) {
		t.Fatalf("expected compile error, got %v", err)
	}
}

func TestCompileSkipsMissingArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	tool := filepath.Join(testsupport.BaseDir(cfg), "mergepdf")
	testsupport.WriteExecutable(t, tool, stubMergeTool)
	cfg.Report.MergeTool = tool

	present := filepath.Join(testsupport.BaseDir(cfg), "present.pdf")
	testsupport.WriteFile(t, present, "%PDF")
	missing := filepath.Join(testsupport.BaseDir(cfg), "deleted.pdf")

	summary := summaryWith(
		runner.Result{ModuleID: "1.1", Status: runner.StatusSuccess, ArtifactPaths: []string{missing, present}},
	)

	compiler := report.New(cfg, nil)
	outPath, err := compiler.Compile(context.Background(), summary, "notes")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	argsRaw, err := os.ReadFile(outPath + ".args")
	if err != nil {
		t.Fatalf("read recorded args: %v", err)
	}
	args := strings.Fields(string(argsRaw))
	if len(args) != 2 || args[0] != present {
		t.Fatalf("expected only the present artifact, got %v", args)
	}
}

func TestCompileAllArtifactsMissingIsCompileError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	compiler := report.New(cfg, nil)

	summary := summaryWith(
		runner.Result{ModuleID: "1.1", Status: runner.StatusSuccess, ArtifactPaths: []string{filepath.Join(testsupport.BaseDir(cfg), "gone.pdf")}},
	)

	_, err := compiler.Compile(context.Background(), summary, "")
	if !errors.Is(err, services.ErrCompile) {
		t.Fatalf("expected compile error, got %v", err)
	}
}

func TestCompileFailingToolIsExternalToolError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	tool := filepath.Join(testsupport.BaseDir(cfg), "mergepdf")
	testsupport.WriteExecutable(t, tool, "#!/bin/sh\necho 'corrupt page tree' >&2\nexit 1\n")
	cfg.Report.MergeTool = tool

	artifact := filepath.Join(testsupport.BaseDir(cfg), "a.pdf")
	testsupport.WriteFile(t, artifact, "%PDF")

	summary := summaryWith(
		runner.Result{ModuleID: "1.1", Status: runner.StatusSuccess, ArtifactPaths: []string{artifact}},
	)

	compiler := report.New(cfg, nil)
	_, err := compiler.Compile(context.Background(), summary, "")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "corrupt page tree") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}
