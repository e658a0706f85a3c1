package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"labbook/internal/registry"
	"labbook/internal/testsupport"
)

type cliTestEnv struct {
	baseDir     string
	notebookDir string
	outputDir   string
	configPath  string
}

const passingModule = "#!/bin/sh\n" +
	"mkdir -p \"$LABBOOK_OUTPUT_DIR\"\n" +
	": > \"$LABBOOK_OUTPUT_DIR/${LABBOOK_MODULE_ID}_20260101_120000.pdf\"\n"

const failingModule = "#!/bin/sh\necho 'solver blew up' >&2\nexit 1\n"

func setupCLITestEnv(t *testing.T, registryYAML string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		baseDir:     base,
		notebookDir: filepath.Join(base, "notebook"),
		outputDir:   filepath.Join(base, "output"),
		configPath:  filepath.Join(base, "config.toml"),
	}

	mergeTool := filepath.Join(base, "mergepdf")
	testsupport.WriteExecutable(t, mergeTool,
		"#!/bin/sh\nfor last in \"$@\"; do :; done\n: > \"$last\"\n")

	testsupport.WriteFile(t, filepath.Join(env.notebookDir, "modules.yaml"), registryYAML)
	testsupport.WriteFile(t, env.configPath, fmt.Sprintf(`[paths]
notebook_dir = %q
output_dir = %q
log_dir = %q
asset_cache_dir = %q

[report]
merge_tool = %q

[logging]
level = "error"
`, env.notebookDir, env.outputDir, filepath.Join(base, "logs"), filepath.Join(base, "assets"), mergeTool))

	return env
}

func (env *cliTestEnv) writeModule(t *testing.T, dirName, script string) {
	t.Helper()
	testsupport.WriteModule(t, env.notebookDir, dirName, script)
}

func (env *cliTestEnv) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

const threeModuleRegistry = `modules:
  "1.1":
    name: Introduction
    path: 1.1_intro
    entry: main.sh
    enabled: true
    priority: 3
  "2.1":
    name: Methods
    path: 2.1_methods
    entry: main.sh
    enabled: false
    priority: 2
  "3.1":
    name: Results
    path: 3.1_results
    entry: main.sh
    enabled: true
    priority: 1
`

func TestRunCommandExecutesInPriorityOrder(t *testing.T) {
	env := setupCLITestEnv(t, threeModuleRegistry)
	env.writeModule(t, "1.1_intro", passingModule)
	env.writeModule(t, "2.1_methods", passingModule)
	env.writeModule(t, "3.1_results", passingModule)

	out, err := env.execute(t, "run")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}

	resultsIdx := strings.Index(out, "3.1")
	introIdx := strings.Index(out, "1.1")
	if resultsIdx == -1 || introIdx == -1 || resultsIdx > introIdx {
		t.Fatalf("expected 3.1 before 1.1 in output:\n%s", out)
	}
	if !strings.Contains(out, "2 succeeded, 0 failed, 1 skipped") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
	if !strings.Contains(out, "Report: ") {
		t.Fatalf("expected report path in output:\n%s", out)
	}

	entries, err := os.ReadDir(env.outputDir)
	if err != nil || len(entries) == 0 {
		t.Fatalf("expected merged report in %s: %v", env.outputDir, err)
	}
}

func TestRunCommandFailureSetsExitError(t *testing.T) {
	env := setupCLITestEnv(t, threeModuleRegistry)
	env.writeModule(t, "1.1_intro", passingModule)
	env.writeModule(t, "2.1_methods", passingModule)
	env.writeModule(t, "3.1_results", failingModule)

	out, err := env.execute(t, "run")
	if err == nil {
		t.Fatalf("expected error when a module fails:\n%s", out)
	}
	if !strings.Contains(err.Error(), "1 module(s) failed") {
		t.Fatalf("unexpected error %v", err)
	}
	if !strings.Contains(out, "FAILED 3.1: ") || !strings.Contains(out, "solver blew up") {
		t.Fatalf("expected failure detail in output:\n%s", out)
	}
	// The passing module still ran and the report still compiled.
	if !strings.Contains(out, "1 succeeded, 1 failed, 1 skipped") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
}

func TestRunCommandSelection(t *testing.T) {
	env := setupCLITestEnv(t, threeModuleRegistry)
	env.writeModule(t, "1.1_intro", passingModule)
	env.writeModule(t, "2.1_methods", passingModule)
	env.writeModule(t, "3.1_results", failingModule)

	out, err := env.execute(t, "run", "1.1")
	if err != nil {
		t.Fatalf("run 1.1: %v\n%s", err, out)
	}
	if !strings.Contains(out, "1 succeeded, 0 failed, 0 skipped") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
}

func TestRunCommandUnknownSelection(t *testing.T) {
	env := setupCLITestEnv(t, threeModuleRegistry)
	env.writeModule(t, "1.1_intro", passingModule)
	env.writeModule(t, "2.1_methods", passingModule)
	env.writeModule(t, "3.1_results", passingModule)

	out, err := env.execute(t, "run", "9.9")
	if err == nil {
		t.Fatalf("expected error for unknown id:\n%s", out)
	}
	if !strings.Contains(err.Error(), "unknown module ids: 9.9") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestListCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t, threeModuleRegistry)
	env.writeModule(t, "1.1_intro", passingModule)
	env.writeModule(t, "2.1_methods", passingModule)
	env.writeModule(t, "3.1_results", passingModule)

	out, err := env.execute(t, "list", "--json")
	if err != nil {
		t.Fatalf("list --json: %v\n%s", err, out)
	}

	var descriptors []registry.Descriptor
	if err := json.Unmarshal([]byte(out), &descriptors); err != nil {
		t.Fatalf("decode list output: %v\n%s", err, out)
	}
	if len(descriptors) != 3 {
		t.Fatalf("expected 3 modules, got %d", len(descriptors))
	}
	if descriptors[0].ID != "3.1" {
		t.Fatalf("expected priority order, got %s first", descriptors[0].ID)
	}
}

func TestListCommandTable(t *testing.T) {
	env := setupCLITestEnv(t, threeModuleRegistry)
	env.writeModule(t, "1.1_intro", passingModule)
	env.writeModule(t, "2.1_methods", passingModule)
	env.writeModule(t, "3.1_results", passingModule)

	out, err := env.execute(t, "list")
	if err != nil {
		t.Fatalf("list: %v\n%s", err, out)
	}
	for _, want := range []string{"Results", "Methods", "Introduction", "yes", "no"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestHistoryCommandAfterRun(t *testing.T) {
	env := setupCLITestEnv(t, threeModuleRegistry)
	env.writeModule(t, "1.1_intro", passingModule)
	env.writeModule(t, "2.1_methods", passingModule)
	env.writeModule(t, "3.1_results", passingModule)

	if out, err := env.execute(t, "run"); err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}

	out, err := env.execute(t, "history")
	if err != nil {
		t.Fatalf("history: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Run") || strings.Contains(out, "No recorded runs") {
		t.Fatalf("expected a recorded run:\n%s", out)
	}
}

func TestRegistryValidateCommand(t *testing.T) {
	env := setupCLITestEnv(t, threeModuleRegistry)
	env.writeModule(t, "1.1_intro", passingModule)
	env.writeModule(t, "2.1_methods", passingModule)
	env.writeModule(t, "3.1_results", passingModule)

	out, err := env.execute(t, "registry", "validate")
	if err != nil {
		t.Fatalf("registry validate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "3 modules, 2 enabled") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestRegistryDiscoverCommand(t *testing.T) {
	env := setupCLITestEnv(t, threeModuleRegistry)
	env.writeModule(t, "1.1_intro", passingModule)
	env.writeModule(t, "2.1_methods", passingModule)
	env.writeModule(t, "3.1_results", passingModule)

	out, err := env.execute(t, "registry", "discover")
	if err != nil {
		t.Fatalf("registry discover: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Dry run") {
		t.Fatalf("expected dry-run notice:\n%s", out)
	}
	for _, id := range []string{"1.1", "2.1", "3.1"} {
		if !strings.Contains(out, id) {
			t.Fatalf("expected %s in discovery output:\n%s", id, out)
		}
	}
}

func TestConfigInitCommand(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "labbook", "config.toml")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v\n%s", err, out.String())
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}

	cmd = newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}
