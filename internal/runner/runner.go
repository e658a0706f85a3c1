package runner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"labbook/internal/config"
	"labbook/internal/logging"
	"labbook/internal/registry"
	"labbook/internal/services"
)

// Status represents the outcome of one module invocation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result captures the outcome of invoking one module. Failures inside a
// module are always converted into a Result; they never propagate.
type Result struct {
	ModuleID      string
	Status        Status
	ArtifactPaths []string
	ErrorDetail   string
	Output        string
	Duration      time.Duration
}

// Runner invokes module entry scripts as isolated child processes.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs a Runner.
func New(cfg *config.Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Run executes the module described by desc and reports the outcome. Modules
// marked disabled are never invoked and yield a Skipped result without side
// effects. No timeout is enforced; notebook modules are assumed short-running
// and human-supervised.
func (r *Runner) Run(ctx context.Context, desc registry.Descriptor) Result {
	if !desc.Enabled {
		return Result{ModuleID: desc.ID, Status: StatusSkipped}
	}

	moduleCtx := services.WithComponent(services.WithModuleID(ctx, desc.ID), "runner")
	logger := logging.WithContext(moduleCtx, r.logger)

	argv, err := commandFor(r.cfg, desc.EntryPath)
	if err != nil {
		return r.failed(logger, desc, time.Duration(0), "", err)
	}

	moduleDir := filepath.Dir(desc.EntryPath)
	outputDir := filepath.Join(moduleDir, r.cfg.Runner.OutputDirName)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = moduleDir
	cmd.Env = append(os.Environ(),
		"LABBOOK_MODULE_ID="+desc.ID,
		"LABBOOK_OUTPUT_DIR="+outputDir,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Info("executing module", logging.String("entry", desc.EntryPath))
	started := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(started)

	if runErr != nil {
		detail := tail(stderr.String(), 20)
		if detail == "" {
			detail = tail(stdout.String(), 20)
		}
		wrapped := services.Wrap(services.ErrModuleExecution, "runner", "execute", detail, runErr)
		return r.failed(logger, desc, elapsed, stdout.String(), wrapped)
	}

	artifacts, err := collectArtifacts(outputDir)
	if err != nil {
		logger.Warn("collect artifacts failed", logging.Error(err))
	}

	logger.Info("module completed",
		logging.String(logging.FieldStatus, string(StatusSuccess)),
		logging.Int("artifacts", len(artifacts)),
		logging.Duration("duration", elapsed),
	)
	return Result{
		ModuleID:      desc.ID,
		Status:        StatusSuccess,
		ArtifactPaths: artifacts,
		Output:        stdout.String(),
		Duration:      elapsed,
	}
}

func (r *Runner) failed(logger *slog.Logger, desc registry.Descriptor, elapsed time.Duration, output string, err error) Result {
	logger.Warn("module failed",
		logging.String(logging.FieldStatus, string(StatusFailed)),
		logging.Error(err),
	)
	return Result{
		ModuleID:    desc.ID,
		Status:      StatusFailed,
		ErrorDetail: err.Error(),
		Output:      output,
		Duration:    elapsed,
	}
}

// commandFor selects the interpreter for an entry script by extension.
// Scripts without a known extension are executed directly.
func commandFor(cfg *config.Config, entryPath string) ([]string, error) {
	if info, err := os.Stat(entryPath); err != nil || info.IsDir() {
		return nil, services.Wrap(services.ErrModuleExecution, "runner", "resolve", fmt.Sprintf("entry %s not found", entryPath), err)
	}
	switch strings.ToLower(filepath.Ext(entryPath)) {
	case ".py":
		return []string{cfg.Runner.PythonBinary, entryPath}, nil
	case ".sh":
		return []string{"sh", entryPath}, nil
	default:
		return []string{entryPath}, nil
	}
}

func tail(text string, lines int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	parts := strings.Split(text, "\n")
	if len(parts) > lines {
		parts = parts[len(parts)-lines:]
	}
	return strings.Join(parts, "\n")
}
