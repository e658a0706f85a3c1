package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"labbook/internal/config"
	"labbook/internal/logging"
	"labbook/internal/registry"
	"labbook/internal/runner"
	"labbook/internal/services"
)

// ModuleRunner is the capability the orchestrator needs from the runner.
type ModuleRunner interface {
	Run(ctx context.Context, desc registry.Descriptor) runner.Result
}

// Orchestrator executes the enabled subset of the registry strictly in
// ascending priority order, one module at a time. Modules share working
// directories and emit timestamped files, so sequential execution is a design
// guarantee, enforced across processes by a file lock.
type Orchestrator struct {
	cfg    *config.Config
	runner ModuleRunner
	logger *slog.Logger
}

// New constructs an Orchestrator.
func New(cfg *config.Config, moduleRunner ModuleRunner, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{cfg: cfg, runner: moduleRunner, logger: logger}
}

// RunAll executes the selected modules and aggregates their results. With an
// empty selection every enabled module runs; otherwise execution is
// restricted to the selected subset, with disabled-but-selected modules
// reported as Skipped. Selection IDs that match no registry entry are a
// configuration error reported before anything executes.
//
// Failures never abort the batch: each failed module is recorded and the next
// one runs. RunAll always returns a Summary, even when every module fails.
func (o *Orchestrator) RunAll(ctx context.Context, descriptors []registry.Descriptor, selection []string) (*Summary, error) {
	selected, err := resolveSelection(descriptors, selection)
	if err != nil {
		return nil, err
	}

	if err := o.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	release, err := o.acquireLock()
	if err != nil {
		return nil, err
	}
	defer release()

	summary := &Summary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(services.WithComponent(ctx, "orchestrator"), o.logger)
	logger.Info("run started",
		logging.Int("modules", len(selected)),
		logging.Int("registry_size", len(descriptors)),
	)

	for _, desc := range selected {
		result := o.runner.Run(ctx, desc)
		summary.Results = append(summary.Results, result)
	}

	summary.FinishedAt = time.Now().UTC()

	succeeded, failed, skipped := summary.Counts()
	logger.Info("run finished",
		logging.Int("succeeded", succeeded),
		logging.Int("failed", failed),
		logging.Int("skipped", skipped),
		logging.Duration("duration", summary.FinishedAt.Sub(summary.StartedAt)),
	)
	return summary, nil
}

// resolveSelection returns the descriptors to execute, in registry order.
// Disabled modules stay in the slice so the runner can mark them Skipped
// without invoking them.
func resolveSelection(descriptors []registry.Descriptor, selection []string) ([]registry.Descriptor, error) {
	if len(selection) == 0 {
		out := make([]registry.Descriptor, len(descriptors))
		copy(out, descriptors)
		return out, nil
	}

	wanted := make(map[string]struct{}, len(selection))
	var unknown []string
	for _, id := range selection {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := registry.Find(descriptors, id); !ok {
			unknown = append(unknown, id)
			continue
		}
		wanted[id] = struct{}{}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, services.Wrap(services.ErrConfig, "orchestrator", "select", fmt.Sprintf("unknown module ids: %s", strings.Join(unknown, ", ")), nil)
	}

	out := make([]registry.Descriptor, 0, len(wanted))
	for _, desc := range descriptors {
		if _, ok := wanted[desc.ID]; ok {
			out = append(out, desc)
		}
	}
	return out, nil
}

func (o *Orchestrator) acquireLock() (func(), error) {
	lockPath := filepath.Join(o.cfg.Paths.LogDir, "labbook.lock")
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another labbook run is already in progress (lock %s)", lockPath)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			o.logger.Warn("release run lock failed", logging.Error(err))
		}
	}, nil
}
