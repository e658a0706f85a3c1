package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"labbook/internal/config"
	"labbook/internal/logging"
	"labbook/internal/orchestrator"
	"labbook/internal/services"
)

// Compiler merges per-module artifacts into one notebook report.
type Compiler struct {
	cfg    *config.Config
	logger *slog.Logger

	titleCaser cases.Caser
}

// New constructs a Compiler.
func New(cfg *config.Config, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Compiler{
		cfg:        cfg,
		logger:     logger.With(logging.String(logging.FieldComponent, "report")),
		titleCaser: cases.Title(language.English),
	}
}

// Compile merges the artifacts of every Success result, in the same
// ascending-priority order used for execution, into a single PDF under the
// output directory. Failed and Skipped entries contribute nothing; their
// counts are logged. Zero artifacts is a hard error: an empty report would
// mask an upstream failure.
func (c *Compiler) Compile(ctx context.Context, summary *orchestrator.Summary, title string) (string, error) {
	artifacts := existingArtifacts(c.logger, summary.SuccessArtifacts())
	if len(artifacts) == 0 {
		return "", services.Wrap(services.ErrCompile, "report", "compile", "no artifacts to merge", nil)
	}

	_, failed, skipped := summary.Counts()
	if failed > 0 || skipped > 0 {
		c.logger.Info("modules excluded from report",
			logging.Int("failed", failed),
			logging.Int("skipped", skipped),
		)
	}

	title = c.normalizeTitle(title)
	if err := os.MkdirAll(c.cfg.Paths.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	outPath := filepath.Join(c.cfg.Paths.OutputDir, fmt.Sprintf("%s_%s.pdf", slugify(title), time.Now().Format("20060102_150405")))

	if err := c.merge(ctx, artifacts, outPath); err != nil {
		return "", err
	}

	c.logger.Info("report compiled",
		logging.String("path", outPath),
		logging.Int("artifacts", len(artifacts)),
	)
	return outPath, nil
}

func (c *Compiler) normalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = c.cfg.Report.Title
	}
	return c.titleCaser.String(title)
}

func existingArtifacts(logger *slog.Logger, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			logger.Warn("artifact missing, excluded from report", logging.String("path", path))
			continue
		}
		out = append(out, path)
	}
	return out
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(title string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(title), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		return "notebook"
	}
	return slug
}
