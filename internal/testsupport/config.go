package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"labbook/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.NotebookDir = filepath.Join(base, "notebook")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.AssetCacheDir = filepath.Join(base, "assets")

	if err := os.MkdirAll(cfgVal.Paths.NotebookDir, 0o755); err != nil {
		t.Fatalf("mkdir notebook dir: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithRegistryPath points the config at an explicit registry file.
func WithRegistryPath(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Registry.Path = path
	}
}

// WithSheet enables the sheet integration against the provided URLs.
func WithSheet(overridesURL, statusURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sheet.Enabled = true
		b.cfg.Sheet.OverridesURL = overridesURL
		b.cfg.Sheet.StatusWebhookURL = statusURL
	}
}

// WithMergeTool overrides the report merge tool on the test config.
func WithMergeTool(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Report.MergeTool = path
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. Each stub exits 0 without producing output.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.NotebookDir)
}
