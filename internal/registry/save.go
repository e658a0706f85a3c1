package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"labbook/internal/services"
)

type saveEntry struct {
	Name       string                `yaml:"name"`
	Path       string                `yaml:"path"`
	Entry      string                `yaml:"entry,omitempty"`
	Enabled    bool                  `yaml:"enabled"`
	Priority   float64               `yaml:"priority"`
	Submodules map[string]*saveEntry `yaml:"submodules,omitempty"`
}

// Save writes descriptors back to a registry file, reconstructing submodule
// nesting from parent references. Reloading the written file yields an
// identical flattened, ordered list.
func Save(path string, descriptors []Descriptor) error {
	entries := make(map[string]*saveEntry, len(descriptors))
	roots := make(map[string]*saveEntry)

	for _, d := range descriptors {
		entry := &saveEntry{
			Name:     d.Name,
			Path:     d.Path,
			Enabled:  d.Enabled,
			Priority: d.Priority,
		}
		if base := filepath.Base(d.EntryPath); base != DefaultEntry && base != "." {
			entry.Entry = base
		}
		entries[d.ID] = entry
	}

	for _, d := range descriptors {
		entry := entries[d.ID]
		if d.ParentID == "" {
			roots[d.ID] = entry
			continue
		}
		parent, ok := entries[d.ParentID]
		if !ok {
			return services.Wrap(services.ErrConfig, "registry", "save", fmt.Sprintf("module %q references unknown parent %q", d.ID, d.ParentID), nil)
		}
		rel, err := filepath.Rel(parent.Path, entry.Path)
		if err != nil {
			return services.Wrap(services.ErrConfig, "registry", "save", fmt.Sprintf("module %q path %q is not under parent %q", d.ID, entry.Path, parent.Path), err)
		}
		entry.Path = rel
		if parent.Submodules == nil {
			parent.Submodules = make(map[string]*saveEntry)
		}
		parent.Submodules[d.ID] = entry
	}

	data, err := yaml.Marshal(struct {
		Modules map[string]*saveEntry `yaml:"modules"`
	}{Modules: roots})
	if err != nil {
		return services.Wrap(services.ErrConfig, "registry", "save", "encode registry", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrConfig, "registry", "save", fmt.Sprintf("write %s", path), err)
	}
	return nil
}
