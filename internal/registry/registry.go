package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"labbook/internal/services"
)

// Descriptor identifies one notebook module and the metadata the orchestrator
// needs to schedule it. Descriptors are immutable for the duration of a run.
type Descriptor struct {
	ID        string
	Name      string
	Path      string // module directory relative to the notebook root
	EntryPath string // absolute path to the entry script
	Enabled   bool
	Priority  float64
	ParentID  string
}

// DefaultEntry is the entry script assumed when a registry entry does not
// name one.
const DefaultEntry = "main.py"

// fallbackPriority sorts entries without an explicit priority after every
// prioritized entry.
const fallbackPriority = 999

type fileSchema struct {
	Modules map[string]moduleEntry `yaml:"modules"`
}

type moduleEntry struct {
	Name       string                 `yaml:"name"`
	Path       string                 `yaml:"path"`
	Entry      string                 `yaml:"entry"`
	Enabled    bool                   `yaml:"enabled"`
	Priority   *priorityValue         `yaml:"priority"`
	Submodules map[string]moduleEntry `yaml:"submodules"`
}

// priorityValue accepts numeric YAML scalars as well as numeric strings such
// as "2.1", which spreadsheet exports tend to produce.
type priorityValue float64

func (p *priorityValue) UnmarshalYAML(node *yaml.Node) error {
	raw := strings.TrimSpace(node.Value)
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("priority %q is not numeric", node.Value)
	}
	*p = priorityValue(parsed)
	return nil
}

// Load parses the registry file at path, resolves entry scripts against
// rootDir, and returns the flattened descriptor list ordered by ascending
// priority with ties broken by ID. Nested submodule groups are flattened
// recursively; submodule directories resolve relative to their parent.
func Load(path, rootDir string) ([]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfig, "registry", "load", fmt.Sprintf("read %s", path), err)
	}

	var schema fileSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, services.Wrap(services.ErrConfig, "registry", "load", "parse registry", err)
	}
	if len(schema.Modules) == 0 {
		return nil, services.Wrap(services.ErrConfig, "registry", "load", "registry defines no modules", nil)
	}

	descriptors := make([]Descriptor, 0, len(schema.Modules))
	seen := make(map[string]struct{}, len(schema.Modules))
	if err := flatten(schema.Modules, "", "", rootDir, seen, &descriptors); err != nil {
		return nil, err
	}

	sortDescriptors(descriptors)
	return descriptors, nil
}

func flatten(entries map[string]moduleEntry, parentID, parentPath, rootDir string, seen map[string]struct{}, out *[]Descriptor) error {
	for id, entry := range entries {
		id = strings.TrimSpace(id)
		if id == "" {
			return services.Wrap(services.ErrConfig, "registry", "load", "module with empty id", nil)
		}
		if _, dup := seen[id]; dup {
			return services.Wrap(services.ErrConfig, "registry", "load", fmt.Sprintf("duplicate module id %q", id), nil)
		}
		seen[id] = struct{}{}

		dir := strings.TrimSpace(entry.Path)
		if dir == "" {
			return services.Wrap(services.ErrConfig, "registry", "load", fmt.Sprintf("module %q has no path", id), nil)
		}
		relDir := filepath.Join(parentPath, dir)

		entryFile := strings.TrimSpace(entry.Entry)
		if entryFile == "" {
			entryFile = DefaultEntry
		}
		entryPath := filepath.Join(rootDir, relDir, entryFile)
		if info, err := os.Stat(entryPath); err != nil || info.IsDir() {
			return services.Wrap(services.ErrConfig, "registry", "load", fmt.Sprintf("module %q entry %s does not exist", id, entryPath), nil)
		}

		priority := float64(fallbackPriority)
		if entry.Priority != nil {
			priority = float64(*entry.Priority)
		}

		name := strings.TrimSpace(entry.Name)
		if name == "" {
			name = id
		}

		*out = append(*out, Descriptor{
			ID:        id,
			Name:      name,
			Path:      relDir,
			EntryPath: entryPath,
			Enabled:   entry.Enabled,
			Priority:  priority,
			ParentID:  parentID,
		})

		if len(entry.Submodules) > 0 {
			if err := flatten(entry.Submodules, id, relDir, rootDir, seen, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortDescriptors(descriptors []Descriptor) {
	sort.SliceStable(descriptors, func(i, j int) bool {
		if descriptors[i].Priority != descriptors[j].Priority {
			return descriptors[i].Priority < descriptors[j].Priority
		}
		return descriptors[i].ID < descriptors[j].ID
	})
}

// EnabledIDs returns the identifiers of every enabled descriptor in order.
func EnabledIDs(descriptors []Descriptor) []string {
	ids := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		if d.Enabled {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// Find returns the descriptor with the given ID.
func Find(descriptors []Descriptor, id string) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}
