package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"labbook/internal/services"
)

// moduleDirPattern matches notebook module directories such as
// "01.0A_Abstract" or "0R.00_References"; the first group is the module ID.
var moduleDirPattern = regexp.MustCompile(`^([0-9A-Za-z]+\.[0-9A-Za-z.]+)_(.+)$`)

var entryCandidates = []string{DefaultEntry, "main.sh", "main"}

// Discover scans rootDir for module directories following the ID_Name naming
// convention and synthesizes a registry from them. Top-level modules receive
// sequential integer priorities in lexical ID order; nested submodules hang
// off their parent with fractional priorities. Discovered modules default to
// enabled.
//
// Discover is a boundary adapter: the written registry file remains the
// source of truth for subsequent runs.
func Discover(rootDir string) ([]Descriptor, error) {
	dirEntries, err := os.ReadDir(rootDir)
	if err != nil {
		return nil, services.Wrap(services.ErrConfig, "registry", "discover", fmt.Sprintf("read %s", rootDir), err)
	}

	type candidate struct {
		id   string
		name string
		dir  string
	}
	candidates := make([]candidate, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		if !dirEntry.IsDir() {
			continue
		}
		match := moduleDirPattern.FindStringSubmatch(dirEntry.Name())
		if match == nil {
			continue
		}
		if entryFile(filepath.Join(rootDir, dirEntry.Name())) == "" {
			continue
		}
		candidates = append(candidates, candidate{id: match[1], name: humanizeName(match[2]), dir: dirEntry.Name()})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].id < candidates[j].id })

	descriptors := make([]Descriptor, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for i, c := range candidates {
		if _, dup := seen[c.id]; dup {
			return nil, services.Wrap(services.ErrConfig, "registry", "discover", fmt.Sprintf("duplicate module id %q", c.id), nil)
		}
		seen[c.id] = struct{}{}

		entry := entryFile(filepath.Join(rootDir, c.dir))
		descriptors = append(descriptors, Descriptor{
			ID:        c.id,
			Name:      c.name,
			Path:      c.dir,
			EntryPath: filepath.Join(rootDir, c.dir, entry),
			Enabled:   true,
			Priority:  float64(i + 1),
		})

		subs, err := discoverSubmodules(rootDir, c.dir, c.id, float64(i+1), seen)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, subs...)
	}

	if len(descriptors) == 0 {
		return nil, services.Wrap(services.ErrConfig, "registry", "discover", fmt.Sprintf("no module directories found under %s", rootDir), nil)
	}

	sortDescriptors(descriptors)
	return descriptors, nil
}

func discoverSubmodules(rootDir, parentDir, parentID string, parentPriority float64, seen map[string]struct{}) ([]Descriptor, error) {
	dirEntries, err := os.ReadDir(filepath.Join(rootDir, parentDir))
	if err != nil {
		return nil, services.Wrap(services.ErrConfig, "registry", "discover", fmt.Sprintf("read %s", parentDir), err)
	}

	type candidate struct {
		id   string
		name string
		dir  string
	}
	candidates := make([]candidate, 0)
	for _, dirEntry := range dirEntries {
		if !dirEntry.IsDir() {
			continue
		}
		match := moduleDirPattern.FindStringSubmatch(dirEntry.Name())
		if match == nil {
			continue
		}
		if entryFile(filepath.Join(rootDir, parentDir, dirEntry.Name())) == "" {
			continue
		}
		candidates = append(candidates, candidate{id: match[1], name: humanizeName(match[2]), dir: dirEntry.Name()})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].id < candidates[j].id })

	descriptors := make([]Descriptor, 0, len(candidates))
	for j, c := range candidates {
		if _, dup := seen[c.id]; dup {
			return nil, services.Wrap(services.ErrConfig, "registry", "discover", fmt.Sprintf("duplicate module id %q", c.id), nil)
		}
		seen[c.id] = struct{}{}

		relDir := filepath.Join(parentDir, c.dir)
		entry := entryFile(filepath.Join(rootDir, relDir))
		descriptors = append(descriptors, Descriptor{
			ID:        c.id,
			Name:      c.name,
			Path:      relDir,
			EntryPath: filepath.Join(rootDir, relDir, entry),
			Enabled:   true,
			Priority:  parentPriority + float64(j+1)/100,
			ParentID:  parentID,
		})
	}
	return descriptors, nil
}

func entryFile(dir string) string {
	for _, name := range entryCandidates {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return name
		}
	}
	return ""
}

func humanizeName(raw string) string {
	return strings.TrimSpace(strings.ReplaceAll(raw, "_", " "))
}
