package runner

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// timestampSuffix matches the _YYYYMMDD_HHMMSS suffix notebook modules append
// to output filenames.
var timestampSuffix = regexp.MustCompile(`_\d{8}_\d{6}$`)

// collectArtifacts returns the PDFs a module produced in its output
// directory. Modules emit timestamped files on every run, so artifacts are
// grouped by base name with only the newest file per group kept. A missing
// output directory yields no artifacts and no error.
func collectArtifacts(outputDir string) ([]string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	type found struct {
		path    string
		modTime time.Time
	}
	newest := make(map[string]found)

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		group := timestampSuffix.ReplaceAllString(stem, "")
		candidate := found{path: filepath.Join(outputDir, entry.Name()), modTime: info.ModTime()}
		if current, ok := newest[group]; !ok || candidate.modTime.After(current.modTime) {
			newest[group] = candidate
		}
	}

	groups := make([]string, 0, len(newest))
	for group := range newest {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	artifacts := make([]string, 0, len(groups))
	for _, group := range groups {
		artifacts = append(artifacts, newest[group].path)
	}
	return artifacts, nil
}
