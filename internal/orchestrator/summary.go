package orchestrator

import (
	"time"

	"labbook/internal/runner"
)

// Summary aggregates the results of one orchestrator invocation in execution
// order.
type Summary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []runner.Result
}

// Counts returns the number of succeeded, failed, and skipped modules.
func (s *Summary) Counts() (succeeded, failed, skipped int) {
	for _, result := range s.Results {
		switch result.Status {
		case runner.StatusSuccess:
			succeeded++
		case runner.StatusFailed:
			failed++
		case runner.StatusSkipped:
			skipped++
		}
	}
	return succeeded, failed, skipped
}

// FailedIDs returns the module IDs that failed, in execution order.
func (s *Summary) FailedIDs() []string {
	var ids []string
	for _, result := range s.Results {
		if result.Status == runner.StatusFailed {
			ids = append(ids, result.ModuleID)
		}
	}
	return ids
}

// SuccessArtifacts returns every artifact produced by successful modules,
// preserving execution (priority) order.
func (s *Summary) SuccessArtifacts() []string {
	var artifacts []string
	for _, result := range s.Results {
		if result.Status != runner.StatusSuccess {
			continue
		}
		artifacts = append(artifacts, result.ArtifactPaths...)
	}
	return artifacts
}
